package domain

import "github.com/shopspring/decimal"

// CartLine — строка корзины.
// Инвариант: 0 < Quantity <= AvailableStock на момент любой мутации.
// AvailableStock — остаток из последнего известного снимка каталога, а не свежий запрос.
type CartLine struct {
	ProductID      int64           `json:"productId"`
	Description    string          `json:"description"`
	Category       string          `json:"category,omitempty"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Quantity       int             `json:"quantity"`
	AvailableStock int             `json:"availableStock"`
}

// Subtotal — цена × количество; всегда вычисляется, не хранится.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Valid — соблюдает ли строка инвариант остатка.
func (l CartLine) Valid() bool {
	return l.ProductID != 0 && l.Quantity > 0 && l.Quantity <= l.AvailableStock
}

// CartTotals — производные значения корзины.
type CartTotals struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	Empty     bool            `json:"empty"`
}

// CartSnapshot — неизменяемый снимок корзины: строки и итоги, посчитанные по этим строкам.
type CartSnapshot struct {
	Lines []CartLine `json:"lines"`
	CartTotals
}

// ComputeTotals — subtotal = Σ(price×qty), tax = subtotal×rate, total = subtotal+tax.
func ComputeTotals(lines []CartLine, taxRate decimal.Decimal) CartTotals {
	subtotal := decimal.Zero
	count := 0
	for i := range lines {
		subtotal = subtotal.Add(lines[i].Subtotal())
		count += lines[i].Quantity
	}
	tax := subtotal.Mul(taxRate)
	return CartTotals{
		ItemCount: count,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     subtotal.Add(tax),
		Empty:     len(lines) == 0,
	}
}

// CloneLines — копия набора строк (строки — значения, поэтому достаточно копии слайса).
func CloneLines(lines []CartLine) []CartLine {
	if lines == nil {
		return nil
	}
	return append([]CartLine(nil), lines...)
}
