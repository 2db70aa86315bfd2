package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod — тег способа оплаты; по нему выбирается стратегия оформления.
type PaymentMethod string

const (
	MethodCash        PaymentMethod = "EFECTIVO"
	MethodCreditCard  PaymentMethod = "TARJETA_CREDITO"
	MethodDebitCard   PaymentMethod = "TARJETA_DEBITO"
	MethodTransfer    PaymentMethod = "TRANSFERENCIA"
	MethodMercadoPago PaymentMethod = "MERCADO_PAGO"
)

// Known — известен ли способ оплаты.
func (m PaymentMethod) Known() bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodDebitCard, MethodTransfer, MethodMercadoPago:
		return true
	}
	return false
}

// IsCard — требует ли способ реквизитов карты.
func (m PaymentMethod) IsCard() bool { return m == MethodCreditCard || m == MethodDebitCard }

// IsExternal — оплата через внешний редирект.
func (m PaymentMethod) IsExternal() bool { return m == MethodMercadoPago }

// PaymentDetails — данные оплаты; набор полей зависит от способа.
type PaymentDetails struct {
	Method            PaymentMethod `json:"metodoPago"`
	CardNumber        string        `json:"numeroTarjeta,omitempty"`
	CardHolder        string        `json:"nombreTitular,omitempty"`
	SecurityCode      string        `json:"codigoSeguridad,omitempty"`
	ExpiryMonth       string        `json:"mesVencimiento,omitempty"`
	ExpiryYear        string        `json:"anoVencimiento,omitempty"`
	ExternalReference string        `json:"referenciaExterna,omitempty"`
}

// SaleItem — позиция продажи для бэкенда.
type SaleItem struct {
	ProductID int64 `json:"idProducto"`
	Quantity  int   `json:"cantidad"`
}

// SaleRequest — запрос на проведение продажи (VentaRequest бэкенда).
type SaleRequest struct {
	UserID  int64          `json:"idUsuario"`
	Items   []SaleItem     `json:"items"`
	Payment PaymentDetails `json:"datosPago"`
}

// SaleItemsFromLines — позиции продажи из строк корзины.
func SaleItemsFromLines(lines []CartLine) []SaleItem {
	items := make([]SaleItem, 0, len(lines))
	for i := range lines {
		items = append(items, SaleItem{ProductID: lines[i].ProductID, Quantity: lines[i].Quantity})
	}
	return items
}

// Invoice — счёт, созданный бэкендом по проведённой продаже.
type Invoice struct {
	ID          int64           `json:"idFactura"`
	UserID      int64           `json:"idUsuario"`
	PaymentID   int64           `json:"idPago"`
	Date        time.Time       `json:"fecha"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"iva"`
	Total       decimal.Decimal `json:"total"`
	CashierName string          `json:"nombreCajero,omitempty"`
}
