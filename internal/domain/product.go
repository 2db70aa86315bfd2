package domain

import "github.com/shopspring/decimal"

// Product — товар каталога в том виде, в каком его отдаёт бэкенд.
// Отсутствующий в ответе остаток трактуется как 0.
type Product struct {
	ID             int64           `json:"idProducto"`
	Description    string          `json:"descripcion"`
	Category       string          `json:"categoria"`
	UnitPrice      decimal.Decimal `json:"precioUnitario"`
	AvailableStock int             `json:"cantidadDisponible"`
}

// InStock — есть ли товар на складе.
func (p *Product) InStock() bool { return p != nil && p.AvailableStock > 0 }

// StockUpdate — событие изменения остатка (топик инвентаризации).
// UnitPrice опционален: nil означает «цена не менялась».
type StockUpdate struct {
	ProductID      int64            `json:"idProducto"`
	AvailableStock int              `json:"cantidadDisponible"`
	UnitPrice      *decimal.Decimal `json:"precioUnitario,omitempty"`
}
