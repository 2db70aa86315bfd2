package ports

import (
	"context"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
)

// SalesGateway — проведение продаж и история на бэкенде.
type SalesGateway interface {
	SubmitSale(ctx context.Context, req *domain.SaleRequest) (*domain.Invoice, error)
	SalesByUser(ctx context.Context, userID int64) ([]*domain.Invoice, error)
}
