package ports

import (
	"context"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
)

// CatalogGateway — каталог товаров на бэкенде.
type CatalogGateway interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	// GetProduct — (nil, nil), если товара нет.
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
}
