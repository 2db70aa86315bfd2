package ports

import (
	"context"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
)

type SaleValidator interface {
	Validate(ctx context.Context, req *domain.SaleRequest) error
}
