package ports

import (
	"context"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
)

// PreferenceGateway — создание платёжного предпочтения для внешней оплаты.
type PreferenceGateway interface {
	CreatePreference(ctx context.Context, req *domain.PreferenceRequest) (*domain.Preference, error)
}
