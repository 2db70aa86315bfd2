package ports

import (
	"context"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
)

// AuthGateway — аутентификация делегирована бэкенду; клиент хранит только непрозрачный токен.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*domain.AuthResponse, error)
}
