package ports

import (
	"context"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
)

// ProductCache — снимок каталога, по которому валидируются остатки при добавлении в корзину.
// Требования к реализации: потокобезопасность; доступ по ключу не хуже O(1); возврат копий сущности.
type ProductCache interface {
	// Get — вернуть товар по id; (product, true) при попадании, (nil, false) при промахе/истечении.
	Get(ctx context.Context, productID int64) (*domain.Product, bool)

	// Set — сохранить/обновить товар в кэше.
	Set(ctx context.Context, product *domain.Product) error

	// WarmUp — массовая загрузка (после чтения каталога).
	// Реализация должна поддерживать отмену контекста.
	WarmUp(ctx context.Context, products []*domain.Product) error
}
