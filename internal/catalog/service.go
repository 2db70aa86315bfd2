// Package catalog — каталог товаров для кассы: чтение с бэкенда и снимок остатков в кэше.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/ports"
	"github.com/Gunvolt24/pos_terminal/pkg/validate"
)

// DefaultLowStockThreshold — порог «мало на складе» для панели администратора.
const DefaultLowStockThreshold = 10

// Service — каталог; снимок в кэше — то, по чему корзина проверяет остатки.
type Service struct {
	gateway  ports.CatalogGateway
	cache    ports.ProductCache
	log      ports.Logger
	lowStock int
}

func NewService(gateway ports.CatalogGateway, cache ports.ProductCache, log ports.Logger, lowStockThreshold int) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &Service{gateway: gateway, cache: cache, log: log, lowStock: lowStockThreshold}
}

// ListProducts — товары в наличии; весь ответ бэкенда прогревает снимок.
func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.gateway.ListProducts(ctx)
	if err != nil {
		return nil, asGatewayError(err, "Error al cargar productos. Verifica tu conexión.")
	}
	if err := s.cache.WarmUp(ctx, products); err != nil {
		s.log.Warnf(ctx, "catalog warm-up failed: %v", err)
	}

	inStock := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if p.InStock() {
			inStock = append(inStock, p)
		}
	}
	return inStock, nil
}

// Product — последний известный снимок товара; при промахе один запрос к бэкенду.
func (s *Service) Product(ctx context.Context, productID int64) (*domain.Product, error) {
	if p, ok := s.cache.Get(ctx, productID); ok {
		return p, nil
	}

	p, err := s.gateway.GetProduct(ctx, productID)
	if err != nil {
		return nil, asGatewayError(err, "")
	}
	if p == nil {
		return nil, domain.ValidationError(domain.ErrProductNotFound, domain.MsgProductNotFound)
	}
	if err := s.cache.Set(ctx, p); err != nil {
		s.log.Warnf(ctx, "catalog cache set id=%d: %v", productID, err)
	}
	return p, nil
}

// ApplyStockUpdate — событие инвентаризации обновляет снимок, если товар уже в кэше.
// Невалидное событие — ошибка validate.ErrInvalidStockUpdate.
func (s *Service) ApplyStockUpdate(ctx context.Context, raw []byte) error {
	upd, err := validate.DecodeStockUpdate(raw)
	if err != nil {
		return err
	}

	p, ok := s.cache.Get(ctx, upd.ProductID)
	if !ok {
		// товара нет в снимке — подтянется при следующем чтении каталога
		return nil
	}
	p.AvailableStock = upd.AvailableStock
	if upd.UnitPrice != nil {
		p.UnitPrice = *upd.UnitPrice
	}
	if err := s.cache.Set(ctx, p); err != nil {
		return err
	}
	s.log.Infof(ctx, "stock update applied id=%d stock=%d", upd.ProductID, upd.AvailableStock)
	return nil
}

// LowStockThreshold — текущий порог.
func (s *Service) LowStockThreshold() int { return s.lowStock }

// Filter — поиск по описанию (без учёта регистра) и точное совпадение категории.
// Пустые term/category фильтр не применяют.
func Filter(products []*domain.Product, term, category string) []*domain.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	category = strings.TrimSpace(category)

	out := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if term != "" && !strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories — уникальные категории, по алфавиту.
func Categories(products []*domain.Product) []string {
	set := make(map[string]struct{})
	for _, p := range products {
		if p.Category != "" {
			set[p.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// LowStock — товары с остатком ниже порога.
func LowStock(products []*domain.Product, threshold int) []*domain.Product {
	out := make([]*domain.Product, 0)
	for _, p := range products {
		if p.AvailableStock < threshold {
			out = append(out, p)
		}
	}
	return out
}

func asGatewayError(err error, fallback string) error {
	if _, ok := domain.AsError(err); ok {
		return err
	}
	return domain.GatewayError(0, "", fallback, nil, err)
}
