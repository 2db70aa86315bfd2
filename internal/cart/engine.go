// Package cart — корзина терминала: строки, проверка остатков, итоги и кэширование в хранилище состояния.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/localstate"
	"github.com/Gunvolt24/pos_terminal/internal/observable"
	"github.com/Gunvolt24/pos_terminal/internal/ports"
	"github.com/Gunvolt24/pos_terminal/pkg/metrics"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate — IVA.
var DefaultTaxRate = decimal.RequireFromString("0.19")

// Engine — корзина одного терминала.
// Память — источник истины; запись в хранилище best-effort и откат не вызывает.
// Подписчики получают снимок синхронно, после каждой мутации и в её порядке;
// мутировать корзину из колбэка нельзя.
type Engine struct {
	mu      sync.Mutex
	lines   []domain.CartLine
	taxRate decimal.Decimal

	state *localstate.Store
	log   ports.Logger
	snap  *observable.Value[domain.CartSnapshot]
}

func NewEngine(state *localstate.Store, taxRate decimal.Decimal, log ports.Logger) *Engine {
	e := &Engine{
		taxRate: taxRate,
		state:   state,
		log:     log,
	}
	e.snap = observable.New(e.snapshotLocked())
	return e
}

// Restore — загрузка корзины из хранилища (перезапуск терминала).
// Запись, нарушающая инвариант строк, отбрасывается целиком.
// Недоступное хранилище не мешает работе: корзина начинается пустой.
func (e *Engine) Restore(ctx context.Context) {
	var lines []domain.CartLine
	ok, err := e.state.Load(ctx, localstate.KeyCart, &lines)
	if err != nil {
		e.log.Warnf(ctx, "cart restore skipped, starting empty: %v", err)
		return
	}
	if !ok {
		return
	}
	if err := checkLines(lines); err != nil {
		e.state.Discard(ctx, localstate.KeyCart, err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = lines
	e.publishLocked()
}

// AddItem — добавить quantity единиц товара по последнему известному снимку.
// Для существующей строки операция аддитивна: при превышении остатка отклоняется целиком.
func (e *Engine) AddItem(ctx context.Context, product *domain.Product, quantity int) error {
	if product == nil || product.ID == 0 {
		return e.reject("add", domain.ValidationError(domain.ErrProductNotFound, domain.MsgProductNotFound))
	}
	if quantity <= 0 {
		return e.reject("add", domain.ValidationError(domain.ErrInvalidQuantity, domain.MsgInvalidQuantity))
	}
	stock := product.AvailableStock
	if stock < 0 {
		stock = 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexLocked(product.ID)
	newQty := quantity
	if idx >= 0 {
		newQty += e.lines[idx].Quantity
	}
	if newQty > stock {
		return e.reject("add", domain.ValidationError(domain.ErrInsufficientStock, domain.MsgInsufficientStock))
	}

	line := domain.CartLine{
		ProductID:      product.ID,
		Description:    product.Description,
		Category:       product.Category,
		UnitPrice:      product.UnitPrice,
		Quantity:       newQty,
		AvailableStock: stock,
	}
	if idx >= 0 {
		e.lines[idx] = line
	} else {
		e.lines = append(e.lines, line)
	}

	e.commitLocked(ctx, "add")
	return nil
}

// RemoveItem — удалить строку; отсутствующая строка — no-op.
func (e *Engine) RemoveItem(ctx context.Context, productID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexLocked(productID)
	if idx < 0 {
		return
	}
	e.lines = append(e.lines[:idx:idx], e.lines[idx+1:]...)
	e.commitLocked(ctx, "remove")
}

// SetQuantity — заменить количество; quantity <= 0 эквивалентно RemoveItem.
// Остаток проверяется по снимку, сохранённому в строке.
func (e *Engine) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		e.RemoveItem(ctx, productID)
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexLocked(productID)
	if idx < 0 {
		return e.reject("set_quantity", domain.ValidationError(domain.ErrLineNotFound, domain.MsgLineNotFound))
	}
	if quantity > e.lines[idx].AvailableStock {
		return e.reject("set_quantity", domain.ValidationError(domain.ErrInsufficientStock, domain.MsgInsufficientStock))
	}
	if e.lines[idx].Quantity == quantity {
		return nil
	}
	e.lines[idx].Quantity = quantity
	e.commitLocked(ctx, "set_quantity")
	return nil
}

// Clear — очистить корзину.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = nil
	e.commitLocked(ctx, "clear")
}

// Replace — заменить содержимое снимком (восстановление после внешней оплаты).
// Строки, нарушающие инвариант, и дубли отбрасываются. Возвращает число принятых строк.
func (e *Engine) Replace(ctx context.Context, lines []domain.CartLine) int {
	accepted := make([]domain.CartLine, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for _, l := range lines {
		if !l.Valid() {
			continue
		}
		if _, dup := seen[l.ProductID]; dup {
			continue
		}
		seen[l.ProductID] = struct{}{}
		accepted = append(accepted, l)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = accepted
	e.commitLocked(ctx, "replace")
	return len(accepted)
}

// Lines — копия строк в порядке добавления.
func (e *Engine) Lines() []domain.CartLine {
	return e.Snapshot().Lines
}

// Snapshot — строки и итоги, согласованные между собой.
func (e *Engine) Snapshot() domain.CartSnapshot {
	s := e.snap.Get()
	s.Lines = domain.CloneLines(s.Lines)
	return s
}

// Empty — пуста ли корзина.
func (e *Engine) Empty() bool { return e.snap.Get().Empty }

// Subscribe — подписка на снимки; fn сразу получает текущий.
func (e *Engine) Subscribe(fn func(domain.CartSnapshot)) (unsubscribe func()) {
	return e.snap.Subscribe(func(s domain.CartSnapshot) {
		s.Lines = domain.CloneLines(s.Lines)
		fn(s)
	})
}

// TaxRate — ставка налога корзины.
func (e *Engine) TaxRate() decimal.Decimal { return e.taxRate }

// ------вспомогательные функции------

func (e *Engine) indexLocked(productID int64) int {
	for i := range e.lines {
		if e.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// commitLocked — запись в хранилище и публикация снимка; вызывается под e.mu.
func (e *Engine) commitLocked(ctx context.Context, op string) {
	metrics.CartOperations.WithLabelValues(op, "ok").Inc()
	if err := e.state.Save(ctx, localstate.KeyCart, e.lines); err != nil {
		metrics.CartPersistFailures.Inc()
		e.log.Warnf(ctx, "cart persist failed (op=%s): %v", op, err)
	}
	e.publishLocked()
}

func (e *Engine) publishLocked() {
	e.snap.Set(e.snapshotLocked())
}

func (e *Engine) snapshotLocked() domain.CartSnapshot {
	lines := domain.CloneLines(e.lines)
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return domain.CartSnapshot{
		Lines:      lines,
		CartTotals: domain.ComputeTotals(lines, e.taxRate),
	}
}

func (e *Engine) reject(op string, err error) error {
	metrics.CartOperations.WithLabelValues(op, "rejected").Inc()
	return err
}

// checkLines — инвариант сохранённой корзины: уникальные id и 0 < qty <= stock.
func checkLines(lines []domain.CartLine) error {
	seen := make(map[int64]struct{}, len(lines))
	for i, l := range lines {
		if !l.Valid() {
			return fmt.Errorf("line %d (product %d) violates stock invariant", i, l.ProductID)
		}
		if _, dup := seen[l.ProductID]; dup {
			return fmt.Errorf("duplicate line for product %d", l.ProductID)
		}
		seen[l.ProductID] = struct{}{}
	}
	return nil
}
