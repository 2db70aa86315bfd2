// Package terminal — реестр кассовых терминалов: по одному набору компонентов на id.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/Gunvolt24/pos_terminal/internal/cart"
	"github.com/Gunvolt24/pos_terminal/internal/checkout"
	"github.com/Gunvolt24/pos_terminal/internal/localstate"
	"github.com/Gunvolt24/pos_terminal/internal/ports"
	"github.com/Gunvolt24/pos_terminal/internal/session"
	"github.com/Gunvolt24/pos_terminal/pkg/metrics"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidID = errors.New("invalid terminal id")
	ErrLimit     = errors.New("terminal limit reached")
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID — допустимый идентификатор терминала.
func ValidID(id string) bool { return idPattern.MatchString(id) }

// Bundle — компоненты одного терминала.
type Bundle struct {
	ID         string
	Session    *session.Store
	Cart       *cart.Engine
	Checkout   *checkout.Service
	Reconciler *checkout.Reconciler
}

// Deps — общие для всех терминалов зависимости.
type Deps struct {
	State     ports.StateStore
	Auth      ports.AuthGateway
	Sales     ports.SalesGateway
	Prefs     ports.PreferenceGateway
	Validator ports.SaleValidator
	Log       ports.Logger
}

type Options struct {
	TaxRate  decimal.NullDecimal // не задана — cart.DefaultTaxRate; 0 допустим
	Payments checkout.Config
	Max      int // 0 — без ограничения
}

type entry struct {
	ready  chan struct{}
	bundle *Bundle

	refs     int // незавершённые запросы терминала
	lastUsed time.Time
}

// Registry — ленивое создание и восстановление терминалов из хранилища состояния.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	deps Deps
	opts Options
}

func NewRegistry(deps Deps, opts Options) *Registry {
	if !opts.TaxRate.Valid {
		opts.TaxRate = decimal.NewNullDecimal(cart.DefaultTaxRate)
	}
	return &Registry{
		entries: make(map[string]*entry),
		deps:    deps,
		opts:    opts,
	}
}

// Get — набор терминала; при первом обращении создаётся и восстанавливается.
// Каждый успешный Get должен завершаться Release.
func (r *Registry) Get(ctx context.Context, id string) (*Bundle, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		if r.opts.Max > 0 && len(r.entries) >= r.opts.Max {
			r.mu.Unlock()
			return nil, ErrLimit
		}
		e = &entry{ready: make(chan struct{})}
		r.entries[id] = e
		metrics.TerminalsActive.Set(float64(len(r.entries)))
	}
	e.refs++
	r.mu.Unlock()

	if !ok {
		e.bundle = r.build(ctx, id)
		close(e.ready)
	}

	select {
	case <-e.ready:
		return e.bundle, nil
	case <-ctx.Done():
		r.unref(e)
		return nil, ctx.Err()
	}
}

// Release — запрос терминала завершён. Терминал без сессии, корзины и
// внешней оплаты выгружается сразу: его нечего хранить в памяти.
func (r *Registry) Release(b *Bundle) {
	if b == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[b.ID]
	if !ok || e.bundle != b {
		return
	}
	e.refs--
	e.lastUsed = time.Now()
	if e.refs <= 0 && disposable(b) {
		r.deleteLocked(b.ID)
	}
}

// Sweep — выгрузить терминалы без запросов, простаивающие дольше idle.
// Состояние в хранилище остаётся и восстанавливается при следующем обращении.
func (r *Registry) Sweep(now time.Time, idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, e := range r.entries {
		select {
		case <-e.ready:
		default:
			continue
		}
		if e.refs > 0 || now.Sub(e.lastUsed) < idle {
			continue
		}
		r.deleteLocked(id)
		n++
	}
	return n
}

// RunSweeper — Sweep каждые interval до отмены контекста.
func (r *Registry) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := r.Sweep(now, idle); n > 0 {
				r.deps.Log.Infof(ctx, "evicted %d idle terminals", n)
			}
		}
	}
}

func disposable(b *Bundle) bool {
	return !b.Session.IsAuthenticated() && b.Cart.Empty() && b.Reconciler.State() == checkout.StateIdle
}

func (r *Registry) unref(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.refs--
	e.lastUsed = time.Now()
}

// Lookup — уже созданный терминал без восстановления.
func (r *Registry) Lookup(id string) (*Bundle, bool) {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-e.ready:
		return e.bundle, true
	default:
		return nil, false
	}
}

// Evict — выгрузить терминал из памяти; состояние в хранилище остаётся.
func (r *Registry) Evict(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	r.deleteLocked(id)
	return true
}

// Len — число терминалов в памяти.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) build(ctx context.Context, id string) *Bundle {
	state := localstate.New(r.deps.State, id, r.deps.Log)

	sess := session.NewStore(r.deps.Auth, state, r.deps.Log)
	sess.Restore(ctx)
	engine := cart.NewEngine(state, r.opts.TaxRate.Decimal, r.deps.Log)
	engine.Restore(ctx)

	b := &Bundle{
		ID:         id,
		Session:    sess,
		Cart:       engine,
		Checkout:   checkout.NewService(engine, sess, r.deps.Sales, r.deps.Validator, r.deps.Log),
		Reconciler: checkout.NewReconciler(r.opts.Payments, engine, sess, r.deps.Prefs, r.deps.Sales, state, r.deps.Log),
	}
	r.deps.Log.Infof(ctx, "terminal %s ready (items=%d, authenticated=%v)", id, engine.Snapshot().ItemCount, sess.IsAuthenticated())
	return b
}

func (r *Registry) deleteLocked(id string) {
	delete(r.entries, id)
	metrics.TerminalsActive.Set(float64(len(r.entries)))
}
