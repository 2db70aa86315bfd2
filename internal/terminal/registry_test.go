package terminal_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Gunvolt24/pos_terminal/internal/cart"
	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/localstate"
	"github.com/Gunvolt24/pos_terminal/internal/ports/mocks"
	"github.com/Gunvolt24/pos_terminal/internal/repo/memory"
	"github.com/Gunvolt24/pos_terminal/internal/terminal"
	"github.com/Gunvolt24/pos_terminal/pkg/validate"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

func newRegistry(store *memory.StateStore, limit int) *terminal.Registry {
	return terminal.NewRegistry(terminal.Deps{
		State:     store,
		Validator: validate.NewSaleValidator(),
		Log:       noopLogger{},
	}, terminal.Options{Max: limit})
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"caja-1", true},
		{"POS_02", true},
		{strings.Repeat("a", 64), true},
		{"", false},
		{"caja 1", false},
		{"caja/1", false},
		{"ñ", false},
		{strings.Repeat("a", 65), false},
	}
	for _, tc := range tests {
		if got := terminal.ValidID(tc.id); got != tc.want {
			t.Errorf("ValidID(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestGet_RestoresCartAndReusesBundle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStateStore()
	seed := `[{"productId":1,"description":"Café","unitPrice":"1000","quantity":2,"availableStock":5}]`
	if err := store.Set(ctx, localstate.Key("caja-1", localstate.KeyCart), []byte(seed)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	reg := newRegistry(store, 0)

	b1, err := reg.Get(ctx, "caja-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := b1.Cart.Snapshot().ItemCount; got != 2 {
		t.Fatalf("restored item count = %d, want 2", got)
	}
	b2, err := reg.Get(ctx, "caja-1")
	if err != nil || b1 != b2 {
		t.Fatalf("want same bundle, got %p %p err=%v", b1, b2, err)
	}
	if reg.Len() != 1 {
		t.Fatalf("len = %d", reg.Len())
	}
}

func TestGet_TerminalsAreIsolated(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(memory.NewStateStore(), 0)

	a, _ := reg.Get(ctx, "a")
	b, _ := reg.Get(ctx, "b")
	p := &domain.Product{ID: 1, Description: "Pan", AvailableStock: 3}
	if err := a.Cart.AddItem(ctx, p, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !b.Cart.Empty() {
		t.Fatal("cart of terminal b must stay empty")
	}
}

func TestGet_InvalidIDAndLimit(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(memory.NewStateStore(), 1)

	if _, err := reg.Get(ctx, "bad id"); !errors.Is(err, terminal.ErrInvalidID) {
		t.Fatalf("want invalid id, got %v", err)
	}
	if _, err := reg.Get(ctx, "one"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := reg.Get(ctx, "two"); !errors.Is(err, terminal.ErrLimit) {
		t.Fatalf("want limit, got %v", err)
	}
	if !reg.Evict("one") {
		t.Fatal("evict must report removal")
	}
	if _, err := reg.Get(ctx, "two"); err != nil {
		t.Fatalf("get after evict: %v", err)
	}
}

func TestGet_StorageReadFailureStartsEmpty(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStateStore(ctrl)
	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, errors.New("redis: i/o timeout")).AnyTimes()

	reg := terminal.NewRegistry(terminal.Deps{State: store, Log: noopLogger{}}, terminal.Options{})
	b, err := reg.Get(ctx, "caja-1")
	if err != nil {
		t.Fatalf("read failure must not be fatal: %v", err)
	}
	if b.Session.IsAuthenticated() || !b.Cart.Empty() {
		t.Fatal("terminal must start without session and with an empty cart")
	}
}

func TestRelease_DropsTerminalWithoutState(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(memory.NewStateStore(), 1)

	for _, id := range []string{"junk-0", "junk-1", "junk-2"} {
		b, err := reg.Get(ctx, id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		reg.Release(b)
	}
	if reg.Len() != 0 {
		t.Fatalf("len = %d, want 0", reg.Len())
	}
}

func TestRelease_KeepsTerminalWithCart(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(memory.NewStateStore(), 0)

	b, _ := reg.Get(ctx, "caja-1")
	if err := b.Cart.AddItem(ctx, &domain.Product{ID: 1, Description: "Pan", AvailableStock: 3}, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	reg.Release(b)
	if _, ok := reg.Lookup("caja-1"); !ok {
		t.Fatal("terminal with a cart must stay loaded")
	}
}

func TestRelease_WaitsForConcurrentRequests(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(memory.NewStateStore(), 0)

	first, _ := reg.Get(ctx, "caja-1")
	second, _ := reg.Get(ctx, "caja-1")
	reg.Release(first)
	if reg.Len() != 1 {
		t.Fatal("terminal in use must not be dropped")
	}
	reg.Release(second)
	if reg.Len() != 0 {
		t.Fatalf("len = %d, want 0", reg.Len())
	}
}

func TestSweep_EvictsIdleTerminalsAndRestoresLater(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStateStore()
	reg := newRegistry(store, 0)

	b, _ := reg.Get(ctx, "caja-1")
	_ = b.Cart.AddItem(ctx, &domain.Product{ID: 1, Description: "Pan", AvailableStock: 3}, 2)
	reg.Release(b)

	busy, _ := reg.Get(ctx, "caja-2")
	_ = busy.Cart.AddItem(ctx, &domain.Product{ID: 1, Description: "Pan", AvailableStock: 3}, 1)

	if n := reg.Sweep(time.Now(), time.Hour); n != 0 {
		t.Fatalf("fresh terminals swept: %d", n)
	}
	if n := reg.Sweep(time.Now().Add(2*time.Hour), time.Hour); n != 1 {
		t.Fatalf("swept = %d, want 1", n)
	}
	if _, ok := reg.Lookup("caja-2"); !ok {
		t.Fatal("terminal with an open request must stay")
	}

	again, err := reg.Get(ctx, "caja-1")
	if err != nil {
		t.Fatalf("get after sweep: %v", err)
	}
	if again == b || again.Cart.Snapshot().ItemCount != 2 {
		t.Fatalf("cart must be restored from storage, items=%d", again.Cart.Snapshot().ItemCount)
	}
}

func TestNewRegistry_TaxRate(t *testing.T) {
	ctx := context.Background()
	deps := terminal.Deps{State: memory.NewStateStore(), Log: noopLogger{}}

	def, _ := terminal.NewRegistry(deps, terminal.Options{}).Get(ctx, "a")
	if !def.Cart.TaxRate().Equal(cart.DefaultTaxRate) {
		t.Fatalf("default rate = %s", def.Cart.TaxRate())
	}
	zero, _ := terminal.NewRegistry(deps, terminal.Options{TaxRate: decimal.NewNullDecimal(decimal.Zero)}).Get(ctx, "a")
	if !zero.Cart.TaxRate().IsZero() {
		t.Fatalf("configured zero rate replaced with %s", zero.Cart.TaxRate())
	}
}
