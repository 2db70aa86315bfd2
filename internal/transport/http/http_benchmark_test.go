//go:build !integration

package rest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/localstate"
	"github.com/Gunvolt24/pos_terminal/internal/repo/memory"
	"github.com/Gunvolt24/pos_terminal/internal/terminal"
)

// --- Бенчмарки ---

// Снимок корзины: голый хендлер против полного пайплайна NewRouter
func BenchmarkHTTP_GetCart(b *testing.B) {
	h := benchHandler(b, catalogStub{})

	lean := makeLeanRouter(h)
	full := makeFullRouter(h)

	b.Run("lean/terminal-mw", func(b *testing.B) {
		benchServeGET(b, lean, "/api/cart")
	})
	b.Run("full/prod-mw", func(b *testing.B) {
		benchServeGET(b, full, "/api/cart")
	})
}

// Каталог: 10/100/1000 товаров — фильтр, категории и низкий остаток на каждый запрос
func BenchmarkHTTP_ListProducts(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run("N="+strconv.Itoa(n), func(b *testing.B) {
			list := make([]*domain.Product, 0, n)
			for i := 0; i < n; i++ {
				list = append(list, &domain.Product{
					ID:             int64(i + 1),
					Description:    "Producto " + strconv.Itoa(i),
					Category:       "Cat " + strconv.Itoa(i%7),
					UnitPrice:      decimal.NewFromInt(1000),
					AvailableStock: i % 20,
				})
			}
			h := benchHandler(b, catalogStub{list: list})
			benchServeGET(b, makeLeanRouter(h), "/api/catalog/products?q=producto&category=Cat+3")
		})
	}
}

// Ошибочный путь (404): "цена" роутера и 404-хендлера
func BenchmarkHTTP_404(b *testing.B) {
	r := makeLeanRouter(benchHandler(b, catalogStub{}))

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req, _ := http.NewRequest(http.MethodGet, "/nope", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			_, _ = io.Copy(io.Discard, w.Body)
			if w.Code != http.StatusNotFound {
				b.Fatalf("status=%d", w.Code)
			}
		}
	})
}

// --- nopLogger — логгер, который не делает ничего. ---

type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// --- Стабы ---

// каталог: заранее подготовленная выборка (без аллокаций на каждом вызове)
type catalogStub struct{ list []*domain.Product }

func (s catalogStub) ListProducts(context.Context) ([]*domain.Product, error) { return s.list, nil }
func (s catalogStub) Product(context.Context, int64) (*domain.Product, error) {
	return nil, domain.ValidationError(domain.ErrProductNotFound, domain.MsgProductNotFound)
}
func (catalogStub) LowStockThreshold() int { return 10 }

// --- функции-помощники ---

const benchTerminal = "bench"

// benchHandler — терминал с восстановленной сессией кассира.
func benchHandler(b *testing.B, cat productCatalog) *Handler {
	b.Helper()
	ctx := context.Background()
	store := memory.NewStateStore()
	user := `{"idUsuario":7,"idRol":2,"nombre":"Ana"}`
	if err := store.Set(ctx, localstate.Key(benchTerminal, localstate.KeyCurrentUser), []byte(user)); err != nil {
		b.Fatal(err)
	}
	if err := store.Set(ctx, localstate.Key(benchTerminal, localstate.KeyAuthToken), []byte(`"tok"`)); err != nil {
		b.Fatal(err)
	}
	reg := terminal.NewRegistry(terminal.Deps{State: store, Log: nopLogger{}}, terminal.Options{})
	return NewHandler(reg, cat, nopLogger{}, 2*time.Second)
}

func makeLeanRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New() // без Recovery/otel/logger — только терминал и роль
	pos := r.Group("/api", h.withTerminal(), h.requireRole(domain.RoleCashier))
	pos.GET("/cart", h.getCart)
	pos.GET("/catalog/products", h.listProducts)
	return r
}

func makeFullRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	// prod пайплайн из NewRouter
	return NewRouter(h, "")
}

func benchServeGET(b *testing.B, r *gin.Engine, path string) {
	b.Helper()
	b.ReportAllocs()
	b.ResetTimer()

	// Параллельный режим ближе к реальности без TCP
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
			req.Header.Set("X-Terminal-ID", benchTerminal)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			_, _ = io.Copy(io.Discard, w.Body)
			if w.Code != http.StatusOK {
				b.Fatalf("status=%d", w.Code)
			}
		}
	})
}
