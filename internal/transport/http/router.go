// Package rest — HTTP API кассы поверх реестра терминалов.
package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Gunvolt24/pos_terminal/internal/checkout"
	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/ports"
	"github.com/Gunvolt24/pos_terminal/internal/terminal"
	"github.com/Gunvolt24/pos_terminal/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type productCatalog interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	Product(ctx context.Context, productID int64) (*domain.Product, error)
	LowStockThreshold() int
}

type Handler struct {
	terminals *terminal.Registry
	catalog   productCatalog
	log       ports.Logger
	timeout   time.Duration // 0 — без таймаута
	uiURL     string        // адрес интерфейса кассы для возврата браузера; "" — тот же origin
}

func NewHandler(terminals *terminal.Registry, catalog productCatalog, log ports.Logger, timeout time.Duration) *Handler {
	return &Handler{terminals: terminals, catalog: catalog, log: log, timeout: timeout}
}

// WithUI — базовый адрес интерфейса, куда возвращается браузер после внешней оплаты.
func (h *Handler) WithUI(baseURL string) *Handler {
	h.uiURL = strings.TrimRight(baseURL, "/")
	return h
}

// NewRouter — gin-роутер кассы; otelServiceName == "" отключает otelgin.
func NewRouter(h *Handler, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log, "/ping", "/metrics", "/api/cart/events"))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Возврат с внешней оплаты: браузерный редирект, терминал приходит в query.
	r.GET(checkout.ReturnPath, h.withTerminal(), h.paymentReturn)

	api := r.Group("/api", h.withTerminal())
	{
		api.POST("/session/login", h.login)
		api.POST("/session/logout", h.logout)
		api.GET("/session", h.currentSession)

		pos := api.Group("", h.requireRole(domain.RoleCashier))
		pos.GET("/catalog/products", h.listProducts)

		pos.GET("/cart", h.getCart)
		pos.GET("/cart/events", h.cartEvents)
		pos.POST("/cart/items", h.addItem)
		pos.PUT("/cart/items/:id", h.setQuantity)
		pos.DELETE("/cart/items/:id", h.removeItem)
		pos.DELETE("/cart", h.clearCart)

		pos.POST("/checkout", h.pay)
		pos.POST("/checkout/external", h.beginExternal)
		pos.GET("/checkout/state", h.checkoutState)
		pos.POST("/checkout/resume", h.resumeExternal)
		pos.POST("/checkout/confirm", h.confirmExternal)

		pos.GET("/sales/history", h.salesHistory)
	}

	return r
}

// requestContext — контекст запроса с таймаутом обработчика.
func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}
