package rest

import (
	"io"
	"net/http"

	"github.com/Gunvolt24/pos_terminal/internal/catalog"
	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/pkg/httpx"
	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  *int  `json:"quantity"` // по умолчанию 1
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type productsResponse struct {
	Products   []*domain.Product `json:"products"`
	Categories []string          `json:"categories"`
	LowStock   []*domain.Product `json:"lowStock"`
}

func (h *Handler) listProducts(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		h.fail(c, bundleFrom(c), err)
		return
	}
	c.JSON(http.StatusOK, productsResponse{
		Products:   catalog.Filter(products, c.Query("q"), c.Query("category")),
		Categories: catalog.Categories(products),
		LowStock:   catalog.LowStock(products, h.catalog.LowStockThreshold()),
	})
}

func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, bundleFrom(c).Cart.Snapshot())
}

// cartEvents — поток снимков корзины (SSE); первый снимок уходит сразу.
// Изменения схлопываются: клиент получает текущий снимок, а не очередь старых.
func (h *Handler) cartEvents(c *gin.Context) {
	b := bundleFrom(c)
	changed := make(chan struct{}, 1)
	unsubscribe := b.Cart.Subscribe(func(domain.CartSnapshot) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	c.Stream(func(io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-changed:
			c.SSEvent("cart", b.Cart.Snapshot())
			return true
		}
	})
}

func (h *Handler) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": msgBadRequest})
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	b := bundleFrom(c)
	product, err := h.catalog.Product(ctx, req.ProductID)
	if err != nil {
		h.fail(c, b, err)
		return
	}
	if err := b.Cart.AddItem(ctx, product, qty); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b.Cart.Snapshot())
}

func (h *Handler) setQuantity(c *gin.Context) {
	id, ok := httpx.ParseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": msgBadRequest})
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": msgBadRequest})
		return
	}

	b := bundleFrom(c)
	if err := b.Cart.SetQuantity(c.Request.Context(), id, req.Quantity); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b.Cart.Snapshot())
}

func (h *Handler) removeItem(c *gin.Context) {
	id, ok := httpx.ParseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": msgBadRequest})
		return
	}
	b := bundleFrom(c)
	b.Cart.RemoveItem(c.Request.Context(), id)
	c.JSON(http.StatusOK, b.Cart.Snapshot())
}

func (h *Handler) clearCart(c *gin.Context) {
	b := bundleFrom(c)
	b.Cart.Clear(c.Request.Context())
	c.JSON(http.StatusOK, b.Cart.Snapshot())
}
