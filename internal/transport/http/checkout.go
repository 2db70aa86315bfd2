package rest

import (
	"net/http"
	"net/url"

	"github.com/Gunvolt24/pos_terminal/internal/checkout"
	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/session"
	"github.com/Gunvolt24/pos_terminal/pkg/httpx"
	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type resumeRequest struct {
	Status    string `json:"status"`
	PaymentID string `json:"paymentId"`
}

type confirmRequest struct {
	Confirmed bool   `json:"confirmed"`
	PaymentID string `json:"paymentId"`
}

// stateResponse — неразобранный снимок вне ожидания оплаты (например, после перезапуска)
// требует сверки при каждом открытии кассы.
type stateResponse struct {
	State     checkout.State                 `json:"state"`
	Pending   *domain.PendingExternalPayment `json:"pending,omitempty"`
	Reconcile bool                           `json:"reconcile"`
	Prompt    string                         `json:"prompt,omitempty"`
}

func (h *Handler) pay(c *gin.Context) {
	var details domain.PaymentDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": msgBadRequest})
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	b := bundleFrom(c)
	invoice, err := b.Checkout.Pay(ctx, details)
	if err != nil {
		h.fail(c, b, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (h *Handler) beginExternal(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	b := bundleFrom(c)
	out, err := b.Reconciler.Begin(ctx)
	if err != nil {
		h.fail(c, b, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) checkoutState(c *gin.Context) {
	b := bundleFrom(c)
	pending, err := b.Reconciler.Pending(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp := stateResponse{State: b.Reconciler.State(), Pending: pending}
	if pending != nil && resp.State != checkout.StateAwaitingAuthorization {
		resp.Reconcile = true
		resp.Prompt = checkout.ConfirmPrompt
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) resumeExternal(c *gin.Context) {
	var req resumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": msgBadRequest})
		return
	}
	h.resume(c, domain.ParseReturnStatus(req.Status), req.PaymentID)
}

// paymentReturn — страница возврата: ?payment=success|pending|failure&payment_id=...
// Браузер (Accept: text/html) отправляется на экран кассы с исходом в query,
// остальные клиенты получают Outcome в JSON.
func (h *Handler) paymentReturn(c *gin.Context) {
	status := domain.ParseReturnStatus(c.Query("payment"))
	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) != gin.MIMEHTML {
		h.resume(c, status, c.Query("payment_id"))
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	b := bundleFrom(c)
	q := url.Values{}
	out, err := b.Reconciler.Resume(ctx, status, c.Query("payment_id"))
	if err != nil {
		h.logoutIfExpired(c, b, err)
		h.log.Warnf(ctx, "payment return failed: %v", err)
		q.Set("payment", string(checkout.ResultFailed))
		q.Set("message", domain.UserMessage(err, domain.MsgGenericGateway))
	} else {
		q.Set("payment", string(out.Result))
		if msg := out.Message + out.Prompt; msg != "" {
			q.Set("message", msg)
		}
	}
	c.Redirect(http.StatusSeeOther, h.uiURL+session.RouteCashier+"?"+q.Encode())
}

func (h *Handler) resume(c *gin.Context, status domain.ReturnStatus, paymentRef string) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	b := bundleFrom(c)
	out, err := b.Reconciler.Resume(ctx, status, paymentRef)
	if err != nil {
		h.fail(c, b, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) confirmExternal(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": msgBadRequest})
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	b := bundleFrom(c)
	out, err := b.Reconciler.Confirm(ctx, req.Confirmed, req.PaymentID)
	if err != nil {
		h.fail(c, b, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) salesHistory(c *gin.Context) {
	limit, offset := httpx.ParseLimitOffset(c, defaultHistoryLimit, maxHistoryLimit)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	b := bundleFrom(c)
	invoices, err := b.Checkout.History(ctx)
	if err != nil {
		h.fail(c, b, err)
		return
	}
	c.JSON(http.StatusOK, httpx.Page(invoices, limit, offset))
}
