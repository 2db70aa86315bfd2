package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/terminal"
	"github.com/gin-gonic/gin"
)

// statusOf — HTTP-статус по виду ошибки ядра.
// Ответ бэкенда 401 пробрасывается как есть, остальные ошибки шлюза — 502.
func statusOf(err error) int {
	de, ok := domain.AsError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusInternalServerError
	}
	switch de.Kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindAmbiguous:
		return http.StatusConflict
	case domain.KindGateway:
		if de.Status == http.StatusUnauthorized {
			return http.StatusUnauthorized
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError — тело {"error": вид, "message": текст для оператора}.
func (h *Handler) respondError(c *gin.Context, err error) {
	kind := "internal"
	if de, ok := domain.AsError(err); ok {
		kind = string(de.Kind)
	}
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorf(c.Request.Context(), "%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": kind, "message": domain.UserMessage(err, domain.MsgGenericGateway)})
}

// fail — как respondError, но истёкшая на бэкенде сессия сбрасывается.
func (h *Handler) fail(c *gin.Context, b *terminal.Bundle, err error) {
	h.logoutIfExpired(c, b, err)
	h.respondError(c, err)
}

func (h *Handler) logoutIfExpired(c *gin.Context, b *terminal.Bundle, err error) {
	if de, ok := domain.AsError(err); ok && de.Kind == domain.KindGateway && de.Status == http.StatusUnauthorized {
		h.log.Warnf(c.Request.Context(), "backend rejected token, logging out user")
		b.Session.Logout(c.Request.Context())
	}
}
