package rest

import (
	"errors"
	"net/http"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/terminal"
	"github.com/Gunvolt24/pos_terminal/pkg/ctxmeta"
	"github.com/Gunvolt24/pos_terminal/pkg/httpx"
	"github.com/gin-gonic/gin"
)

const bundleKey = "pos.terminal"

const (
	msgInvalidTerminal = "Identificador de caja inválido"
	msgTerminalLimit   = "Demasiadas cajas activas, intenta más tarde"
	msgForbidden       = "No tienes permisos para acceder a esta sección"
	msgBadRequest      = "Solicitud inválida"
)

// withTerminal — находит (или восстанавливает) терминал запроса и кладёт
// его id и токен сессии в контекст. После ответа терминал возвращается реестру.
func (h *Handler) withTerminal() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := httpx.TerminalID(c)
		ctx := ctxmeta.WithTerminalID(c.Request.Context(), id)

		b, err := h.terminals.Get(ctx, id)
		switch {
		case errors.Is(err, terminal.ErrInvalidID):
			abortJSON(c, http.StatusBadRequest, "terminal", msgInvalidTerminal)
			return
		case errors.Is(err, terminal.ErrLimit):
			abortJSON(c, http.StatusServiceUnavailable, "terminal", msgTerminalLimit)
			return
		case err != nil:
			h.log.Errorf(ctx, "terminal %q unavailable: %v", id, err)
			h.respondError(c, err)
			c.Abort()
			return
		}

		defer h.terminals.Release(b)

		if sess := b.Session.Current(); sess != nil {
			ctx = ctxmeta.WithAuthToken(ctx, sess.Token)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Set(bundleKey, b)
		c.Next()
	}
}

// requireRole — доступ только аутентифицированной сессии с ролью role.
func (h *Handler) requireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		b := bundleFrom(c)
		if !b.Session.IsAuthenticated() {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", domain.MsgNotAuthenticated)
			return
		}
		if !b.Session.HasRole(role) {
			abortJSON(c, http.StatusForbidden, "forbidden", msgForbidden)
			return
		}
		c.Next()
	}
}

func bundleFrom(c *gin.Context) *terminal.Bundle {
	return c.MustGet(bundleKey).(*terminal.Bundle)
}

func abortJSON(c *gin.Context, status int, kind, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": kind, "message": msg})
}
