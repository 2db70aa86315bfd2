package httpx

import (
	"strings"

	"github.com/Gunvolt24/pos_terminal/pkg/ctxmeta"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Заголовки, которые читает и выставляет HTTP-слой.
const (
	HeaderRequestID  = "X-Request-ID"
	HeaderTerminalID = "X-Terminal-ID"
)

// RequestIDMiddleware:
// - принимает X-Request-ID от клиента или генерирует UUID
// - кладёт request_id в контекст
// - возвращает его в ответном заголовке X-Request-ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(HeaderRequestID, requestID)

		ctx := ctxmeta.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// TerminalID — id терминала из заголовка X-Terminal-ID, а если его нет — из query ?terminal=
// (страница возврата с внешней оплаты приходит браузерным редиректом, без заголовков).
func TerminalID(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader(HeaderTerminalID)); v != "" {
		return v
	}
	return strings.TrimSpace(c.Query("terminal"))
}
