package httpx

import (
	"time"

	"github.com/Gunvolt24/pos_terminal/internal/ports"
	"github.com/gin-gonic/gin"
)

// RequestLogger — access-лог запросов; маршруты из skip не логируются.
// request_id, terminal_id и trace/span логгер берёт из контекста запроса.
func RequestLogger(log ports.Logger, skip ...string) gin.HandlerFunc {
	quiet := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		quiet[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if _, ok := quiet[path]; ok {
			return
		}
		if path == "" {
			path = c.Request.URL.Path
		}

		level := log.Infof
		switch status := c.Writer.Status(); {
		case status >= 500:
			level = log.Errorf
		case status >= 400:
			level = log.Warnf
		}
		level(
			c.Request.Context(),
			"request method=%s path=%s status=%d ip=%s duration=%s size=%d",
			c.Request.Method, path, c.Writer.Status(), c.ClientIP(), time.Since(start), c.Writer.Size(),
		)
	}
}
