// Пакет ctxmeta — нейтральный слой для метаданных запроса, которые прокидываются
// через context.Context: request_id, id терминала, токен сессии, trace/span.
// HTTP-слой, шлюзы к бэкенду и логгер зависят от него, но не друг от друга.
package ctxmeta

import "context"

type ctxKey string

// Ключи контекста (собственный тип — чтобы избежать коллизий).
const (
	KeyRequestID  ctxKey = "request_id"
	KeyTerminalID ctxKey = "terminal_id"
	KeyAuthToken  ctxKey = "auth_token"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, KeyRequestID)
}

// WithTerminalID кладёт id терминала (кассы) в контекст.
func WithTerminalID(ctx context.Context, terminalID string) context.Context {
	return withString(ctx, KeyTerminalID, terminalID)
}

// TerminalIDFromContext достаёт id терминала.
func TerminalIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, KeyTerminalID)
}

// WithAuthToken кладёт токен текущей сессии; шлюз к бэкенду передаёт его как Bearer.
func WithAuthToken(ctx context.Context, token string) context.Context {
	return withString(ctx, KeyAuthToken, token)
}

// AuthTokenFromContext достаёт токен сессии.
func AuthTokenFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, KeyAuthToken)
}

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	if ctx == nil || value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
