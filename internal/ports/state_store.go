package ports

import "context"

// StateStore — долговременный key-value кэш состояния терминала (аналог localStorage).
// Значения — непрозрачные JSON-блобы. Отсутствие ключа — (nil, false, nil).
// Реализации: memory, redis, postgres.
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
