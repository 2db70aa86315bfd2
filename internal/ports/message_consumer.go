package ports

import "context"

// MessageConsumer — фоновый потребитель сообщений (события инвентаризации).
// Run блокируется до отмены контекста или фатальной ошибки.
type MessageConsumer interface {
	Run(ctx context.Context) error
	Close() error
}
