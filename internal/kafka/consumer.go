// Package kafka — потребитель событий инвентаризации: обновляет снимок каталога.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/Gunvolt24/pos_terminal/internal/ports"
	"github.com/Gunvolt24/pos_terminal/pkg/ctxmeta"
	"github.com/Gunvolt24/pos_terminal/pkg/metrics"
	"github.com/Gunvolt24/pos_terminal/pkg/validate"
	"github.com/segmentio/kafka-go"
)

var _ ports.MessageConsumer = (*Consumer)(nil)

// reader — часть kafka.Reader, которой пользуется потребитель.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// stockApplier — применение события к снимку каталога (catalog.Service).
type stockApplier interface {
	ApplyStockUpdate(ctx context.Context, raw []byte) error
}

// Consumer — at-least-once чтение топика инвентаризации с ручным коммитом.
type Consumer struct {
	reader         reader
	applier        stockApplier
	log            ports.Logger
	processTimeout time.Duration
	fetchBackoff   *backoff
	applyBackoff   *backoff
	closeOnce      sync.Once
}

func NewConsumer(cfg *ConsumerConfig, applier stockApplier, log ports.Logger) *Consumer {
	return newConsumer(kafka.NewReader(cfg.ReaderConfig()), cfg, applier, log)
}

func newConsumer(r reader, cfg *ConsumerConfig, applier stockApplier, log ports.Logger) *Consumer {
	c := cfg.withDefaults()
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Consumer{
		reader:         r,
		applier:        applier,
		log:            log,
		processTimeout: c.ProcessTimeout,
		fetchBackoff:   newBackoff(c.RetryInitial, c.RetryMax, rnd),
		applyBackoff:   newBackoff(c.RetryInitial, c.RetryMax, rnd),
	}
}

// Run — цикл чтения до отмены контекста.
// Применённое и невалидное событие коммитятся. При временной ошибке то же событие
// повторяется с backoff, следующие не читаются до его успеха.
func (c *Consumer) Run(ctx context.Context) error {
	rc := c.reader.Config()
	c.log.Infof(ctx, "inventory consumer started topic=%s group_id=%s brokers=%v", rc.Topic, rc.GroupID, rc.Brokers)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			pause := c.fetchBackoff.next()
			c.log.Warnf(ctx, "inventory fetch failed: %v (retry in %s)", err, pause)
			if !sleep(ctx, pause) {
				return ctx.Err()
			}
			continue
		}
		c.fetchBackoff.reset()
		metrics.KafkaMessagesConsumed.WithLabelValues(rc.Topic).Inc()

		msgCtx := ctxmeta.WithRequestID(ctx, fmt.Sprintf("kafka-%d-%d", msg.Partition, msg.Offset))
		if !c.process(msgCtx, rc.Topic, &msg) {
			return ctx.Err()
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Warnf(msgCtx, "inventory commit failed offset=%d: %v", msg.Offset, err)
		}
	}
}

// process — handle до успеха; false — контекст отменён раньше.
func (c *Consumer) process(ctx context.Context, topic string, msg *kafka.Message) bool {
	defer c.applyBackoff.reset()
	for !c.handle(ctx, topic, msg) {
		pause := c.applyBackoff.next()
		c.log.Warnf(ctx, "inventory event offset=%d retry in %s", msg.Offset, pause)
		if !sleep(ctx, pause) {
			return false
		}
	}
	return true
}

// Close — закрыть reader; повторный вызов ничего не делает.
func (c *Consumer) Close() (err error) {
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}

// handle — применить событие; true — оффсет можно коммитить.
func (c *Consumer) handle(ctx context.Context, topic string, msg *kafka.Message) bool {
	pctx, cancel := context.WithTimeout(ctx, c.processTimeout)
	defer cancel()

	err := c.applier.ApplyStockUpdate(pctx, msg.Value)
	switch {
	case err == nil:
		metrics.KafkaMessagesProcessed.WithLabelValues(topic).Inc()
		return true
	case errors.Is(err, validate.ErrInvalidStockUpdate):
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(ctx, "inventory event skipped offset=%d: %v", msg.Offset, err)
		return true
	default:
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(ctx, "inventory event failed offset=%d: %v", msg.Offset, err)
		return false
	}
}
