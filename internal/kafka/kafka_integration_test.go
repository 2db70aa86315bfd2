//go:build integration

package kafka_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cachemem "github.com/Gunvolt24/pos_terminal/internal/cache/memory"
	"github.com/Gunvolt24/pos_terminal/internal/catalog"
	ikafka "github.com/Gunvolt24/pos_terminal/internal/kafka"
	"github.com/Gunvolt24/pos_terminal/internal/testutil"
	"github.com/Gunvolt24/pos_terminal/pkg/logger"
)

var reUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func safe(t *testing.T) string { return reUnsafe.ReplaceAllString(t.Name(), "-") }

type stack struct {
	ctx     context.Context
	brokers []string
	topic   string
	group   string
	cache   *cachemem.ProductCache
	catalog *catalog.Service
	log     *logger.ZapLogger
}

func newStack(t *testing.T) *stack {
	t.Helper()

	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancelStart)

	kf, stopKF, err := testutil.StartKafkaTC(ctxStart, "inventory-itc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopKF(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	t.Cleanup(cancel)

	topic, group := testutil.UniqueTopicAndGroup(kf.BaseTopic + "-" + safe(t))
	require.NoError(t, testutil.EnsureTopic(ctx, kf.Brokers[0], topic))

	logg, closer, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer() })

	cache := cachemem.NewProductCache(100, time.Minute)
	return &stack{
		ctx:     ctx,
		brokers: kf.Brokers,
		topic:   topic,
		group:   group,
		cache:   cache,
		catalog: catalog.NewService(nil, cache, logg, catalog.DefaultLowStockThreshold),
		log:     logg,
	}
}

func (s *stack) run(t *testing.T, startOffset string) {
	t.Helper()
	consumer := ikafka.NewConsumer(&ikafka.ConsumerConfig{
		Brokers:        s.brokers,
		Topic:          s.topic,
		GroupID:        s.group,
		StartOffset:    startOffset,
		ProcessTimeout: 3 * time.Second,
		RetryInitial:   200 * time.Millisecond,
		RetryMax:       2 * time.Second,
	}, s.catalog, s.log)

	runCtx, cancelRun := context.WithCancel(s.ctx)
	t.Cleanup(func() {
		cancelRun()
		_ = consumer.Close()
	})
	go func() { _ = consumer.Run(runCtx) }()
}

func (s *stack) write(t *testing.T, payloads ...string) {
	t.Helper()
	require.NoError(t, testutil.ProduceStockUpdates(s.ctx, s.brokers, s.topic, payloads...))
}

func (s *stack) waitStock(t *testing.T, id int64, want int) {
	t.Helper()
	deadline := time.Now().Add(20 * time.Second)
	for {
		p, ok := s.cache.Get(s.ctx, id)
		require.True(t, ok, "product %d must stay cached", id)
		if p.AvailableStock == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("product %d stock = %d, want %d", id, p.AvailableStock, want)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func TestKafka_StockUpdateApplied_TC(t *testing.T) {
	s := newStack(t)
	require.NoError(t, s.cache.Set(s.ctx, testutil.MakeProduct(101, testutil.WithStock(10))))

	s.run(t, "first")
	s.write(t, `{"idProducto":101,"cantidadDisponible":4,"precioUnitario":"1500"}`)

	s.waitStock(t, 101, 4)
	p, _ := s.cache.Get(s.ctx, 101)
	require.Equal(t, "1500", p.UnitPrice.String())
}

func TestKafka_InvalidEventsSkipped_TC(t *testing.T) {
	s := newStack(t)
	require.NoError(t, s.cache.Set(s.ctx, testutil.MakeProduct(202, testutil.WithStock(10))))

	s.run(t, "first")
	s.write(t,
		"not-a-json",
		`{"idProducto":202,"cantidadDisponible":-1}`,
		`{"idProducto":202,"cantidadDisponible":3,"extra":true}`,
		`{"idProducto":202,"cantidadDisponible":7}`,
	)

	s.waitStock(t, 202, 7)
}

func TestKafka_StartOffsetLast_IgnoresOld_TC(t *testing.T) {
	s := newStack(t)
	require.NoError(t, s.cache.Set(s.ctx, testutil.MakeProduct(303, testutil.WithStock(10))))

	// старое событие до старта потребителя
	s.write(t, `{"idProducto":303,"cantidadDisponible":1}`)
	s.run(t, "last")

	deadline := time.Now().Add(20 * time.Second)
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()
	for {
		s.write(t, `{"idProducto":303,"cantidadDisponible":8}`)
		p, ok := s.cache.Get(s.ctx, 303)
		require.True(t, ok)
		if p.AvailableStock == 8 {
			break
		}
		require.NotEqual(t, 1, p.AvailableStock, "old event must not be applied")
		if time.Now().After(deadline) {
			t.Fatal("new event not applied in time")
		}
		<-ticker.C
	}
}
