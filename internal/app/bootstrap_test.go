package app_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gunvolt24/pos_terminal/config"
	"github.com/Gunvolt24/pos_terminal/internal/app"
)

// логгер-заглушка
type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// фейковый консьюмер, который ждёт отмены контекста
type fakeConsumer struct {
	runCalls   int32
	closeCalls int32
}

func (f *fakeConsumer) Run(ctx context.Context) error {
	atomic.AddInt32(&f.runCalls, 1)
	<-ctx.Done()
	return ctx.Err()
}
func (f *fakeConsumer) Close() error {
	atomic.AddInt32(&f.closeCalls, 1)
	return nil
}

func TestAppRun_GracefulShutdown(t *testing.T) {
	// HTTP-сервер на случайном свободном порту
	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NewServeMux(),
	}

	fc := &fakeConsumer{}
	a := &app.App{
		Logger:        nopLogger{},
		HTTPServer:    srv,
		KafkaConsumer: fc,
	}

	// Запуск и быстрая остановка
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if atomic.LoadInt32(&fc.runCalls) == 0 {
		t.Fatalf("consumer.Run should be called")
	}
	if atomic.LoadInt32(&fc.closeCalls) == 0 {
		t.Fatalf("consumer.Close should be called")
	}
}

func TestAppRun_WithoutConsumer(t *testing.T) {
	a := &app.App{
		Logger:     nopLogger{},
		HTTPServer: &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c, err := config.LoadWithPrefix("POS_APP_TEST")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	c.HTTP.GinMode = "test"
	return &c
}

func TestBootstrap_MemoryDefaults(t *testing.T) {
	cfg := testConfig(t)

	a, cleanup, err := app.Bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer cleanup()

	if a.KafkaConsumer != nil {
		t.Fatal("kafka is disabled by default")
	}
	if a.Terminals == nil || a.HTTPServer == nil {
		t.Fatal("terminals and http server must be built")
	}
	if a.MetricsServer == nil || a.MetricsServer.Addr != ":2112" {
		t.Fatalf("metrics server = %+v", a.MetricsServer)
	}
}

func TestBootstrap_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown driver", func(c *config.Config) { c.Storage.Driver = "etcd" }},
		{"bad tax rate", func(c *config.Config) { c.Cart.TaxRate = "diecinueve" }},
		{"negative tax rate", func(c *config.Config) { c.Cart.TaxRate = "-0.1" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t)
			tc.mutate(cfg)
			if _, _, err := app.Bootstrap(context.Background(), cfg); err == nil {
				t.Fatal("want error")
			}
		})
	}
}

func TestBootstrap_ZeroTaxRateIsKept(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cart.TaxRate = "0"

	a, cleanup, err := app.Bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer cleanup()

	b, err := a.Terminals.Get(context.Background(), "caja-1")
	if err != nil {
		t.Fatalf("get terminal: %v", err)
	}
	defer a.Terminals.Release(b)
	if !b.Cart.TaxRate().IsZero() {
		t.Fatalf("tax rate = %s, want 0", b.Cart.TaxRate())
	}
}
