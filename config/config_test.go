package config_test

import (
	"slices"
	"testing"
	"time"

	cfg "github.com/Gunvolt24/pos_terminal/config"
)

// TestLoadWithPrefix_Defaults — проверка наличия значений по умолчанию.
func TestLoadWithPrefix_Defaults(t *testing.T) {
	t.Parallel()

	c, err := cfg.LoadWithPrefix("POS_TEST_DEFAULTS")
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	// HTTP
	if c.HTTP.Addr != ":8081" {
		t.Fatalf("HTTP.Addr: want :8081, got %q", c.HTTP.Addr)
	}
	if c.HTTP.GinMode != "debug" {
		t.Fatalf("HTTP.GinMode: want debug, got %q", c.HTTP.GinMode)
	}
	if c.HTTP.ReadTimeout != 10*time.Second || c.HTTP.WriteTimeout != 0 {
		t.Fatalf("HTTP timeouts wrong: %+v", c.HTTP)
	}
	if c.HTTP.ReadHeaderTimeout != 5*time.Second || c.HTTP.IdleTimeout != 60*time.Second {
		t.Fatalf("HTTP header/idle timeouts wrong: %+v", c.HTTP)
	}
	if c.HTTP.HandlerTimeout != 10*time.Second || c.HTTP.GracefulTimeout != 5*time.Second {
		t.Fatalf("HTTP handler/graceful timeouts wrong: %+v", c.HTTP)
	}

	// Tracing
	if c.Tracing.Enabled {
		t.Fatalf("Tracing.Enabled: want false, got true")
	}
	if c.Tracing.ServiceName != "pos-terminal" || c.Tracing.Endpoint != "jaeger:4318" || c.Tracing.SampleRatio != 1 {
		t.Fatalf("Tracing defaults wrong: %+v", c.Tracing)
	}

	// Backend / Payments / Cart
	if c.Backend.BaseURL != "http://localhost:8080/api" || c.Backend.Timeout != 15*time.Second {
		t.Fatalf("Backend defaults wrong: %+v", c.Backend)
	}
	if c.Payments.Currency != "COP" || c.Payments.PublicURL == "" || c.Payments.CheckoutURL == "" {
		t.Fatalf("Payments defaults wrong: %+v", c.Payments)
	}
	if c.Cart.TaxRate != "0.19" {
		t.Fatalf("Cart.TaxRate: want 0.19, got %q", c.Cart.TaxRate)
	}

	// Storage
	if c.Storage.Driver != "memory" {
		t.Fatalf("Storage.Driver: want memory, got %q", c.Storage.Driver)
	}
	if c.Redis.Addr != "redis:6379" || c.Redis.TTL != 0 {
		t.Fatalf("Redis defaults wrong: %+v", c.Redis)
	}
	if c.Postgres.DSN == "" || c.Postgres.MaxConns != 10 || !c.Postgres.Migrate {
		t.Fatalf("Postgres defaults wrong: %+v", c.Postgres)
	}

	// Kafka
	if c.Kafka.Enabled {
		t.Fatalf("Kafka.Enabled: want false")
	}
	if !slices.Equal(c.Kafka.Brokers, []string{"kafka:9092"}) {
		t.Fatalf("Kafka.Brokers: want [kafka:9092], got %v", c.Kafka.Brokers)
	}
	if c.Kafka.Topic != "inventory" || c.Kafka.GroupID != "pos-terminal" || c.Kafka.StartOffset != "last" {
		t.Fatalf("Kafka defaults wrong: %+v", c.Kafka)
	}
	if c.Kafka.ProcessTimeout != 5*time.Second || c.Kafka.RetryInitial != 1*time.Second || c.Kafka.RetryMax != 30*time.Second {
		t.Fatalf("Kafka timeouts wrong: %+v", c.Kafka)
	}

	// Cache
	if c.Cache.Capacity != 1000 || c.Cache.TTL != 10*time.Minute || c.Cache.LowStockThreshold != 10 {
		t.Fatalf("Cache defaults wrong: %+v", c.Cache)
	}

	if c.Terminals.Max != 256 || c.Terminals.IdleTTL != 30*time.Minute || c.Terminals.SweepInterval != time.Minute {
		t.Fatalf("Terminals defaults wrong: %+v", c.Terminals)
	}
	if c.Logger.IsProd {
		t.Fatalf("Logger.IsProd: want false, got true")
	}
}

// Меняем окружение.
func TestLoadWithPrefix_Overrides(t *testing.T) {
	const p = "POS_TEST_OVR"

	t.Setenv(p+"_HTTP_ADDR", ":9999")
	t.Setenv(p+"_HTTP_GIN_MODE", "release")
	t.Setenv(p+"_HTTP_HANDLER_TIMEOUT", "4500ms")
	t.Setenv(p+"_TRACING_OTEL_ENABLED", "true")
	t.Setenv(p+"_TRACING_OTEL_SAMPLE_RATIO", "0.25")
	t.Setenv(p+"_BACKEND_BASE_URL", "http://backend:8080/api")
	t.Setenv(p+"_PAYMENTS_PUBLIC_URL", "https://pos.example.com")
	t.Setenv(p+"_CART_TAX_RATE", "0.08")
	t.Setenv(p+"_STORAGE_DRIVER", "redis")
	t.Setenv(p+"_REDIS_ADDR", "cache:6380")
	t.Setenv(p+"_REDIS_TTL", "24h")
	t.Setenv(p+"_POSTGRES_MAX_CONNS", "42")
	t.Setenv(p+"_KAFKA_ENABLED", "true")
	t.Setenv(p+"_KAFKA_BROKERS", "k1:9092,k2:9093")
	t.Setenv(p+"_KAFKA_RETRY_MAX", "2m")
	t.Setenv(p+"_CACHE_CAPACITY", "777")
	t.Setenv(p+"_CACHE_LOW_STOCK_THRESHOLD", "3")
	t.Setenv(p+"_TERMINALS_MAX", "8")
	t.Setenv(p+"_LOGGER_IS_PROD", "true")

	c, err := cfg.LoadWithPrefix(p)
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	if c.HTTP.Addr != ":9999" || c.HTTP.GinMode != "release" || c.HTTP.HandlerTimeout != 4500*time.Millisecond {
		t.Fatalf("HTTP overrides wrong: %+v", c.HTTP)
	}
	if !c.Tracing.Enabled || c.Tracing.SampleRatio != 0.25 {
		t.Fatalf("Tracing overrides wrong: %+v", c.Tracing)
	}
	if c.Backend.BaseURL != "http://backend:8080/api" || c.Payments.PublicURL != "https://pos.example.com" {
		t.Fatalf("Backend/Payments overrides wrong: %+v %+v", c.Backend, c.Payments)
	}
	if c.Cart.TaxRate != "0.08" {
		t.Fatalf("Cart.TaxRate override wrong: %q", c.Cart.TaxRate)
	}
	if c.Storage.Driver != "redis" || c.Redis.Addr != "cache:6380" || c.Redis.TTL != 24*time.Hour {
		t.Fatalf("Storage overrides wrong: %+v %+v", c.Storage, c.Redis)
	}
	if c.Postgres.MaxConns != 42 {
		t.Fatalf("Postgres overrides wrong: %+v", c.Postgres)
	}
	if !c.Kafka.Enabled || !slices.Equal(c.Kafka.Brokers, []string{"k1:9092", "k2:9093"}) || c.Kafka.RetryMax != 2*time.Minute {
		t.Fatalf("Kafka overrides wrong: %+v", c.Kafka)
	}
	if c.Cache.Capacity != 777 || c.Cache.LowStockThreshold != 3 {
		t.Fatalf("Cache overrides wrong: %+v", c.Cache)
	}
	if c.Terminals.Max != 8 || !c.Logger.IsProd {
		t.Fatalf("Terminals/Logger overrides wrong: %+v %+v", c.Terminals, c.Logger)
	}
}

// Тоже меняем окружение — но с невалидным значением.
func TestLoadWithPrefix_InvalidValue_ReturnsError(t *testing.T) {
	const p = "POS_TEST_BAD"
	t.Setenv(p+"_HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := cfg.LoadWithPrefix(p); err == nil {
		t.Fatalf("expected error for invalid duration, got nil")
	}
}
