package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Gunvolt24/pos_terminal/config"
	cachemem "github.com/Gunvolt24/pos_terminal/internal/cache/memory"
	"github.com/Gunvolt24/pos_terminal/internal/catalog"
	"github.com/Gunvolt24/pos_terminal/internal/checkout"
	"github.com/Gunvolt24/pos_terminal/internal/gateway/backend"
	"github.com/Gunvolt24/pos_terminal/internal/kafka"
	"github.com/Gunvolt24/pos_terminal/internal/ports"
	"github.com/Gunvolt24/pos_terminal/internal/repo/memory"
	"github.com/Gunvolt24/pos_terminal/internal/repo/postgres"
	redisrepo "github.com/Gunvolt24/pos_terminal/internal/repo/redis"
	"github.com/Gunvolt24/pos_terminal/internal/terminal"
	rest "github.com/Gunvolt24/pos_terminal/internal/transport/http"
	"github.com/Gunvolt24/pos_terminal/pkg/logger"
	"github.com/Gunvolt24/pos_terminal/pkg/metrics"
	"github.com/Gunvolt24/pos_terminal/pkg/telemetry"
	"github.com/Gunvolt24/pos_terminal/pkg/validate"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Драйверы хранилища состояния терминалов.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// App — собранное приложение и его внешние интерфейсы (HTTP, метрики, consumer).
type App struct {
	Logger          ports.Logger          // логгер
	HTTPServer      *http.Server          // HTTP-сервер кассы
	MetricsServer   *http.Server          // отдельный /metrics; nil — только на основном сервере
	KafkaConsumer   ports.MessageConsumer // консьюмер событий инвентаризации; nil — выключен
	Terminals       *terminal.Registry    // реестр терминалов
	gracefulTimeout time.Duration         // время ожидания завершения HTTP-сервера
	terminalIdle    time.Duration         // простой, после которого терминал выгружается; 0 — никогда
	sweepInterval   time.Duration
}

// parseTaxRate — ставка IVA из конфигурации; пустая строка — ставка по умолчанию.
func parseTaxRate(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("invalid cart tax rate %q", raw)
	}
	return decimal.NewNullDecimal(rate), nil
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// openStateStore — хранилище состояния терминалов по драйверу из конфигурации.
func openStateStore(ctx context.Context, cfg *config.Config, log ports.Logger) (ports.StateStore, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case "", DriverMemory:
		log.Warnf(ctx, "state storage: memory, terminal state will not survive restart")
		return memory.NewStateStore(), func() {}, nil

	case DriverRedis:
		rdb, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		log.Infof(ctx, "state storage: redis addr=%s db=%d ttl=%s", cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.TTL)
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				log.Warnf(ctx, "redis close: %v", err)
			}
		}
		return redisrepo.NewStateStore(rdb, cfg.Redis.TTL), closeFn, nil

	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		log.Infof(ctx, "state storage: postgres max_conns=%d", cfg.Postgres.MaxConns)
		return postgres.NewStateStore(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}
	fail := func(err error) (*App, Cleanup, error) {
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
		return nil, func() {}, err
	}

	taxRate, err := parseTaxRate(cfg.Cart.TaxRate)
	if err != nil {
		return fail(err)
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Хранилище состояния терминалов.
	state, closeState, err := openStateStore(ctx, cfg, logg)
	if err != nil {
		return fail(fmt.Errorf("open state storage: %w", err))
	}

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// Бэкенд и доменный слой.
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logg)
	productCache := cachemem.NewProductCache(cfg.Cache.Capacity, cfg.Cache.TTL)
	catalogSvc := catalog.NewService(client, productCache, logg, cfg.Cache.LowStockThreshold)

	terminals := terminal.NewRegistry(terminal.Deps{
		State:     state,
		Auth:      client,
		Sales:     client,
		Prefs:     client,
		Validator: validate.NewSaleValidator(),
		Log:       logg,
	}, terminal.Options{
		TaxRate: taxRate,
		Payments: checkout.Config{
			CheckoutURL: cfg.Payments.CheckoutURL,
			PublicURL:   cfg.Payments.PublicURL,
			Currency:    cfg.Payments.Currency,
		},
		Max: cfg.Terminals.Max,
	})

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(terminals, catalogSvc, logg, cfg.HTTP.HandlerTimeout).WithUI(cfg.Payments.UIURL)
	router := rest.NewRouter(httpHandler, otelServiceName)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	var metricsSrv *http.Server
	if addr := strings.TrimSpace(cfg.Metrics.Addr); addr != "" && addr != cfg.HTTP.Addr {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout}
	}

	// Консьюмер событий инвентаризации (опционален).
	var consumer ports.MessageConsumer
	if cfg.Kafka.Enabled {
		kafkaCfg := kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			Topic:          cfg.Kafka.Topic,
			StartOffset:    cfg.Kafka.StartOffset,
			ProcessTimeout: cfg.Kafka.ProcessTimeout,
			RetryInitial:   cfg.Kafka.RetryInitial,
			RetryMax:       cfg.Kafka.RetryMax,
		}
		consumer = kafka.NewConsumer(&kafkaCfg, catalogSvc, logg)
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		MetricsServer:   metricsSrv,
		KafkaConsumer:   consumer,
		Terminals:       terminals,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
		terminalIdle:    cfg.Terminals.IdleTTL,
		sweepInterval:   cfg.Terminals.SweepInterval,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				logg.Warnf(ctx, "kafka consumer close error: %v", err)
			}
		}

		closeState()
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	}

	return app, cleanup, nil
}

// Run — запускает HTTP-сервер и консьюмера; ждёт отмены контекста или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 3)

	// Запуск консьюмера.
	if a.KafkaConsumer != nil {
		go func() {
			a.Logger.Infof(ctx, "kafka consumer starting")
			if err := a.KafkaConsumer.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	// Выгрузка простаивающих терминалов.
	if a.Terminals != nil && a.terminalIdle > 0 {
		interval := a.sweepInterval
		if interval <= 0 {
			interval = time.Minute
		}
		go a.Terminals.RunSweeper(ctx, interval, a.terminalIdle)
	}

	// Запуск HTTP-серверов.
	for _, srv := range []*http.Server{a.HTTPServer, a.MetricsServer} {
		if srv == nil {
			continue
		}
		go func(srv *http.Server) {
			a.Logger.Infof(ctx, "http server starting (addr=%s)", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(srv)
	}

	// Ожидание сигнала остановки или фоновой ошибки.
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Warnf(ctx, "background error: %v", err)
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-серверов.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	for _, srv := range []*http.Server{a.HTTPServer, a.MetricsServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warnf(ctx, "http server %s shutdown failed: %v", srv.Addr, err)
		} else {
			a.Logger.Infof(ctx, "http server %s stopped gracefully", srv.Addr)
		}
	}

	// Остановка Kafka-консьюмера
	if a.KafkaConsumer != nil {
		if err := a.KafkaConsumer.Close(); err != nil {
			a.Logger.Warnf(ctx, "kafka consumer close error: %v", err)
		}
	}

	a.Logger.Infof(ctx, "service stopped")
	return nil
}
