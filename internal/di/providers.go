package di

import (
	"context"
	"fmt"
	"time"

	"UpgradeRisk/internal/domain/repository"
	"UpgradeRisk/internal/handler/api"
	internalrepo "UpgradeRisk/internal/repository"
	"UpgradeRisk/internal/service/broadcast"
	"UpgradeRisk/internal/service/ratelimit"
	"UpgradeRisk/internal/usecase"
	"UpgradeRisk/pkg/cache"
	pkgch "UpgradeRisk/pkg/clickhouse"
	"UpgradeRisk/pkg/config"
	xhttp "UpgradeRisk/pkg/http"
	pkgkafka "UpgradeRisk/pkg/kafka"
	applogger "UpgradeRisk/pkg/logger"
	"UpgradeRisk/pkg/metrics"
	"UpgradeRisk/pkg/postgres"
	"UpgradeRisk/pkg/server"

	"github.com/labstack/echo/v4"
)

const serviceName = "upgraderisk"

// Optional backends: a disabled backend yields a nil client and a no-op cleanup,
// and every consumer of it degrades to request-only data.

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithKeyHashing(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger builds the app logger and, when enabled, attaches the error
// collector that ships aggregated errors to Kafka.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: serviceName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if !cfg.Log.Collector.Enabled || producer == nil {
		return l, func() {}, nil
	}
	l.AddCollector(&applogger.CollectionConfig{
		Service:   serviceName,
		Interval:  cfg.Log.Collector.Interval,
		Threshold: cfg.Log.Collector.Threshold,
		Topic:     cfg.Log.Collector.Topic,
		Publisher: producer,
	})
	return l, l.RemoveCollector, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePostgresClient opens the catalog database.
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	if !cfg.Postgres.Enabled {
		return nil, func() {}, nil
	}
	client, err := postgres.NewClient(
		postgres.WithDSN(cfg.Postgres.DSN),
		postgres.WithMaxConnections(cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns),
		postgres.WithConnLifetime(cfg.Postgres.ConnMaxLifetime, 0),
		postgres.WithPingTimeout(cfg.Postgres.PingTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5, 5*time.Minute),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideRedisCache connects the shared L2 cache.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
		cache.WithRedisTimeouts(cfg.Redis.DialTimeout, cfg.Redis.OpTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	// Closed by the layered cache built on top of it.
	return rc, func() {}, nil
}

// ProvideCache layers memory over Redis when Redis is enabled, memory only otherwise.
func ProvideCache(cfg *config.Config, rc *cache.RedisCache, l *applogger.Logger) (cache.Service, func()) {
	if rc != nil {
		lc := cache.NewLayeredCache(rc,
			cache.WithLayeredMemory(cfg.Cache.MemoryMaxSize, cfg.Cache.MemoryTTL),
		)
		return lc, func() {
			st := lc.Stats()
			l.Info("cache stats",
				applogger.Uint64("memory_hits", st.MemoryHits),
				applogger.Uint64("redis_hits", st.RedisHits),
				applogger.Uint64("misses", st.Misses))
			_ = lc.Close()
		}
	}
	mc := cache.NewMemoryCache(
		cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
		cache.WithMemoryCleanup(cfg.Cache.SweepInterval),
	)
	return mc, func() { _ = mc.Close() }
}

// ProvideCatalogStore wraps Postgres as the catalog, creating tables when auto_migrate is set.
func ProvideCatalogStore(cfg *config.Config, pg *postgres.Client) (repository.CatalogStore, error) {
	if pg == nil {
		return nil, nil
	}
	store := internalrepo.NewPGCatalog(pg.DB(), cfg.Postgres.QueryTimeout)
	if cfg.Postgres.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Init(ctx); err != nil {
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
	}
	return store, nil
}

// ProvideSeriesStore wraps ClickHouse as the series store and ensures its tables.
func ProvideSeriesStore(ch *pkgch.Client, l *applogger.Logger) (repository.SeriesStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewCHSeriesStore(ch.DB(), ch.Database())
	store.SetLogger(l.With(applogger.String("component", "series-store")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideEventPublisher publishes assessments through the circuit breaker.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer, l *applogger.Logger) repository.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topics.Assessments, internalrepo.BreakerSettings{
		ConsecutiveFailures: cfg.Kafka.Breaker.ConsecutiveFailures,
		OpenTimeout:         cfg.Kafka.Breaker.OpenTimeout,
	}, l.With(applogger.String("component", "event-publisher")))
}

// ProvideHub creates the dashboard websocket hub.
func ProvideHub(cfg *config.Config, l *applogger.Logger) (*broadcast.Hub, func()) {
	hub := broadcast.NewHub(broadcast.Config{
		SendBuffer:   cfg.WebSocket.SendBuffer,
		WriteTimeout: cfg.WebSocket.WriteTimeout,
		PingInterval: cfg.WebSocket.PingInterval,
	}, l.With(applogger.String("component", "ws-hub")))
	return hub, hub.Close
}

func ProvideBroadcaster(hub *broadcast.Hub) repository.Broadcaster { return hub }

func ProvideScoringUseCase(
	cfg *config.Config,
	catalog repository.CatalogStore,
	series repository.SeriesStore,
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ScoringUseCase {
	return usecase.NewScoringUseCase(usecase.DefaultScorers(),
		usecase.WithCatalog(catalog),
		usecase.WithSeriesStore(series),
		usecase.WithCache(c, cfg.Cache.TTL),
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
		usecase.WithHistory(cfg.Scoring.HistoryPoints, cfg.Scoring.PostsWindow),
	)
}

func ProvideUpgradeReportUseCase(
	cfg *config.Config,
	catalog repository.CatalogStore,
	scoring *usecase.ScoringUseCase,
	publisher repository.EventPublisher,
	broadcaster repository.Broadcaster,
	l *applogger.Logger,
) *usecase.UpgradeReportUseCase {
	uc := usecase.NewUpgradeReportUseCase(catalog, scoring, publisher, broadcaster, l)
	uc.SetTimeout(cfg.Scoring.ReportTimeout)
	return uc
}

func ProvideCatalogUseCase(catalog repository.CatalogStore) *usecase.CatalogUseCase {
	return usecase.NewCatalogUseCase(catalog)
}

func ProvideSeeder(catalog repository.CatalogStore, reports *usecase.UpgradeReportUseCase, c cache.Service, l *applogger.Logger) (*usecase.Seeder, error) {
	if catalog == nil {
		return nil, fmt.Errorf("seeding requires postgres to be enabled")
	}
	return usecase.NewSeeder(catalog, reports, c, l), nil
}

// ProvideObservationHandler ingests the observations topic into the series store.
func ProvideObservationHandler(cfg *config.Config, series repository.SeriesStore, m repository.Metrics) pkgkafka.MessageHandler {
	if series == nil {
		return nil
	}
	return usecase.NewObservationHandler(cfg.Kafka.Topics.Observations, series, m)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger, m repository.Metrics) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerStartOffset(cfg.Kafka.Consumer.StartOffset),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l.With(applogger.String("component", "ingest"))),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.TraceHook(),
		pkgkafka.ErrorCounterHook(func(topic string) { m.RecordError("consumer_" + topic) }),
	))
	return consumer, nil
}

func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
}

// ProvideHealthChecks pings every enabled store from /healthz.
func ProvideHealthChecks(pg *postgres.Client, ch *pkgch.Client, rc *cache.RedisCache) api.HealthChecks {
	checks := api.HealthChecks{}
	if pg != nil {
		checks["postgres"] = pg.Health
	}
	if ch != nil {
		checks["clickhouse"] = ch.Health
	}
	if rc != nil {
		checks["redis"] = rc.Ping
	}
	return checks
}

func ProvideCatalogHandler(
	l *applogger.Logger,
	catalog *usecase.CatalogUseCase,
	reports *usecase.UpgradeReportUseCase,
	hub *broadcast.Hub,
	checks api.HealthChecks,
) *api.CatalogHandler {
	return api.NewCatalogHandler(l, catalog, reports, hub.ServeWS, checks)
}

// ProvideHTTPServer builds the echo server; health, metrics and the stream skip the rate limiter.
func ProvideHTTPServer(cfg *config.Config, router *api.Router, limiter *ratelimit.Limiter, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithAddr(cfg.Server.Host, cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithBodyLimit(cfg.BodyLimitBytes()),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path, time.Second))
	} else {
		opts = append(opts, xhttp.WithMetricsPath("", 0))
	}
	if limiter != nil {
		metricsPath := cfg.Metrics.Path
		opts = append(opts, xhttp.WithMiddleware(limiter.Middleware(func(c echo.Context) bool {
			p := c.Path()
			return p == "/healthz" || p == "/ws/assessments" || p == metricsPath
		})))
	}
	return xhttp.NewServer(router, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	limiter *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, l, srv, consumer, kh, limiter)
}
