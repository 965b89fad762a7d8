package di

import (
	"context"
	"fmt"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/domain/repository"
	"TradePulse/internal/handler/api"
	internalrepo "TradePulse/internal/repository"
	"TradePulse/internal/service/events"
	"TradePulse/internal/usecase"
	pkgch "TradePulse/pkg/clickhouse"
	"TradePulse/pkg/config"
	xhttp "TradePulse/pkg/http"
	pkgkafka "TradePulse/pkg/kafka"
	"TradePulse/pkg/logger"
	"TradePulse/pkg/metrics"
	pkgredis "TradePulse/pkg/redis"
	"TradePulse/pkg/server"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideBus creates the in-process event bus.
func ProvideBus() *events.Bus {
	return events.NewBus()
}

// ProvideChannelWriter creates the per-category file sink.
func ProvideChannelWriter(cfg *config.Config) *internalrepo.FileChannelWriter {
	tc := cfg.Telemetry
	return internalrepo.NewFileChannelWriter(tc.LogDir, map[models.Category]string{
		models.CategoryPnl:      tc.Dirs.Pnl,
		models.CategoryTrade:    tc.Dirs.Trade,
		models.CategoryPosition: tc.Dirs.Position,
		models.CategoryBalance:  tc.Dirs.Balance,
		models.CategoryRisk:     tc.Dirs.Risk,
		models.CategorySystem:   tc.Dirs.System,
		models.CategoryMetric:   tc.Dirs.Metric,
	})
}

// ProvideClickHouseClient creates the archive client and prepares the
// schema. Returns nil when archiving is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.Archive.Host, cfg.Archive.Port),
		pkgch.WithDatabase(cfg.Archive.Database),
		pkgch.WithCredentials(cfg.Archive.User, cfg.Archive.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithDialTimeout(cfg.Archive.DialTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	table := cfg.Archive.Database + "." + cfg.Archive.Table
	if err := client.InitSchema(ctx, internalrepo.ArchiveSchema(cfg.Archive.Database, table)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideArchiver creates the batching archive sink. Nil when disabled.
func ProvideArchiver(
	chClient *pkgch.Client,
	cfg *config.Config,
	log *logger.Logger,
	m repository.Metrics,
) repository.Archiver {
	if chClient == nil {
		return nil
	}
	table := cfg.Archive.Database + "." + cfg.Archive.Table
	return internalrepo.NewClickHouseArchiver(
		chClient.DB(),
		table,
		cfg.Archive.BatchSize,
		cfg.Archive.BatchTimeout,
		log,
		m,
	)
}

// ProvideKafkaProducer creates the Kafka producer for event forwarding.
// Returns nil when the Kafka forwarder is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Events.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Events.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Events.Kafka.RequiredAcks),
		pkgkafka.WithCompression(cfg.Events.Kafka.Compression),
		pkgkafka.WithAsync(cfg.Events.Kafka.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideRedisClient creates the Redis client for event forwarding.
// Returns nil when the Redis forwarder is disabled.
func ProvideRedisClient(cfg *config.Config) (*pkgredis.Client, error) {
	if !cfg.Events.Redis.Enabled {
		return nil, nil
	}
	client, err := pkgredis.NewClient(pkgredis.Config{
		Addr:     cfg.Events.Redis.Addr,
		Password: cfg.Events.Redis.Password,
		DB:       cfg.Events.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("redis client: %w", err)
	}
	return client, nil
}

// ProvideForwarder bundles the enabled external publishers behind one
// forwarder. Nil when no publisher is configured.
func ProvideForwarder(
	producer *pkgkafka.Producer,
	redisClient *pkgredis.Client,
	cfg *config.Config,
	log *logger.Logger,
	m repository.Metrics,
) *internalrepo.EventForwarder {
	var pubs []repository.EventPublisher
	if producer != nil {
		pubs = append(pubs, internalrepo.NewKafkaEventPublisher(producer, cfg.Events.Kafka.Topic))
	}
	if redisClient != nil {
		pubs = append(pubs, internalrepo.NewRedisEventPublisher(redisClient, cfg.Events.Redis.Channel))
	}
	if len(pubs) == 0 {
		return nil
	}
	return internalrepo.NewEventForwarder(pubs, log, m)
}

// ProvideTelemetry creates the sampling/recording core.
func ProvideTelemetry(
	cfg *config.Config,
	writer *internalrepo.FileChannelWriter,
	bus *events.Bus,
	m repository.Metrics,
	log *logger.Logger,
	archiver repository.Archiver,
) *usecase.Telemetry {
	opts := []usecase.Option{}
	if archiver != nil {
		opts = append(opts, usecase.WithArchiver(archiver))
	}
	return usecase.NewTelemetry(cfg.Telemetry, writer, bus, m, log, opts...)
}

// ProvideHandler creates the Echo HTTP handler.
func ProvideHandler(log *logger.Logger, tel *usecase.Telemetry, bus *events.Bus) xhttp.Handler {
	return api.NewTelemetryEchoHandler(log, tel, bus)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	tel *usecase.Telemetry,
	bus *events.Bus,
	forwarder *internalrepo.EventForwarder,
	archiver repository.Archiver,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, tel, bus, forwarder, archiver, chClient, handler)
}
