package di

import (
	"fmt"
	"time"

	"MCMTracker/internal/domain/models"
	"MCMTracker/internal/domain/repository"
	domsvc "MCMTracker/internal/domain/service"
	"MCMTracker/internal/handler/api"
	internalrepo "MCMTracker/internal/repository"
	"MCMTracker/internal/service/openai"
	"MCMTracker/internal/service/ratelimit"
	"MCMTracker/internal/service/session"
	"MCMTracker/internal/service/twelvedata"
	"MCMTracker/internal/usecase"
	pkgcache "MCMTracker/pkg/cache"
	"MCMTracker/pkg/config"
	xhttp "MCMTracker/pkg/http"
	pkgkafka "MCMTracker/pkg/kafka"
	applogger "MCMTracker/pkg/logger"
	"MCMTracker/pkg/metrics"
	"MCMTracker/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideStore creates the key-value store shared by the snapshot cache,
// baselines and coach output.
func ProvideStore(cfg *config.Config) (pkgcache.Service, error) {
	if cfg.Store.Type == "memory" {
		return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(cfg.Store.MemoryMaxSize)), nil
	}

	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisAddr(cfg.Store.Redis.Host, cfg.Store.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Store.Redis.Password),
		pkgcache.WithRedisDB(cfg.Store.Redis.DB),
		pkgcache.WithRedisPool(cfg.Store.Redis.PoolSize, 2, 30*time.Second),
		pkgcache.WithRedisPrefix(cfg.Store.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if cfg.Store.Type == "layered" {
		return pkgcache.NewLayeredCache(rc, pkgcache.WithLayeredMemorySize(cfg.Store.MemoryMaxSize)), nil
	}
	return rc, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideBasket builds the tracked basket from config.
func ProvideBasket(cfg *config.Config) *models.Basket {
	members := make([]models.BasketMember, 0, len(cfg.Basket))
	for _, b := range cfg.Basket {
		members = append(members, models.BasketMember{
			Symbol:    b.Symbol,
			Name:      b.Name,
			Category:  b.Category,
			Cohort:    b.Cohort,
			Threshold: b.Threshold,
		})
	}
	return models.NewBasket(members)
}

// ProvideSessionResolver creates the market session resolver.
func ProvideSessionResolver(cfg *config.Config) (*session.Resolver, error) {
	return session.NewResolver(cfg.Snapshot.Timezone, cfg.Snapshot.RTHCadence, cfg.Snapshot.ETHCadence)
}

// ProvideQuoteProvider creates the TwelveData client.
func ProvideQuoteProvider(cfg *config.Config, resolver *session.Resolver, m repository.Metrics) repository.QuoteProvider {
	return twelvedata.New(twelvedata.Config{
		APIKey:     cfg.TwelveData.APIKey,
		BaseURL:    cfg.TwelveData.BaseURL,
		Timeout:    cfg.TwelveData.Timeout,
		Interval:   cfg.TwelveData.Interval,
		OutputSize: cfg.TwelveData.OutputSize,
		Location:   resolver.Location(),
	}, m)
}

// ProvideBaselineStore creates the baseline repository.
func ProvideBaselineStore(store pkgcache.Service, l *applogger.Logger) repository.BaselineStore {
	return internalrepo.NewBaselineStore(store, l)
}

// ProvideSnapshotCache creates the snapshot bucket cache.
func ProvideSnapshotCache(store pkgcache.Service) repository.SnapshotCache {
	return internalrepo.NewSnapshotCache(store)
}

// ProvideCoachStore creates the coach output repository.
func ProvideCoachStore(store pkgcache.Service, cfg *config.Config) repository.CoachStore {
	return internalrepo.NewCoachStore(store, cfg.Coach.TTL)
}

// ProvideSnapshotPublisher publishes snapshot events to Kafka when brokers
// are configured.
func ProvideSnapshotPublisher(cfg *config.Config) (repository.SnapshotPublisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return internalrepo.NoopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideSnapshotAssembler creates the snapshot use case.
func ProvideSnapshotAssembler(
	cfg *config.Config,
	resolver *session.Resolver,
	provider repository.QuoteProvider,
	baselines repository.BaselineStore,
	cache repository.SnapshotCache,
	publisher repository.SnapshotPublisher,
	m repository.Metrics,
	basket *models.Basket,
	l *applogger.Logger,
) *usecase.SnapshotAssembler {
	return usecase.NewSnapshotAssembler(
		usecase.AssemblerConfig{
			RTHCadence:    cfg.Snapshot.RTHCadence,
			ETHCadence:    cfg.Snapshot.ETHCadence,
			Grace:         cfg.Snapshot.Grace,
			SymbolTimeout: cfg.Snapshot.SymbolTimeout,
			Note:          cfg.Snapshot.Note,
		},
		resolver, provider, baselines, cache, publisher, m, basket, l,
	)
}

// ProvideSummarizer creates the OpenAI chat client.
func ProvideSummarizer(cfg *config.Config) domsvc.Summarizer {
	return openai.New(openai.Config{
		APIKey:      cfg.Coach.APIKey,
		BaseURL:     cfg.Coach.BaseURL,
		Model:       cfg.Coach.Model,
		Temperature: cfg.Coach.Temperature,
		Timeout:     cfg.Coach.Timeout,
	})
}

// ProvideCoach creates the coach use case.
func ProvideCoach(
	cfg *config.Config,
	snapshots *usecase.SnapshotAssembler,
	summarizer domsvc.Summarizer,
	store repository.CoachStore,
	l *applogger.Logger,
) *usecase.Coach {
	return usecase.NewCoach(usecase.CoachConfig{MaxLines: cfg.Coach.MaxLines}, snapshots, summarizer, store, l)
}

// ProvidePerformance creates the performance use case.
func ProvidePerformance(snapshots *usecase.SnapshotAssembler, basket *models.Basket) *usecase.Performance {
	return usecase.NewPerformance(snapshots, basket)
}

// ProvideRateLimiter creates the per-client token bucket.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(
	cfg *config.Config,
	l *applogger.Logger,
	snapshots *usecase.SnapshotAssembler,
	performance *usecase.Performance,
	coach *usecase.Coach,
	limiter *ratelimit.Limiter,
	basket *models.Basket,
) xhttp.Handler {
	return api.NewHandler(
		api.Config{MaxSymbols: cfg.Snapshot.MaxSymbols, StreamInterval: cfg.Stream.Interval},
		l, snapshots, performance, coach, limiter, basket,
	)
}

// ProvideKafkaConsumer creates the snapshot events consumer. It is nil
// unless brokers are set and the consumer is enabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if len(cfg.Kafka.Brokers) == 0 || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideSnapshotEventsHandler creates the handler for the snapshots topic.
func ProvideSnapshotEventsHandler(cfg *config.Config, coach *usecase.Coach, m repository.Metrics, l *applogger.Logger) pkgkafka.MessageHandler {
	return usecase.NewSnapshotEventsHandler(cfg.Kafka.Topic, coach, cfg.Coach.MinInterval, m, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	events pkgkafka.MessageHandler,
	publisher repository.SnapshotPublisher,
	store pkgcache.Service,
) *server.App {
	return server.New(cfg, l, handler, consumer, events, publisher, store)
}
