package cmd

import (
	"context"
	"time"

	"example.com/backstage/services/picking/config"
	"example.com/backstage/services/picking/internal/api"
	"example.com/backstage/services/picking/internal/cache"
	"example.com/backstage/services/picking/internal/database"
	"example.com/backstage/services/picking/internal/messaging"
	"example.com/backstage/services/picking/internal/metrics"
	"example.com/backstage/services/picking/internal/search"
	"example.com/backstage/services/picking/internal/services"
	"example.com/backstage/services/picking/internal/tracing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// runtime holds the connections and services shared by the commands
type runtime struct {
	cfg      config.Config
	db       *gorm.DB
	cache    *cache.RedisCache
	elastic  *search.ElasticClient
	azure    *messaging.AzureClient
	sender   messaging.Sender
	tracer   tracing.Tracer
	metrics  *metrics.Metrics
	services api.Services
}

func newRuntime(cfg config.Config) (*runtime, error) {
	rt := &runtime{cfg: cfg, metrics: metrics.Default()}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}
	rt.db = db
	rt.metrics.SetHealth("database", true)

	rt.cache, err = cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
		rt.cache = cache.Disabled()
	}
	if rt.cache.Enabled() {
		rt.metrics.SetHealth("redis", true)
	}

	rt.tracer, err = tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		rt.tracer = tracing.Noop()
	}

	var indexer services.Indexer
	if cfg.Elastic.Enabled {
		rt.elastic, err = search.NewElasticClient(cfg.Elastic)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without activity projection")
		} else {
			indexer = rt.elastic
		}
	}

	publisher := services.NoopPublisher()
	rt.azure, err = messaging.NewAzureClient(cfg.Azure)
	switch {
	case errors.Is(err, messaging.ErrNotConfigured):
		log.Warn().Msg("Azure Service Bus not configured, completion notifications are disabled")
	case err != nil:
		return nil, err
	default:
		rt.sender, err = rt.azure.NewSender(cfg.Azure.NotificationsQueue)
		if err != nil {
			return nil, err
		}
		publisher = messaging.NewPublisher(rt.sender, "picking")
	}

	clock := services.SystemClock()
	users, err := services.NewUserService(db, rt.cache, rt.metrics, clock, cfg.Streak.Timezone)
	if err != nil {
		return nil, err
	}
	seals := services.NewSealRegistry(db)
	rules := services.NewRulesService(db, rt.cache)

	rt.services = api.Services{
		Lots:         services.NewLotService(db, seals, rules, users, publisher, rt.metrics, rt.tracer, clock),
		SingleOrders: services.NewSingleOrderService(db, seals, rules, users, publisher, rt.metrics, rt.tracer, clock),
		Users:        users,
		Rules:        rules,
		Tasks:        services.NewTaskService(db, users, rt.metrics, clock),
		Projections:  services.NewProjectionService(db, indexer, rt.metrics, cfg.Worker.BatchSize),
		Seals:        seals,
	}
	if rt.elastic != nil {
		rt.services.Activity = rt.elastic
	}
	return rt, nil
}

// checkHealth refreshes the health flags of the external dependencies
func (rt *runtime) checkHealth(ctx context.Context) {
	rt.metrics.SetHealth("database", database.Ping(rt.db) == nil)
	if rt.cache.Enabled() {
		rt.metrics.SetHealth("redis", rt.cache.Ping(ctx) == nil)
	}
	if rt.elastic != nil {
		rt.metrics.SetHealth("elasticsearch", rt.elastic.Ping(ctx) == nil)
	}
}

func (rt *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if rt.sender != nil {
		if err := rt.sender.Close(ctx); err != nil {
			log.Error().Err(err).Msg("Error closing Service Bus sender")
		}
	}
	if err := rt.azure.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Error closing Service Bus client")
	}
	if err := rt.cache.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Redis cache")
	}
	rt.tracer.Close()
	if err := database.Close(rt.db); err != nil {
		log.Error().Err(err).Msg("Error closing database")
	}
}
