package command

import (
	"context"
	"fmt"
	"log/slog"

	"dtalks/database"
	"dtalks/internal/config"
	"dtalks/internal/metrics"
	"dtalks/internal/microservices/http-api/handler"
	"dtalks/internal/microservices/http-api/middleware"
	"dtalks/internal/microservices/http-api/repository"
	"dtalks/internal/microservices/http-api/repository/memory"
	"dtalks/internal/microservices/http-api/service"
	"dtalks/internal/notify"

	"github.com/gin-gonic/gin"
)

const (
	storePostgres = "postgres"
	storeMemory   = "memory"
)

// app is everything serve starts and stops.
type app struct {
	router     *gin.Engine
	dispatcher *notify.Dispatcher
	closers    []func() error
}

func (a *app) close(logger *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("shutdown_close_failed", "error", err)
		}
	}
}

func openStore(ctx context.Context, cfg *config.Config, kind string, migrate bool, logger *slog.Logger) (repository.Store, func() error, error) {
	switch kind {
	case storeMemory:
		logger.Warn("store_in_memory", "detail", "data is lost on exit")
		return memory.New(), func() error { return nil }, nil
	case storePostgres:
		db, err := database.OpenGorm(ctx, cfg.DatabaseURL, database.DefaultOptions(), logger)
		if err != nil {
			return nil, nil, err
		}
		if migrate {
			if err := database.Migrate(ctx, db, logger); err != nil {
				database.Close(db)
				return nil, nil, err
			}
		}
		return repository.NewStore(db), func() error { return database.Close(db) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q, want %s or %s", kind, storePostgres, storeMemory)
	}
}

// openBroker uses Redis when REDIS_URL is set and an in-process broker otherwise.
func openBroker(cfg *config.Config, logger *slog.Logger) (notify.Broker, func() error, error) {
	if cfg.RedisURL == "" {
		logger.Info("notify_broker", "kind", "local")
		return notify.NewLocalBroker(), func() error { return nil }, nil
	}
	client, err := notify.NewRedisClient(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		return nil, nil, err
	}
	broker := notify.NewRedisBroker(client, logger)
	logger.Info("notify_broker", "kind", "redis")
	return broker, broker.Close, nil
}

func newApp(ctx context.Context, cfg *config.Config, storeKind string, migrate bool, logger *slog.Logger) (*app, error) {
	a := &app{}

	store, closeStore, err := openStore(ctx, cfg, storeKind, migrate, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	broker, closeBroker, err := openBroker(cfg, logger)
	if err != nil {
		a.close(logger)
		return nil, err
	}
	a.closers = append(a.closers, closeBroker)

	a.dispatcher = notify.NewDispatcher(broker, cfg.NotifyQueueSize, logger)
	m := metrics.New()
	m.WatchDispatcher(a.dispatcher)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	a.router = handler.NewRouter(handler.Services{
		Auth:          service.NewAuthService(store, cfg, logger),
		Posts:         service.NewPostService(store, logger),
		Recommends:    service.NewRecommendService(store, a.dispatcher, logger),
		Comments:      service.NewCommentService(store, a.dispatcher, logger),
		Notifications: service.NewNotificationService(store, broker),
		Admin:         service.NewAdminUserService(store, logger),
		Health:        store.Ping,
	}, handler.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Middleware:  []gin.HandlerFunc{middleware.RequestLogger(logger)},
		Logger:      logger,
		Metrics:     m,
	})
	return a, nil
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	return cfg, logger, nil
}
