package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"task-tracker/internal/config"
	"task-tracker/internal/controller"
	"task-tracker/internal/kvstore"
	"task-tracker/internal/middleware"
	"task-tracker/internal/queue"
	"task-tracker/internal/repository"
	"task-tracker/internal/routes"
	"task-tracker/internal/service"
	"task-tracker/internal/worker"
	"task-tracker/pkg/logger"
)

func main() {
	config.LoadEnvFile(".env")
	cfg := config.Get()
	logger.Init(os.Stdout, cfg.LogLevel)

	ctx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "Task store not available; exiting", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	// Kafka is optional: without brokers no events are published or consumed.
	var (
		events    service.EventPublisher
		publisher *queue.Publisher
	)
	if cfg.EventsEnabled() {
		queue.EnsureTopic(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaPartitions)
		publisher = queue.NewPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		events = publisher
	}

	// Redis is optional: it backs the rate limiter and the event counters.
	var (
		redisClient *redis.Client
		limiter     middleware.RateLimiter
		stats       controller.StatsReader
		checks      []controller.Check
	)
	if cfg.RedisURL != "" {
		redisClient, err = kvstore.NewClient(ctx, cfg.RedisURL, cfg.RedisPoolSize)
		if err != nil {
			logger.Warn(ctx, "Redis unavailable; rate limiting and stats disabled", "error", err)
		}
	}
	if redisClient != nil {
		limiter = kvstore.NewSlidingWindowLimiter(redisClient, cfg.RateLimit, cfg.RateLimitWindow, "ratelimit:")
		counters := kvstore.NewStats(redisClient, "")
		stats = counters
		checks = append(checks, controller.Check{
			Name: "redis",
			Fn:   func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
		go worker.Run(ctx, worker.Config{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroupID,
		}, counters)
	}

	svc := service.NewTaskService(store, events)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: routes.Router(controller.New(svc, stats, checks...), routes.Options{
			Limiter:    limiter,
			JWTSecret:  cfg.JWTSecret,
			CORSOrigin: cfg.CORSOrigin,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Server error", "error", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// One operation so the steps run in order: stop intake, then drain dependencies.
			"task-tracker": func(shutdownCtx context.Context) error {
				logger.Info(ctx, "Shutting down server")
				errs := []error{server.Shutdown(shutdownCtx)}
				stopWorkers()
				if publisher != nil {
					errs = append(errs, publisher.Close())
				}
				if redisClient != nil {
					errs = append(errs, redisClient.Close())
				}
				errs = append(errs, closeStore())
				return errors.Join(errs...)
			},
		},
	)
	exitCode := <-wait
	logger.Info(ctx, "Server stopped", "exit_code", exitCode)
	os.Exit(exitCode)
}
