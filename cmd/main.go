package main

import (
	"context"
	"encoding/base64"
	"os/signal"
	"syscall"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/config"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/execution"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/logging"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/repository"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/server"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/service"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/telemetry"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.Setup(logging.SetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.Stdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})

	log.WithField("store", cfg.Store.Driver).Info("starting workout service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Grafana Cloud requires Basic auth with instanceId:apiToken base64 encoded
	headers := map[string]string{}
	if cfg.OTEL.Token != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(cfg.OTEL.InstanceID + ":" + cfg.OTEL.Token))
		headers["Authorization"] = "Basic " + auth
	}

	otelProvider, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.OTEL.ServiceName,
		ServiceVersion: cfg.OTEL.ServiceVersion,
		Environment:    cfg.OTEL.Environment,
		InstanceID:     cfg.OTEL.InstanceID,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
		OTLPHeaders:    headers,
		Insecure:       cfg.OTEL.Insecure,
		Enabled:        cfg.OTEL.Enabled,
	})
	if err != nil {
		log.WithError(err).Warn("failed to initialize OpenTelemetry")
	}
	if otelProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelProvider.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("telemetry shutdown")
			}
		}()
	}

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		log.WithError(err).Fatal("failed to create metrics")
	}

	var repos server.Repositories
	switch cfg.Store.Driver {
	case config.StoreMongo:
		mongoClient := connectMongo(cfg)
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				log.WithError(err).Error("error disconnecting from MongoDB")
			}
		}()
		repos = server.MongoRepositories(mongoClient.Database(cfg.MongoDB.Database))
	default:
		log.Warn("using the in-memory store; data is lost on restart")
		repos = server.MemoryRepositories(repository.NewMemoryStore())
	}

	var (
		redisClient *redis.Client
		cache       domain.CacheRepository
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("failed to connect to Redis")
		}
		log.WithField("addr", cfg.Redis.Addr).Info("redis connected")

		redisCache := repository.NewRedisCacheRepository(redisClient)
		cache = redisCache
		repos = repos.WithRoutineCache(redisCache, cfg.Workout.RoutineCacheTTL)
	}

	registry := execution.NewRegistry(nil)

	records := service.NewRecordUpdater(repos.Records, cfg.Workout.RecordWorkers, cfg.Workout.RecordQueueSize).
		WithMetrics(metrics)
	if cache != nil {
		records = records.WithCache(cache)
	}
	records.Start(context.WithoutCancel(ctx))

	app := server.NewApp(server.AppDependencies{
		Config:       cfg,
		Repositories: repos,
		Registry:     registry,
		Records:      records,
		Tokens:       service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiry),
		Metrics:      metrics,
		RedisClient:  redisClient,
		Cache:        cache,
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down gracefully")
		if err := app.ShutdownWithTimeout(cfg.Workout.ShutdownTimeout); err != nil {
			log.WithError(err).Error("http shutdown")
		}
	}()

	log.WithField("port", cfg.Server.Port).Info("server starting")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.WithError(err).Error("server stopped")
	}

	// stop views first so no new record jobs arrive, then drain the queue
	registry.Close()
	records.Stop()
	log.Info("shutdown complete")
}

func connectMongo(cfg *config.Config) *mongo.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.MongoDB.URI)
	if cfg.OTEL.Enabled {
		opts.SetMonitor(otelmongo.NewMonitor())
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.WithError(err).Fatal("failed to ping MongoDB")
	}
	log.WithField("database", cfg.MongoDB.Database).Info("mongodb connected")
	return client
}
