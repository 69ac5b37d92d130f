package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/config"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/repository"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/service"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Recomputes personal records and daily volumes for one user from the
// logged sets. Use after a data repair or a change to the record rules.
func main() {
	userID := flag.String("user", "", "user id to rebuild (required)")
	records := flag.Bool("records", true, "rebuild personal records")
	volumes := flag.Bool("volumes", true, "rebuild daily volumes")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline")
	flag.Parse()

	if *userID == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB.Database)
	history := service.NewHistoryService(
		repository.NewMongoSessionRepository(db),
		repository.NewMongoCompletedSetRepository(db),
		repository.NewMongoRoutineRepository(db),
		repository.NewMongoPersonalRecordRepository(db),
		repository.NewMongoDailyVolumeRepository(db),
	)

	// cached records would hide the rebuild until they expire
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis unavailable, cached records are left to expire")
		} else {
			history = history.WithCache(repository.NewRedisCacheRepository(redisClient), cfg.Workout.RecordsCacheTTL)
		}
	}

	logger := log.WithField("user_id", *userID)
	if *records {
		n, err := history.RebuildPersonalRecords(ctx, *userID)
		if err != nil {
			logger.WithError(err).Fatal("personal record rebuild failed")
		}
		logger.WithField("records", n).Info("personal records done")
	}
	if *volumes {
		n, err := history.RebuildVolumes(ctx, *userID)
		if err != nil {
			logger.WithError(err).Fatal("daily volume rebuild failed")
		}
		logger.WithField("volumes", n).Info("daily volumes done")
	}
}
