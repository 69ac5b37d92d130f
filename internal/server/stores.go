package server

import (
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRepositories builds every repository on db. Indexes are created here.
func MongoRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Exercises: repository.NewMongoExerciseRepository(db),
		Routines:  repository.NewMongoRoutineRepository(db),
		Sessions:  repository.NewMongoSessionRepository(db),
		Sets:      repository.NewMongoCompletedSetRepository(db),
		Records:   repository.NewMongoPersonalRecordRepository(db),
		Volumes:   repository.NewMongoDailyVolumeRepository(db),
	}
}

// MemoryRepositories builds every repository on one in-process store.
func MemoryRepositories(store *repository.MemoryStore) Repositories {
	return Repositories{
		Exercises: store.Exercises(),
		Routines:  store.Routines(),
		Sessions:  store.Sessions(),
		Sets:      store.Sets(),
		Records:   store.Records(),
		Volumes:   store.Volumes(),
	}
}

// WithRoutineCache serves routine reads from Redis.
func (r Repositories) WithRoutineCache(cache *repository.RedisCacheRepository, ttl time.Duration) Repositories {
	r.Routines = repository.NewCachedRoutineRepository(r.Routines, cache, ttl)
	return r
}
