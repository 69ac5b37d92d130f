package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDailyVolumeRepository struct {
	collection *mongo.Collection
}

func NewMongoDailyVolumeRepository(db *mongo.Database) *MongoDailyVolumeRepository {
	coll := db.Collection("daily_volumes")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}},
		},
	})
	if err != nil {
		log.WithError(err).Warn("failed to create daily_volumes indexes")
	}

	return &MongoDailyVolumeRepository{
		collection: coll,
	}
}

// Upsert replaces the volume of volume.SessionID, keeping its original id.
func (r *MongoDailyVolumeRepository) Upsert(ctx context.Context, volume *domain.DailyVolume) error {
	volume.CreatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"user_id":        volume.UserID,
			"routine_id":     volume.RoutineID,
			"date":           volume.Date,
			"total_volume":   volume.TotalVolume,
			"total_sets":     volume.TotalSets,
			"total_reps":     volume.TotalReps,
			"exercise_count": volume.ExerciseCount,
		},
		"$setOnInsert": bson.M{
			"created_at": volume.CreatedAt,
		},
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"session_id": volume.SessionID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily volume: %w", err)
	}
	return nil
}

func (r *MongoDailyVolumeRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.DailyVolume, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *MongoDailyVolumeRepository) ListByUserAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyVolume, error) {
	filter := bson.M{
		"user_id": userID,
		"date": bson.M{
			"$gte": from,
			"$lte": to,
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	return r.find(ctx, filter, opts)
}

func (r *MongoDailyVolumeRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

func (r *MongoDailyVolumeRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.DailyVolume, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily volumes: %w", err)
	}
	defer cursor.Close(ctx)

	volumes := []*domain.DailyVolume{}
	if err = cursor.All(ctx, &volumes); err != nil {
		return nil, err
	}
	return volumes, nil
}
