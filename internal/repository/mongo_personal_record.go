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

type MongoPersonalRecordRepository struct {
	collection *mongo.Collection
}

func NewMongoPersonalRecordRepository(db *mongo.Database) *MongoPersonalRecordRepository {
	coll := db.Collection("personal_records")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mod := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "exercise_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := coll.Indexes().CreateOne(ctx, mod); err != nil {
		log.WithError(err).Warn("failed to create personal_records index")
	}

	return &MongoPersonalRecordRepository{
		collection: coll,
	}
}

func (r *MongoPersonalRecordRepository) Get(ctx context.Context, userID, exerciseID string) (*domain.PersonalRecord, error) {
	var pr domain.PersonalRecord
	err := r.collection.FindOne(ctx, bson.M{
		"user_id":     userID,
		"exercise_id": exerciseID,
	}).Decode(&pr)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // No record exists yet
		}
		return nil, fmt.Errorf("failed to get personal record: %w", err)
	}
	return &pr, nil
}

// UpsertIfBetter writes pr only when its 1RM beats the stored one.
// The comparison lives in the update filter, so concurrent writers cannot
// replace a better record with a worse one. When the stored record wins,
// the upsert collides with the unique (user_id, exercise_id) index and is
// reported as "not written".
func (r *MongoPersonalRecordRepository) UpsertIfBetter(ctx context.Context, pr *domain.PersonalRecord) (bool, error) {
	now := time.Now()
	pr.OneRepMax = pr.Estimate()
	if pr.Date.IsZero() {
		pr.Date = now
	}

	filter := bson.M{
		"user_id":     pr.UserID,
		"exercise_id": pr.ExerciseID,
		"one_rep_max": bson.M{"$lt": pr.OneRepMax},
	}
	update := bson.M{
		"$set": bson.M{
			"weight":      pr.Weight,
			"reps":        pr.Reps,
			"one_rep_max": pr.OneRepMax,
			"date":        pr.Date,
			"session_id":  pr.SessionID,
			"updated_at":  now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil // Existing record is at least as good
		}
		return false, fmt.Errorf("failed to upsert personal record: %w", err)
	}
	return result.MatchedCount > 0 || result.UpsertedCount > 0, nil
}

func (r *MongoPersonalRecordRepository) ListByUser(ctx context.Context, userID string) ([]*domain.PersonalRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.M{"exercise_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list personal records: %w", err)
	}
	defer cursor.Close(ctx)

	prs := []*domain.PersonalRecord{}
	if err := cursor.All(ctx, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}

func (r *MongoPersonalRecordRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
