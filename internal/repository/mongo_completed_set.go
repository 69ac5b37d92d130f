package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoCompletedSetRepository struct {
	collection *mongo.Collection
}

func NewMongoCompletedSetRepository(db *mongo.Database) *MongoCompletedSetRepository {
	coll := db.Collection("completed_sets")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "session_id", Value: 1},
				{Key: "exercise_id", Value: 1},
				{Key: "set_number", Value: 1},
			},
			Options: options.Index().SetName("one_set_per_slot").SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "exercise_id", Value: 1}, {Key: "logged_at", Value: 1}},
		},
	})
	if err != nil {
		log.WithError(err).Warn("failed to create completed_sets indexes")
	}

	return &MongoCompletedSetRepository{
		collection: coll,
	}
}

func (r *MongoCompletedSetRepository) Append(ctx context.Context, set *domain.CompletedSet) error {
	if set.LoggedAt.IsZero() {
		set.LoggedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, set)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateSet
		}
		return fmt.Errorf("failed to append set: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		set.ID = oid.Hex()
	}
	return nil
}

func (r *MongoCompletedSetRepository) Find(ctx context.Context, sessionID, exerciseID string, setNumber int) (*domain.CompletedSet, error) {
	var set domain.CompletedSet
	err := r.collection.FindOne(ctx, bson.M{
		"session_id":  sessionID,
		"exercise_id": exerciseID,
		"set_number":  setNumber,
	}).Decode(&set)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find set: %w", err)
	}
	return &set, nil
}

func (r *MongoCompletedSetRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.CompletedSet, error) {
	return r.find(ctx, bson.M{"session_id": sessionID})
}

func (r *MongoCompletedSetRepository) ListByUserAndExercise(ctx context.Context, userID, exerciseID string) ([]*domain.CompletedSet, error) {
	return r.find(ctx, bson.M{"user_id": userID, "exercise_id": exerciseID})
}

// find returns matches in logging order. _id breaks ties between sets
// logged within the same millisecond.
func (r *MongoCompletedSetRepository) find(ctx context.Context, filter bson.M) ([]*domain.CompletedSet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "logged_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}
	defer cursor.Close(ctx)

	sets := []*domain.CompletedSet{}
	if err := cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}
