package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoSessionRepository struct {
	collection *mongo.Collection
}

func NewMongoSessionRepository(db *mongo.Database) *MongoSessionRepository {
	coll := db.Collection("workout_sessions")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// At most one open session per (user, routine)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "routine_id", Value: 1}},
			Options: options.Index().
				SetName("one_open_session").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"end_time": bson.M{"$type": "null"}}),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start_time", Value: -1}},
		},
	})
	if err != nil {
		log.WithError(err).Warn("failed to create workout_sessions indexes")
	}

	return &MongoSessionRepository{
		collection: coll,
	}
}

func (r *MongoSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	session.EndTime = nil

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSessionAlreadyOpen
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

func (r *MongoSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var session domain.Session
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *MongoSessionRepository) FindOpen(ctx context.Context, userID, routineID string) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{
		"user_id":    userID,
		"routine_id": routineID,
		"end_time":   nil,
	}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}
	return &session, nil
}

// Close ends the session in a single conditional update, so a session is
// never observed with an end time but without its duration.
func (r *MongoSessionRepository) Close(ctx context.Context, id string, endTime time.Time, durationMinutes int, notes *string) (*domain.Session, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	set := bson.M{
		"end_time":               endTime,
		"total_duration_minutes": durationMinutes,
		"updated_at":             time.Now(),
	}
	if notes != nil {
		set["notes"] = *notes
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var session domain.Session
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "end_time": nil},
		bson.M{"$set": set},
		opts,
	).Decode(&session)
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to close session: %w", err)
	}

	// Either missing or already closed
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrSessionClosed
}

func (r *MongoSessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := []*domain.Session{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
