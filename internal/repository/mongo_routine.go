package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRoutineRepository struct {
	collection *mongo.Collection
}

func NewMongoRoutineRepository(db *mongo.Database) *MongoRoutineRepository {
	return &MongoRoutineRepository{
		collection: db.Collection("routines"),
	}
}

func (r *MongoRoutineRepository) Create(ctx context.Context, routine *domain.Routine) error {
	routine.CreatedAt = time.Now()
	routine.UpdatedAt = routine.CreatedAt

	result, err := r.collection.InsertOne(ctx, routine)
	if err != nil {
		return fmt.Errorf("failed to create routine: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		routine.ID = oid.Hex()
	}
	return nil
}

func (r *MongoRoutineRepository) GetByID(ctx context.Context, id string) (*domain.Routine, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var routine domain.Routine
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&routine)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrRoutineNotFound
		}
		return nil, fmt.Errorf("failed to get routine: %w", err)
	}
	return &routine, nil
}

func (r *MongoRoutineRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Routine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list routines: %w", err)
	}
	defer cursor.Close(ctx)

	routines := []*domain.Routine{}
	if err := cursor.All(ctx, &routines); err != nil {
		return nil, err
	}
	return routines, nil
}

func (r *MongoRoutineRepository) Update(ctx context.Context, routine *domain.Routine) error {
	oid, err := primitive.ObjectIDFromHex(routine.ID)
	if err != nil {
		return domain.ErrInvalidID
	}
	routine.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"name":        routine.Name,
			"description": routine.Description,
			"exercises":   routine.Exercises,
			"updated_at":  routine.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update routine: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrRoutineNotFound
	}
	return nil
}

func (r *MongoRoutineRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete routine: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrRoutineNotFound
	}
	return nil
}
