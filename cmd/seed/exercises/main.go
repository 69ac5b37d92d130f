package main

import (
	"context"
	"errors"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/config"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/repository"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seeds the global exercise library. Global exercises have no owner and are
// visible to every user.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	repo := repository.NewMongoExerciseRepository(client.Database(cfg.MongoDB.Database))

	exercises := []domain.Exercise{
		// Legs
		{Name: "Barbell Squat", MuscleGroup: "Legs", Equipment: "Barbell"},
		{Name: "Leg Press", MuscleGroup: "Legs", Equipment: "Machine"},
		{Name: "Walking Lunge", MuscleGroup: "Legs", Equipment: "Bodyweight/Dumbbell"},
		{Name: "Leg Extension", MuscleGroup: "Legs", Equipment: "Machine"},
		{Name: "Lying Leg Curl", MuscleGroup: "Legs", Equipment: "Machine"},
		{Name: "Romanian Deadlift", MuscleGroup: "Legs (Hamstrings)", Equipment: "Barbell"},
		{Name: "Calf Raise", MuscleGroup: "Legs (Calves)", Equipment: "Machine"},
		{Name: "Goblet Squat", MuscleGroup: "Legs", Equipment: "Dumbbell"},
		{Name: "Bulgarian Split Squat", MuscleGroup: "Legs", Equipment: "Dumbbell"},
		{Name: "Glute Bridge", MuscleGroup: "Legs (Glutes)", Equipment: "Bodyweight"},

		// Chest
		{Name: "Barbell Bench Press", MuscleGroup: "Chest", Equipment: "Barbell"},
		{Name: "Incline Dumbbell Press", MuscleGroup: "Chest", Equipment: "Dumbbell"},
		{Name: "Push Up", MuscleGroup: "Chest", Equipment: "Bodyweight"},
		{Name: "Cable Fly", MuscleGroup: "Chest", Equipment: "Cable"},
		{Name: "Dips", MuscleGroup: "Chest/Triceps", Equipment: "Bodyweight"},
		{Name: "Machine Chest Press", MuscleGroup: "Chest", Equipment: "Machine"},
		{Name: "Pec Deck", MuscleGroup: "Chest", Equipment: "Machine"},
		{Name: "Decline Bench Press", MuscleGroup: "Chest", Equipment: "Barbell"},
		{Name: "Svend Press", MuscleGroup: "Chest", Equipment: "Plate"},
		{Name: "Landmine Press", MuscleGroup: "Chest", Equipment: "Barbell"},

		// Back
		{Name: "Pull Up", MuscleGroup: "Back", Equipment: "Bodyweight"},
		{Name: "Lat Pulldown", MuscleGroup: "Back", Equipment: "Cable"},
		{Name: "Barbell Row", MuscleGroup: "Back", Equipment: "Barbell"},
		{Name: "Seated Cable Row", MuscleGroup: "Back", Equipment: "Cable"},
		{Name: "Single Arm Dumbbell Row", MuscleGroup: "Back", Equipment: "Dumbbell"},
		{Name: "Deadlift", MuscleGroup: "Back/Legs", Equipment: "Barbell"},
		{Name: "Face Pull", MuscleGroup: "Back (Rear Delts)", Equipment: "Cable"},
		{Name: "T-Bar Row", MuscleGroup: "Back", Equipment: "Barbell"},
		{Name: "Hyperextension", MuscleGroup: "Back (Lower)", Equipment: "Machine"},
		{Name: "Straight Arm Pulldown", MuscleGroup: "Back", Equipment: "Cable"},

		// Shoulders
		{Name: "Overhead Press", MuscleGroup: "Shoulders", Equipment: "Barbell"},
		{Name: "Dumbbell Shoulder Press", MuscleGroup: "Shoulders", Equipment: "Dumbbell"},
		{Name: "Lateral Raise", MuscleGroup: "Shoulders", Equipment: "Dumbbell"},
		{Name: "Front Raise", MuscleGroup: "Shoulders", Equipment: "Dumbbell"},
		{Name: "Reverse Fly", MuscleGroup: "Shoulders (Rear)", Equipment: "Machine"},
		{Name: "Arnold Press", MuscleGroup: "Shoulders", Equipment: "Dumbbell"},
		{Name: "Upright Row", MuscleGroup: "Shoulders/Traps", Equipment: "Barbell"},

		// Arms
		{Name: "Barbell Curl", MuscleGroup: "Biceps", Equipment: "Barbell"},
		{Name: "Hammer Curl", MuscleGroup: "Biceps", Equipment: "Dumbbell"},
		{Name: "Preacher Curl", MuscleGroup: "Biceps", Equipment: "Machine/EZ Bar"},
		{Name: "Tricep Pushdown", MuscleGroup: "Triceps", Equipment: "Cable"},
		{Name: "Skullcrusher", MuscleGroup: "Triceps", Equipment: "EZ Bar"},
		{Name: "Overhead Tricep Extension", MuscleGroup: "Triceps", Equipment: "Dumbbell"},

		// Core
		{Name: "Plank", MuscleGroup: "Core", Equipment: "Bodyweight", IsTimed: true},
		{Name: "Crunch", MuscleGroup: "Core", Equipment: "Bodyweight"},
		{Name: "Leg Raise", MuscleGroup: "Core", Equipment: "Bodyweight"},
		{Name: "Russian Twist", MuscleGroup: "Core", Equipment: "Bodyweight/Weight"},
		{Name: "Ab Wheel Rollout", MuscleGroup: "Core", Equipment: "Ab Wheel"},
		{Name: "Mountain Climber", MuscleGroup: "Core", Equipment: "Bodyweight", IsTimed: true},
		{Name: "Bicycle Crunch", MuscleGroup: "Core", Equipment: "Bodyweight"},
	}

	created, skipped := 0, 0
	for i := range exercises {
		ex := &exercises[i]
		err := repo.Create(ctx, ex)
		switch {
		case errors.Is(err, domain.ErrDuplicateExercise):
			skipped++
			log.WithField("name", ex.Name).Debug("skipping duplicate")
		case err != nil:
			log.WithError(err).WithField("name", ex.Name).Error("failed to create exercise")
		default:
			created++
		}
	}
	log.WithFields(log.Fields{"created": created, "skipped": skipped}).Info("exercise seeding complete")
}
