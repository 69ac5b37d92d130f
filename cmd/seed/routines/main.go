package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/config"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/repository"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/service"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type entry struct {
	name     string
	sets     int
	reps     int
	rest     int
	superset int // 0 means standalone
}

var starters = []struct {
	name        string
	description string
	entries     []entry
}{
	{
		name:        "Upper Body",
		description: "Press and pull with an arm superset to finish",
		entries: []entry{
			{name: "Barbell Bench Press", sets: 4, reps: 8, rest: 120},
			{name: "Overhead Press", sets: 3, reps: 8, rest: 90},
			{name: "Lat Pulldown", sets: 3, reps: 10, rest: 90},
			{name: "Barbell Row", sets: 3, reps: 10, rest: 90},
			{name: "Barbell Curl", sets: 3, reps: 12, rest: 60, superset: 1},
			{name: "Tricep Pushdown", sets: 3, reps: 12, rest: 60, superset: 1},
		},
	},
	{
		name:        "Lower Body",
		description: "Squat and hinge focus",
		entries: []entry{
			{name: "Barbell Squat", sets: 4, reps: 6, rest: 180},
			{name: "Romanian Deadlift", sets: 3, reps: 8, rest: 120},
			{name: "Leg Press", sets: 3, reps: 12, rest: 90},
			{name: "Leg Extension", sets: 3, reps: 12, rest: 60, superset: 1},
			{name: "Lying Leg Curl", sets: 3, reps: 12, rest: 60, superset: 1},
			{name: "Calf Raise", sets: 4, reps: 15, rest: 45},
		},
	},
	{
		name:        "Full Body - Beginner",
		description: "Five movements, moderate volume",
		entries: []entry{
			{name: "Goblet Squat", sets: 3, reps: 10, rest: 90},
			{name: "Push Up", sets: 3, reps: 10, rest: 60},
			{name: "Seated Cable Row", sets: 3, reps: 12, rest: 60},
			{name: "Dumbbell Shoulder Press", sets: 3, reps: 10, rest: 60},
			{name: "Plank", sets: 3, reps: 1, rest: 45},
		},
	},
}

// Creates the starter routines for one user. Run the exercise seeder first.
func main() {
	userID := flag.String("user", "", "user id that will own the routines (required)")
	flag.Parse()
	if *userID == "" {
		flag.Usage()
		os.Exit(1)
	}

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

	db := client.Database(cfg.MongoDB.Database)
	exercises := repository.NewMongoExerciseRepository(db)
	routines := service.NewRoutineService(repository.NewMongoRoutineRepository(db), exercises)

	for _, starter := range starters {
		routine := &domain.Routine{Name: starter.name, Description: starter.description}
		for i, e := range starter.entries {
			id, ok := findExercise(ctx, exercises, *userID, e.name)
			if !ok {
				log.WithField("exercise", e.name).Warn("exercise not found, leaving it out")
				continue
			}
			planned := domain.PlannedExercise{
				ExerciseID:  id,
				TargetSets:  e.sets,
				TargetReps:  e.reps,
				RestSeconds: e.rest,
				OrderIndex:  i,
			}
			if e.superset > 0 {
				group := e.superset
				planned.SupersetGroup = &group
			}
			routine.Exercises = append(routine.Exercises, planned)
		}

		created, err := routines.Create(ctx, *userID, routine)
		if err != nil {
			log.WithError(err).WithField("routine", starter.name).Error("failed to create routine")
			continue
		}
		log.WithFields(log.Fields{
			"routine":   created.Name,
			"id":        created.ID,
			"exercises": len(created.Exercises),
		}).Info("created routine")
	}
}

func findExercise(ctx context.Context, repo domain.ExerciseRepository, userID, name string) (string, bool) {
	candidates, err := repo.List(ctx, domain.ExerciseFilter{UserID: userID, Name: name})
	if err != nil {
		log.WithError(err).Warn("exercise lookup failed")
		return "", false
	}
	for _, ex := range candidates {
		if strings.EqualFold(ex.Name, name) {
			return ex.ID, true
		}
	}
	return "", false
}
