package server

import (
	"github.com/Reese408/WorkoutApp-3-sub000/internal/config"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/execution"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/handler"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/middleware"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/service"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/telemetry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

// Repositories is the storage backend the services run on.
type Repositories struct {
	Exercises domain.ExerciseRepository
	Routines  domain.RoutineRepository
	Sessions  domain.SessionRepository
	Sets      domain.CompletedSetRepository
	Records   domain.PersonalRecordRepository
	Volumes   domain.DailyVolumeRepository
}

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config       *config.Config
	Repositories Repositories
	Registry     *execution.Registry
	Records      *service.RecordUpdater
	Tokens       *service.TokenService
	Metrics      *telemetry.Metrics
	RedisClient  *redis.Client          // nil disables idempotency replay
	Cache        domain.CacheRepository // nil disables summary and record caching
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	repos := deps.Repositories
	cfg := deps.Config

	// Initialize services
	exerciseService := service.NewExerciseService(repos.Exercises)
	routineService := service.NewRoutineService(repos.Routines, repos.Exercises)
	sessionService := service.NewSessionService(
		repos.Routines,
		repos.Sessions,
		repos.Sets,
		repos.Volumes,
		deps.Records,
		deps.Registry,
	).WithMetrics(deps.Metrics)
	historyService := service.NewHistoryService(
		repos.Sessions,
		repos.Sets,
		repos.Routines,
		repos.Records,
		repos.Volumes,
	)
	if deps.Cache != nil {
		sessionService.WithCache(deps.Cache, cfg.Workout.SummaryCacheTTL)
		historyService.WithCache(deps.Cache, cfg.Workout.RecordsCacheTTL)
	}

	// Initialize handlers
	exerciseHandler := handler.NewExerciseHandler(exerciseService, historyService)
	routineHandler := handler.NewRoutineHandler(routineService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	historyHandler := handler.NewHistoryHandler(historyService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Workout API",
		BodyLimit:    cfg.Server.BodyLimitKB * 1024,
		ErrorHandler: handler.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(telemetry.FiberMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "workout-api",
			"live":    deps.Registry.Len(),
		})
	})

	// API v1 routes, all authenticated
	v1 := app.Group("/v1")
	v1.Use(middleware.RequireAuth(deps.Tokens))
	if deps.RedisClient != nil {
		v1.Use(middleware.IdempotencyMiddleware(deps.RedisClient, cfg.Workout.IdempotencyTTL))
	}

	exercises := v1.Group("/exercises")
	exercises.Get("/", exerciseHandler.ListExercises)
	exercises.Post("/", exerciseHandler.CreateExercise)
	exercises.Get("/:id", exerciseHandler.GetExercise)
	exercises.Put("/:id", exerciseHandler.UpdateExercise)
	exercises.Delete("/:id", exerciseHandler.DeleteExercise)

	routines := v1.Group("/routines")
	routines.Get("/", routineHandler.ListRoutines)
	routines.Post("/", routineHandler.CreateRoutine)
	routines.Get("/:id", routineHandler.GetRoutine)
	routines.Put("/:id", routineHandler.UpdateRoutine)
	routines.Delete("/:id", routineHandler.DeleteRoutine)
	routines.Get("/:id/steps/:index", routineHandler.GetStep)
	routines.Post("/:id/sessions", sessionHandler.StartRoutineSession)

	sessions := v1.Group("/sessions")
	sessions.Post("/", sessionHandler.StartAdHocSession)
	sessions.Get("/", sessionHandler.ListSessions)
	sessions.Get("/:id/state", sessionHandler.GetState)
	sessions.Post("/:id/sets", sessionHandler.LogSet)
	sessions.Post("/:id/rest/skip", sessionHandler.SkipRest)
	sessions.Post("/:id/rest/pause", sessionHandler.PauseRest)
	sessions.Post("/:id/rest/resume", sessionHandler.ResumeRest)
	sessions.Delete("/:id/view", sessionHandler.DetachView)
	sessions.Post("/:id/complete", sessionHandler.CompleteSession)
	sessions.Get("/:id/summary", sessionHandler.GetSummary)

	me := v1.Group("/me")
	me.Get("/records", historyHandler.ListRecords)
	me.Get("/volumes", historyHandler.ListVolumes)
	me.Get("/exercises/:id/sets", exerciseHandler.ListExerciseSets)

	return app
}
