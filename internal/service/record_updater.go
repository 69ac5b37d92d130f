package service

import (
	"context"
	"sync"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/telemetry"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const recordEvaluationTimeout = 5 * time.Second

// RecordJob asks for a personal record check after a set was logged.
type RecordJob struct {
	UserID     string
	ExerciseID string
	SessionID  string
	Weight     float64
	Reps       int
	Date       time.Time
}

// RecordUpdater evaluates personal records off the request path. Failures
// are logged and counted, never returned to the caller that logged the set.
type RecordUpdater struct {
	repo    domain.PersonalRecordRepository
	cache   domain.CacheRepository
	metrics *telemetry.Metrics
	workers int

	jobs    chan RecordJob
	mu      sync.RWMutex
	started bool
	closed  bool
	group   *errgroup.Group
}

// NewRecordUpdater creates an updater with a bounded queue.
func NewRecordUpdater(repo domain.PersonalRecordRepository, workers, queueSize int) *RecordUpdater {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &RecordUpdater{
		repo:    repo,
		workers: workers,
		jobs:    make(chan RecordJob, queueSize),
	}
}

// WithCache invalidates cached record lists when a record improves.
func (u *RecordUpdater) WithCache(cache domain.CacheRepository) *RecordUpdater {
	u.cache = cache
	return u
}

func (u *RecordUpdater) WithMetrics(m *telemetry.Metrics) *RecordUpdater {
	u.metrics = m
	return u
}

// Start launches the workers. Calling it twice is a no-op.
func (u *RecordUpdater) Start(ctx context.Context) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.started || u.closed {
		return
	}
	u.started = true

	u.group = &errgroup.Group{}
	for i := 0; i < u.workers; i++ {
		u.group.Go(func() error {
			for job := range u.jobs {
				u.process(ctx, job)
			}
			return nil
		})
	}
}

// Stop closes the queue and waits until every queued job is processed.
func (u *RecordUpdater) Stop() {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return
	}
	u.closed = true
	close(u.jobs)
	group := u.group
	u.mu.Unlock()

	if group == nil {
		// never started: drain inline
		for job := range u.jobs {
			u.process(context.Background(), job)
		}
		return
	}
	_ = group.Wait()
}

// Enqueue hands a job to the workers without blocking. It reports false
// when the job was dropped because the queue is full or stopped.
func (u *RecordUpdater) Enqueue(job RecordJob) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.closed {
		return false
	}

	select {
	case u.jobs <- job:
		return true
	default:
		u.metrics.RecordDropped(context.Background())
		log.WithFields(log.Fields{
			"user_id":     job.UserID,
			"exercise_id": job.ExerciseID,
		}).Warn("personal record queue full, evaluation dropped")
		return false
	}
}

func (u *RecordUpdater) process(ctx context.Context, job RecordJob) {
	ctx, cancel := context.WithTimeout(ctx, recordEvaluationTimeout)
	defer cancel()

	if _, err := u.Evaluate(ctx, job); err != nil {
		u.metrics.RecordFailed(ctx)
		log.WithError(err).WithFields(log.Fields{
			"user_id":     job.UserID,
			"exercise_id": job.ExerciseID,
			"session_id":  job.SessionID,
		}).Error("personal record evaluation failed")
	}
}

// Evaluate compares the job's Epley 1RM with the stored record and upserts
// when it is strictly better. Returns true when the record changed.
func (u *RecordUpdater) Evaluate(ctx context.Context, job RecordJob) (bool, error) {
	candidate := domain.EstimateOneRepMax(job.Weight, job.Reps)
	if candidate <= 0 {
		return false, nil
	}

	existing, err := u.repo.Get(ctx, job.UserID, job.ExerciseID)
	if err != nil {
		return false, err
	}
	if existing != nil && candidate <= existing.Estimate() {
		return false, nil
	}

	date := job.Date
	if date.IsZero() {
		date = time.Now()
	}
	updated, err := u.repo.UpsertIfBetter(ctx, &domain.PersonalRecord{
		UserID:     job.UserID,
		ExerciseID: job.ExerciseID,
		Weight:     job.Weight,
		Reps:       job.Reps,
		Date:       date,
		SessionID:  job.SessionID,
	})
	if err != nil {
		return false, err
	}
	if !updated {
		return false, nil
	}

	u.metrics.RecordUpdated(ctx)
	if u.cache != nil {
		if err := u.cache.InvalidateUserRecords(ctx, job.UserID); err != nil {
			log.WithError(err).Debug("failed to invalidate cached records")
		}
	}
	log.WithFields(log.Fields{
		"user_id":     job.UserID,
		"exercise_id": job.ExerciseID,
		"weight":      job.Weight,
		"reps":        job.Reps,
		"one_rep_max": candidate,
	}).Info("new personal record")
	return true, nil
}
