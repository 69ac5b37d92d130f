package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRecordsTTL = 10 * time.Minute
	rebuildParallel   = 4
)

// HistoryService serves a user's long-term progress: personal records,
// daily volume and per-exercise set history.
type HistoryService struct {
	sessionRepo domain.SessionRepository
	setRepo     domain.CompletedSetRepository
	routineRepo domain.RoutineRepository
	recordRepo  domain.PersonalRecordRepository
	volumeRepo  domain.DailyVolumeRepository

	cache      domain.CacheRepository
	recordsTTL time.Duration
}

func NewHistoryService(
	sessionRepo domain.SessionRepository,
	setRepo domain.CompletedSetRepository,
	routineRepo domain.RoutineRepository,
	recordRepo domain.PersonalRecordRepository,
	volumeRepo domain.DailyVolumeRepository,
) *HistoryService {
	return &HistoryService{
		sessionRepo: sessionRepo,
		setRepo:     setRepo,
		routineRepo: routineRepo,
		recordRepo:  recordRepo,
		volumeRepo:  volumeRepo,
		recordsTTL:  defaultRecordsTTL,
	}
}

func (s *HistoryService) WithCache(cache domain.CacheRepository, ttl time.Duration) *HistoryService {
	s.cache = cache
	if ttl > 0 {
		s.recordsTTL = ttl
	}
	return s
}

// ListRecords returns the user's personal records, one per exercise.
func (s *HistoryService) ListRecords(ctx context.Context, userID string) ([]*domain.PersonalRecord, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetUserRecords(ctx, userID); err == nil && cached != nil {
			return cached, nil
		}
	}

	records, err := s.recordRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetUserRecords(ctx, userID, records, s.recordsTTL); err != nil {
			log.WithError(err).Debug("failed to cache personal records")
		}
	}
	return records, nil
}

// ListVolumes returns daily volume entries. With a range they come oldest
// first, otherwise the newest limit entries.
func (s *HistoryService) ListVolumes(ctx context.Context, userID string, from, to *time.Time, limit int) ([]*domain.DailyVolume, error) {
	if from != nil || to != nil {
		start, end := time.Time{}, time.Now().UTC()
		if from != nil {
			start = *from
		}
		if to != nil {
			end = *to
		}
		if end.Before(start) {
			return nil, domain.NewValidationError("to", "must not be before from")
		}
		return s.volumeRepo.ListByUserAndDateRange(ctx, userID, start, end)
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.volumeRepo.ListByUser(ctx, userID, limit)
}

// ExerciseHistory returns every set the user logged for one exercise,
// oldest first.
func (s *HistoryService) ExerciseHistory(ctx context.Context, userID, exerciseID string) ([]*domain.CompletedSet, error) {
	if exerciseID == "" {
		return nil, domain.NewValidationError("exercise_id", "is required")
	}
	return s.setRepo.ListByUserAndExercise(ctx, userID, exerciseID)
}

// RebuildPersonalRecords recomputes the user's records from every logged
// set. Returns the number of records written.
func (s *HistoryService) RebuildPersonalRecords(ctx context.Context, userID string) (int, error) {
	sets, err := s.allSets(ctx, userID)
	if err != nil {
		return 0, err
	}

	best := make(map[string]*domain.PersonalRecord)
	for _, sessionSets := range sets {
		for _, candidate := range sessionSets {
			if candidate.WeightOrZero() <= 0 || candidate.Reps <= 0 {
				continue
			}
			pr := &domain.PersonalRecord{
				UserID:     userID,
				ExerciseID: candidate.ExerciseID,
				Weight:     candidate.WeightOrZero(),
				Reps:       candidate.Reps,
				Date:       candidate.LoggedAt,
				SessionID:  candidate.SessionID,
			}
			if current, ok := best[candidate.ExerciseID]; !ok || pr.Estimate() > current.Estimate() {
				best[candidate.ExerciseID] = pr
			}
		}
	}

	if err := s.recordRepo.DeleteByUser(ctx, userID); err != nil {
		return 0, fmt.Errorf("failed to clear personal records: %w", err)
	}
	written := 0
	for _, pr := range best {
		if _, err := s.recordRepo.UpsertIfBetter(ctx, pr); err != nil {
			return written, err
		}
		written++
	}

	if s.cache != nil {
		if err := s.cache.InvalidateUserRecords(ctx, userID); err != nil {
			log.WithError(err).Debug("failed to invalidate cached records")
		}
	}
	log.WithFields(log.Fields{"user_id": userID, "records": written}).Info("personal records rebuilt")
	return written, nil
}

// RebuildVolumes regenerates the daily volume entries of the user's closed
// sessions. Returns the number of entries written.
func (s *HistoryService) RebuildVolumes(ctx context.Context, userID string) (int, error) {
	sessions, err := s.sessionRepo.ListByUser(ctx, userID, 0)
	if err != nil {
		return 0, err
	}
	if err := s.volumeRepo.DeleteByUser(ctx, userID); err != nil {
		return 0, fmt.Errorf("failed to clear daily volumes: %w", err)
	}

	var (
		mu      sync.Mutex
		written int
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(rebuildParallel)
	for _, session := range sessions {
		if session.IsOpen() {
			continue
		}
		g.Go(func() error {
			sets, err := s.setRepo.ListBySession(gCtx, session.ID)
			if err != nil {
				return fmt.Errorf("failed to load sets of session %s: %w", session.ID, err)
			}
			plan := s.plan(gCtx, session)
			summary := domain.Summarize(session, sets, plan)
			if err := s.volumeRepo.Upsert(gCtx, domain.NewDailyVolume(session, summary)); err != nil {
				return err
			}
			mu.Lock()
			written++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return written, err
	}

	log.WithFields(log.Fields{"user_id": userID, "volumes": written}).Info("daily volumes rebuilt")
	return written, nil
}

// plan is best effort: summaries without a plan only lose names and
// completion rate, which daily volume does not use.
func (s *HistoryService) plan(ctx context.Context, session *domain.Session) *domain.RoutinePlan {
	if session.IsAdHoc() {
		return nil
	}
	routine, err := s.routineRepo.GetByID(ctx, session.RoutineID)
	if err != nil {
		return nil
	}
	return routine.Plan()
}

// allSets loads the sets of every session of the user, grouped by session.
func (s *HistoryService) allSets(ctx context.Context, userID string) (map[string][]*domain.CompletedSet, error) {
	sessions, err := s.sessionRepo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	result := make(map[string][]*domain.CompletedSet, len(sessions))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(rebuildParallel)
	for _, session := range sessions {
		g.Go(func() error {
			sets, err := s.setRepo.ListBySession(gCtx, session.ID)
			if err != nil {
				return fmt.Errorf("failed to load sets of session %s: %w", session.ID, err)
			}
			mu.Lock()
			result[session.ID] = sets
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
