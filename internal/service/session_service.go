package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/execution"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/telemetry"
	"github.com/oklog/ulid/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	defaultSummaryTTL   = 24 * time.Hour

	completedExplicitly   = "explicit"
	completedPlanFinished = "plan_finished"
)

// generateULID creates a new ULID string
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// StartResult describes the session a user lands in after starting a routine.
type StartResult struct {
	Session *domain.Session     `json:"session"`
	Plan    *domain.RoutinePlan `json:"plan,omitempty"`
	Resume  domain.ResumePoint  `json:"resume"`
	State   execution.State     `json:"state"`
	Created bool                `json:"created"`
}

// LogSetInput is one set as entered by the user.
type LogSetInput struct {
	SessionID       string
	ClientID        string // optional, generated when empty
	ExerciseID      string
	SetNumber       int
	Reps            int
	Weight          *float64
	DurationSeconds *int
	Notes           string
}

// LogSetResult reports what happened after a set was logged.
type LogSetResult struct {
	Set        *domain.CompletedSet `json:"set"`
	Duplicate  bool                 `json:"duplicate"`
	Transition *domain.Transition   `json:"transition,omitempty"` // nil for ad hoc sessions
	State      execution.State      `json:"state"`
	Completed  bool                 `json:"completed"`
	Session    *domain.Session      `json:"session,omitempty"` // set when the set finished the plan
}

// CompleteInput carries optional completion overrides.
type CompleteInput struct {
	EndTime *time.Time
	Notes   *string
}

// SessionService runs workout sessions: start or resume, set logging,
// the live rest and workout clocks, completion and summaries.
type SessionService struct {
	routineRepo domain.RoutineRepository
	sessionRepo domain.SessionRepository
	setRepo     domain.CompletedSetRepository
	volumeRepo  domain.DailyVolumeRepository
	records     *RecordUpdater
	registry    *execution.Registry

	cache      domain.CacheRepository
	summaryTTL time.Duration
	metrics    *telemetry.Metrics
	now        func() time.Time
}

func NewSessionService(
	routineRepo domain.RoutineRepository,
	sessionRepo domain.SessionRepository,
	setRepo domain.CompletedSetRepository,
	volumeRepo domain.DailyVolumeRepository,
	records *RecordUpdater,
	registry *execution.Registry,
) *SessionService {
	return &SessionService{
		routineRepo: routineRepo,
		sessionRepo: sessionRepo,
		setRepo:     setRepo,
		volumeRepo:  volumeRepo,
		records:     records,
		registry:    registry,
		summaryTTL:  defaultSummaryTTL,
		now:         time.Now,
	}
}

// WithCache enables caching of closed-session summaries.
func (s *SessionService) WithCache(cache domain.CacheRepository, ttl time.Duration) *SessionService {
	s.cache = cache
	if ttl > 0 {
		s.summaryTTL = ttl
	}
	return s
}

func (s *SessionService) WithMetrics(m *telemetry.Metrics) *SessionService {
	s.metrics = m
	return s
}

// WithClock replaces time.Now, for tests.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// StartOrResume returns the user's open session for the routine, or starts
// a new one. An open session is returned unchanged.
func (s *SessionService) StartOrResume(ctx context.Context, userID, routineID string) (*StartResult, error) {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		return nil, err
	}
	if routine.UserID != userID {
		auditForbidden(userID, "routine", routineID)
		return nil, domain.ErrForbidden
	}

	return s.startOrResume(ctx, userID, routine.ID, routine.Plan())
}

// StartAdHoc returns the user's open ad hoc session, or starts one. Ad hoc
// sessions have no plan and never complete on their own.
func (s *SessionService) StartAdHoc(ctx context.Context, userID string) (*StartResult, error) {
	return s.startOrResume(ctx, userID, "", nil)
}

func (s *SessionService) startOrResume(ctx context.Context, userID, routineID string, plan *domain.RoutinePlan) (*StartResult, error) {
	session, err := s.sessionRepo.FindOpen(ctx, userID, routineID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up open session: %w", err)
	}

	created := false
	if session == nil {
		session = &domain.Session{
			UserID:    userID,
			RoutineID: routineID,
			StartTime: s.now(),
		}
		err := s.sessionRepo.Create(ctx, session)
		switch {
		case errors.Is(err, domain.ErrSessionAlreadyOpen):
			// lost a race with another start; use the winner
			session, err = s.sessionRepo.FindOpen(ctx, userID, routineID)
			if err != nil {
				return nil, fmt.Errorf("failed to look up open session: %w", err)
			}
			if session == nil {
				return nil, fmt.Errorf("open session vanished during start")
			}
		case err != nil:
			return nil, err
		default:
			created = true
			s.metrics.SessionStarted(ctx, routineID == "")
			log.WithFields(log.Fields{
				"user_id":    userID,
				"session_id": session.ID,
				"routine_id": routineID,
			}).Info("workout session started")
		}
	}

	var sets []*domain.CompletedSet
	if !created {
		if sets, err = s.setRepo.ListBySession(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("failed to load logged sets: %w", err)
		}
	}

	resume := domain.InferResumePoint(plan, sets)
	ctrl := s.registry.Attach(session.ID, plan, resume)

	return &StartResult{
		Session: session,
		Plan:    plan,
		Resume:  resume,
		State:   ctrl.Snapshot(),
		Created: created,
	}, nil
}

func (in LogSetInput) validate() error {
	if in.ExerciseID == "" {
		return domain.NewValidationError("exercise_id", "is required")
	}
	if in.SetNumber < 1 {
		return domain.NewValidationError("set_number", "must be 1 or greater")
	}
	if in.Reps <= 0 {
		return domain.NewValidationError("reps", "must be greater than zero")
	}
	if in.Weight != nil && *in.Weight < 0 {
		return domain.NewValidationError("weight", "must not be negative")
	}
	if in.DurationSeconds != nil && *in.DurationSeconds < 0 {
		return domain.NewValidationError("duration_seconds", "must not be negative")
	}
	return nil
}

// LogSet persists one set and moves the session forward. Logging a set that
// is already stored returns the stored set without side effects. When the
// set finishes the plan the session is completed.
func (s *SessionService) LogSet(ctx context.Context, userID string, in LogSetInput) (*LogSetResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	session, err := s.loadOwned(ctx, userID, in.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsOpen() {
		return nil, domain.ErrSessionClosed
	}

	plan, err := s.loadPlan(ctx, session)
	if err != nil {
		return nil, err
	}
	index := -1
	if plan != nil {
		if index = plan.IndexOf(in.ExerciseID); index < 0 {
			return nil, domain.NewValidationError("exercise_id", "is not part of this routine")
		}
	} else if !session.IsAdHoc() {
		// routine deleted mid-session; the live view still walks the old plan
		s.registry.Detach(session.ID)
	}

	existing, err := s.setRepo.Find(ctx, session.ID, in.ExerciseID, in.SetNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check for logged set: %w", err)
	}
	if existing != nil {
		return s.duplicate(ctx, session, existing)
	}

	clientID := in.ClientID
	if clientID == "" {
		clientID = generateULID()
	}
	now := s.now()
	set := &domain.CompletedSet{
		ClientID:        clientID,
		SessionID:       session.ID,
		UserID:          userID,
		ExerciseID:      in.ExerciseID,
		SetNumber:       in.SetNumber,
		Reps:            in.Reps,
		Weight:          in.Weight,
		DurationSeconds: in.DurationSeconds,
		Completed:       true,
		Notes:           in.Notes,
		LoggedAt:        now,
	}
	if err := s.setRepo.Append(ctx, set); err != nil {
		if errors.Is(err, domain.ErrDuplicateSet) {
			stored, findErr := s.setRepo.Find(ctx, session.ID, in.ExerciseID, in.SetNumber)
			if findErr == nil && stored != nil {
				return s.duplicate(ctx, session, stored)
			}
		}
		return nil, err
	}
	s.metrics.SetLogged(ctx)

	if s.records != nil && set.WeightOrZero() > 0 && set.Reps > 0 {
		s.records.Enqueue(RecordJob{
			UserID:     userID,
			ExerciseID: set.ExerciseID,
			SessionID:  session.ID,
			Weight:     set.WeightOrZero(),
			Reps:       set.Reps,
			Date:       now,
		})
	}

	result := &LogSetResult{Set: set}
	if plan != nil {
		tr := domain.Advance(plan, index, set.SetNumber)
		result.Transition = &tr
	}

	state, err := s.dispatch(ctx, session, plan, execution.SetLogged{ExerciseIndex: index, SetNumber: set.SetNumber})
	if err != nil {
		log.WithError(err).WithField("session_id", session.ID).Warn("failed to update live session view")
	}
	result.State = state

	if result.Transition != nil && result.Transition.Kind == domain.TransitionDone {
		closed, err := s.close(ctx, session, now, nil, completedPlanFinished)
		if err != nil {
			// The set is stored; the client can still complete explicitly.
			log.WithError(err).WithField("session_id", session.ID).Warn("failed to complete finished session")
		} else {
			result.Completed = true
			result.Session = closed
		}
	}

	return result, nil
}

func (s *SessionService) duplicate(ctx context.Context, session *domain.Session, stored *domain.CompletedSet) (*LogSetResult, error) {
	state, err := s.State(ctx, session.UserID, session.ID)
	if err != nil {
		return nil, err
	}
	return &LogSetResult{Set: stored, Duplicate: true, State: state}, nil
}

// Complete closes the session. endTime defaults to now and notes, when
// given, replace the stored notes.
func (s *SessionService) Complete(ctx context.Context, userID, sessionID string, in CompleteInput) (*domain.Session, error) {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsOpen() {
		return nil, domain.ErrSessionClosed
	}

	end := s.now()
	if in.EndTime != nil {
		end = *in.EndTime
	}
	if end.Before(session.StartTime) {
		return nil, domain.NewValidationError("end_time", "must not be before the session start")
	}

	return s.close(ctx, session, end, in.Notes, completedExplicitly)
}

func (s *SessionService) close(ctx context.Context, session *domain.Session, end time.Time, notes *string, trigger string) (*domain.Session, error) {
	duration := domain.DurationMinutes(session.StartTime, end)
	closed, err := s.sessionRepo.Close(ctx, session.ID, end, duration, notes)
	if err != nil {
		return nil, err
	}

	s.metrics.SessionCompleted(ctx, trigger)
	log.WithFields(log.Fields{
		"user_id":          closed.UserID,
		"session_id":       closed.ID,
		"duration_minutes": duration,
		"trigger":          trigger,
	}).Info("workout session completed")

	if _, err := s.registry.Dispatch(ctx, closed.ID, execution.Finished{}); err != nil &&
		!errors.Is(err, execution.ErrNotAttached) && !errors.Is(err, execution.ErrControllerStopped) {
		log.WithError(err).Debug("failed to finish live session view")
	}
	s.registry.Detach(closed.ID)

	s.recordVolume(ctx, closed)

	if s.cache != nil {
		if err := s.cache.InvalidateSummary(ctx, closed.ID); err != nil {
			log.WithError(err).Debug("failed to invalidate cached summary")
		}
	}
	return closed, nil
}

// recordVolume stores the session's volume history entry. Best effort.
func (s *SessionService) recordVolume(ctx context.Context, session *domain.Session) {
	if s.volumeRepo == nil {
		return
	}
	summary, err := s.summarize(ctx, session)
	if err == nil {
		err = s.volumeRepo.Upsert(ctx, domain.NewDailyVolume(session, summary))
	}
	if err != nil {
		log.WithError(err).WithField("session_id", session.ID).Warn("failed to record daily volume")
	}
}

// Summarize reports the statistics of an open or closed session. Closed
// sessions never change, so their summaries are cached.
func (s *SessionService) Summarize(ctx context.Context, userID, sessionID string) (*domain.SessionSummary, error) {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	cacheable := !session.IsOpen() && s.cache != nil
	if cacheable {
		if cached, err := s.cache.GetSummary(ctx, session.ID); err == nil && cached != nil {
			return cached, nil
		}
	}

	summary, err := s.summarize(ctx, session)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.SetSummary(ctx, summary, s.summaryTTL); err != nil {
			log.WithError(err).Debug("failed to cache summary")
		}
	}
	return summary, nil
}

func (s *SessionService) summarize(ctx context.Context, session *domain.Session) (*domain.SessionSummary, error) {
	sets, plan, err := s.loadHistory(ctx, session)
	if err != nil {
		return nil, err
	}
	return domain.Summarize(session, sets, plan), nil
}

// State returns the live execution state, re-attaching a view from the
// stored sets when none is running.
func (s *SessionService) State(ctx context.Context, userID, sessionID string) (execution.State, error) {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return execution.State{}, err
	}
	if !session.IsOpen() {
		return execution.State{SessionID: session.ID, Phase: execution.PhaseComplete}, nil
	}

	ctrl, err := s.controller(ctx, session, nil)
	if err != nil {
		return execution.State{}, err
	}
	return ctrl.Snapshot(), nil
}

func (s *SessionService) SkipRest(ctx context.Context, userID, sessionID string) (execution.State, error) {
	return s.clockEvent(ctx, userID, sessionID, execution.SkipRest{})
}

func (s *SessionService) PauseRest(ctx context.Context, userID, sessionID string) (execution.State, error) {
	return s.clockEvent(ctx, userID, sessionID, execution.PauseRest{})
}

func (s *SessionService) ResumeRest(ctx context.Context, userID, sessionID string) (execution.State, error) {
	return s.clockEvent(ctx, userID, sessionID, execution.ResumeRest{})
}

func (s *SessionService) clockEvent(ctx context.Context, userID, sessionID string, ev execution.Event) (execution.State, error) {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return execution.State{}, err
	}
	if !session.IsOpen() {
		return execution.State{}, domain.ErrSessionClosed
	}
	return s.dispatch(ctx, session, nil, ev)
}

// Detach stops the live clocks of a session whose view was closed. The
// session itself stays open.
func (s *SessionService) Detach(ctx context.Context, userID, sessionID string) error {
	if _, err := s.loadOwned(ctx, userID, sessionID); err != nil {
		return err
	}
	s.registry.Detach(sessionID)
	return nil
}

// ListSessions returns the user's sessions, newest first.
func (s *SessionService) ListSessions(ctx context.Context, userID string, limit int) ([]*domain.Session, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.sessionRepo.ListByUser(ctx, userID, limit)
}

// dispatch sends ev to the session's controller, attaching one if needed.
// A freshly attached controller is rebuilt from stored sets, which already
// include a set that was just logged, so SetLogged is not replayed on it.
func (s *SessionService) dispatch(ctx context.Context, session *domain.Session, plan *domain.RoutinePlan, ev execution.Event) (execution.State, error) {
	if ctrl, ok := s.live(session.ID); ok {
		state, err := ctrl.Dispatch(ctx, ev)
		if !errors.Is(err, execution.ErrControllerStopped) {
			return state, err
		}
	}

	ctrl, err := s.controller(ctx, session, plan)
	if err != nil {
		return execution.State{}, err
	}
	if _, ok := ev.(execution.SetLogged); ok {
		return ctrl.Snapshot(), nil
	}
	return ctrl.Dispatch(ctx, ev)
}

func (s *SessionService) live(sessionID string) (*execution.Controller, bool) {
	ctrl, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, false
	}
	select {
	case <-ctrl.Done():
		return nil, false
	default:
		return ctrl, true
	}
}

// controller returns the running controller or attaches a new one.
func (s *SessionService) controller(ctx context.Context, session *domain.Session, plan *domain.RoutinePlan) (*execution.Controller, error) {
	if ctrl, ok := s.live(session.ID); ok {
		return ctrl, nil
	}

	sets, loadedPlan, err := s.loadHistory(ctx, session)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		plan = loadedPlan
	}
	return s.registry.Attach(session.ID, plan, domain.InferResumePoint(plan, sets)), nil
}

// loadHistory fetches the session's sets and plan concurrently.
func (s *SessionService) loadHistory(ctx context.Context, session *domain.Session) ([]*domain.CompletedSet, *domain.RoutinePlan, error) {
	var (
		sets []*domain.CompletedSet
		plan *domain.RoutinePlan
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sets, err = s.setRepo.ListBySession(gCtx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to load logged sets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		plan, err = s.loadPlan(gCtx, session)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return sets, plan, nil
}

// loadPlan returns nil for ad hoc sessions and for sessions whose routine
// was deleted after they started.
func (s *SessionService) loadPlan(ctx context.Context, session *domain.Session) (*domain.RoutinePlan, error) {
	if session.IsAdHoc() {
		return nil, nil
	}
	routine, err := s.routineRepo.GetByID(ctx, session.RoutineID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load routine: %w", err)
	}
	return routine.Plan(), nil
}

func (s *SessionService) loadOwned(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.OwnedBy(userID) {
		auditForbidden(userID, "session", sessionID)
		return nil, domain.ErrForbidden
	}
	return session, nil
}

func auditForbidden(userID, kind, id string) {
	log.WithFields(log.Fields{
		"user_id":     userID,
		"resource":    kind,
		"resource_id": id,
	}).Warn("forbidden access attempt")
}
