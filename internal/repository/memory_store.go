package repository

import (
	"context"
	"crypto/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"github.com/oklog/ulid/v2"
)

// MemoryStore keeps every collection in process memory. It backs
// STORE_DRIVER=memory and the service tests, and honours the same
// uniqueness rules as the Mongo indexes.
type MemoryStore struct {
	mu        sync.RWMutex
	exercises map[string]domain.Exercise
	routines  map[string]domain.Routine
	sessions  map[string]domain.Session
	sets      []domain.CompletedSet
	records   map[string]domain.PersonalRecord // user_id/exercise_id -> record
	volumes   map[string]domain.DailyVolume    // session_id -> volume
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		exercises: make(map[string]domain.Exercise),
		routines:  make(map[string]domain.Routine),
		sessions:  make(map[string]domain.Session),
		records:   make(map[string]domain.PersonalRecord),
		volumes:   make(map[string]domain.DailyVolume),
	}
}

func newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

func (s *MemoryStore) Exercises() *MemoryExerciseRepository {
	return &MemoryExerciseRepository{s: s}
}

func (s *MemoryStore) Routines() *MemoryRoutineRepository {
	return &MemoryRoutineRepository{s: s}
}

func (s *MemoryStore) Sessions() *MemorySessionRepository {
	return &MemorySessionRepository{s: s}
}

func (s *MemoryStore) Sets() *MemoryCompletedSetRepository {
	return &MemoryCompletedSetRepository{s: s}
}

func (s *MemoryStore) Records() *MemoryPersonalRecordRepository {
	return &MemoryPersonalRecordRepository{s: s}
}

func (s *MemoryStore) Volumes() *MemoryDailyVolumeRepository {
	return &MemoryDailyVolumeRepository{s: s}
}

// Exercise methods

type MemoryExerciseRepository struct{ s *MemoryStore }

func (r *MemoryExerciseRepository) Create(ctx context.Context, ex *domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.exercises {
		if other.UserID == ex.UserID && other.Name == ex.Name {
			return domain.ErrDuplicateExercise
		}
	}
	ex.ID = newID()
	ex.CreatedAt = time.Now()
	ex.UpdatedAt = ex.CreatedAt
	r.s.exercises[ex.ID] = *ex
	return nil
}

func (r *MemoryExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ex, ok := r.s.exercises[id]
	if !ok {
		return nil, domain.ErrExerciseNotFound
	}
	return &ex, nil
}

func (r *MemoryExerciseRepository) List(ctx context.Context, filter domain.ExerciseFilter) ([]*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*domain.Exercise{}
	for _, ex := range r.s.exercises {
		if !ex.IsGlobal() && ex.UserID != filter.UserID {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(ex.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.MuscleGroup != "" && ex.MuscleGroup != filter.MuscleGroup {
			continue
		}
		ex := ex
		result = append(result, &ex)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *MemoryExerciseRepository) Update(ctx context.Context, ex *domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.exercises[ex.ID]
	if !ok {
		return domain.ErrExerciseNotFound
	}
	for id, other := range r.s.exercises {
		if id != ex.ID && other.UserID == existing.UserID && other.Name == ex.Name {
			return domain.ErrDuplicateExercise
		}
	}
	ex.UserID = existing.UserID
	ex.CreatedAt = existing.CreatedAt
	ex.UpdatedAt = time.Now()
	r.s.exercises[ex.ID] = *ex
	return nil
}

func (r *MemoryExerciseRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.exercises[id]; !ok {
		return domain.ErrExerciseNotFound
	}
	delete(r.s.exercises, id)
	return nil
}

// Routine methods

type MemoryRoutineRepository struct{ s *MemoryStore }

func copyRoutine(rt domain.Routine) *domain.Routine {
	exercises := make([]domain.PlannedExercise, len(rt.Exercises))
	copy(exercises, rt.Exercises)
	rt.Exercises = exercises
	return &rt
}

func (r *MemoryRoutineRepository) Create(ctx context.Context, routine *domain.Routine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	routine.ID = newID()
	routine.CreatedAt = time.Now()
	routine.UpdatedAt = routine.CreatedAt
	r.s.routines[routine.ID] = *copyRoutine(*routine)
	return nil
}

func (r *MemoryRoutineRepository) GetByID(ctx context.Context, id string) (*domain.Routine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rt, ok := r.s.routines[id]
	if !ok {
		return nil, domain.ErrRoutineNotFound
	}
	return copyRoutine(rt), nil
}

func (r *MemoryRoutineRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Routine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*domain.Routine{}
	for _, rt := range r.s.routines {
		if rt.UserID == userID {
			result = append(result, copyRoutine(rt))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.After(result[j].UpdatedAt) })
	return result, nil
}

func (r *MemoryRoutineRepository) Update(ctx context.Context, routine *domain.Routine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.routines[routine.ID]
	if !ok {
		return domain.ErrRoutineNotFound
	}
	existing.Name = routine.Name
	existing.Description = routine.Description
	existing.Exercises = routine.Exercises
	existing.UpdatedAt = time.Now()
	routine.UpdatedAt = existing.UpdatedAt
	r.s.routines[routine.ID] = *copyRoutine(existing)
	return nil
}

func (r *MemoryRoutineRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.routines[id]; !ok {
		return domain.ErrRoutineNotFound
	}
	delete(r.s.routines, id)
	return nil
}

// Session methods

type MemorySessionRepository struct{ s *MemoryStore }

func copySession(sess domain.Session) *domain.Session {
	if sess.EndTime != nil {
		end := *sess.EndTime
		sess.EndTime = &end
	}
	return &sess
}

func (r *MemorySessionRepository) Create(ctx context.Context, session *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.sessions {
		if other.IsOpen() && other.UserID == session.UserID && other.RoutineID == session.RoutineID {
			return domain.ErrSessionAlreadyOpen
		}
	}
	session.ID = newID()
	session.EndTime = nil
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	r.s.sessions[session.ID] = *session
	return nil
}

func (r *MemorySessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return copySession(sess), nil
}

func (r *MemorySessionRepository) FindOpen(ctx context.Context, userID, routineID string) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, sess := range r.s.sessions {
		if sess.IsOpen() && sess.UserID == userID && sess.RoutineID == routineID {
			return copySession(sess), nil
		}
	}
	return nil, nil
}

func (r *MemorySessionRepository) Close(ctx context.Context, id string, endTime time.Time, durationMinutes int, notes *string) (*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !sess.IsOpen() {
		return nil, domain.ErrSessionClosed
	}
	sess.EndTime = &endTime
	sess.TotalDurationMinutes = durationMinutes
	if notes != nil {
		sess.Notes = *notes
	}
	sess.UpdatedAt = time.Now()
	r.s.sessions[id] = sess
	return copySession(sess), nil
}

func (r *MemorySessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*domain.Session{}
	for _, sess := range r.s.sessions {
		if sess.UserID == userID {
			result = append(result, copySession(sess))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.After(result[j].StartTime) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Completed set methods

type MemoryCompletedSetRepository struct{ s *MemoryStore }

func (r *MemoryCompletedSetRepository) Append(ctx context.Context, set *domain.CompletedSet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.sets {
		if other.SessionID == set.SessionID && other.ExerciseID == set.ExerciseID && other.SetNumber == set.SetNumber {
			return domain.ErrDuplicateSet
		}
	}
	set.ID = newID()
	if set.LoggedAt.IsZero() {
		set.LoggedAt = time.Now()
	}
	r.s.sets = append(r.s.sets, *set)
	return nil
}

func (r *MemoryCompletedSetRepository) Find(ctx context.Context, sessionID, exerciseID string, setNumber int) (*domain.CompletedSet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, set := range r.s.sets {
		if set.SessionID == sessionID && set.ExerciseID == exerciseID && set.SetNumber == setNumber {
			set := set
			return &set, nil
		}
	}
	return nil, nil
}

// ListBySession returns sets in insertion order, which is logging order.
func (r *MemoryCompletedSetRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.CompletedSet, error) {
	return r.filter(func(set domain.CompletedSet) bool { return set.SessionID == sessionID }), nil
}

func (r *MemoryCompletedSetRepository) ListByUserAndExercise(ctx context.Context, userID, exerciseID string) ([]*domain.CompletedSet, error) {
	return r.filter(func(set domain.CompletedSet) bool {
		return set.UserID == userID && set.ExerciseID == exerciseID
	}), nil
}

func (r *MemoryCompletedSetRepository) filter(keep func(domain.CompletedSet) bool) []*domain.CompletedSet {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*domain.CompletedSet{}
	for _, set := range r.s.sets {
		if keep(set) {
			set := set
			result = append(result, &set)
		}
	}
	return result
}

// Personal record methods

type MemoryPersonalRecordRepository struct{ s *MemoryStore }

func recordKey(userID, exerciseID string) string {
	return userID + "/" + exerciseID
}

func (r *MemoryPersonalRecordRepository) Get(ctx context.Context, userID, exerciseID string) (*domain.PersonalRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	pr, ok := r.s.records[recordKey(userID, exerciseID)]
	if !ok {
		return nil, nil
	}
	return &pr, nil
}

func (r *MemoryPersonalRecordRepository) UpsertIfBetter(ctx context.Context, pr *domain.PersonalRecord) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	pr.OneRepMax = pr.Estimate()
	if pr.Date.IsZero() {
		pr.Date = now
	}

	key := recordKey(pr.UserID, pr.ExerciseID)
	existing, ok := r.s.records[key]
	if ok && pr.OneRepMax <= existing.OneRepMax {
		return false, nil
	}
	if ok {
		pr.ID = existing.ID
		pr.CreatedAt = existing.CreatedAt
	} else {
		pr.ID = newID()
		pr.CreatedAt = now
	}
	pr.UpdatedAt = now
	r.s.records[key] = *pr
	return true, nil
}

func (r *MemoryPersonalRecordRepository) ListByUser(ctx context.Context, userID string) ([]*domain.PersonalRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*domain.PersonalRecord{}
	for _, pr := range r.s.records {
		if pr.UserID == userID {
			pr := pr
			result = append(result, &pr)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ExerciseID < result[j].ExerciseID })
	return result, nil
}

func (r *MemoryPersonalRecordRepository) DeleteByUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for key, pr := range r.s.records {
		if pr.UserID == userID {
			delete(r.s.records, key)
		}
	}
	return nil
}

// Daily volume methods

type MemoryDailyVolumeRepository struct{ s *MemoryStore }

func (r *MemoryDailyVolumeRepository) Upsert(ctx context.Context, volume *domain.DailyVolume) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.volumes[volume.SessionID]; ok {
		volume.ID = existing.ID
		volume.CreatedAt = existing.CreatedAt
	} else {
		volume.ID = newID()
		volume.CreatedAt = time.Now()
	}
	r.s.volumes[volume.SessionID] = *volume
	return nil
}

func (r *MemoryDailyVolumeRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.DailyVolume, error) {
	result := r.filter(func(v domain.DailyVolume) bool { return v.UserID == userID })
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *MemoryDailyVolumeRepository) ListByUserAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyVolume, error) {
	result := r.filter(func(v domain.DailyVolume) bool {
		return v.UserID == userID && !v.Date.Before(from) && !v.Date.After(to)
	})
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (r *MemoryDailyVolumeRepository) DeleteByUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for key, v := range r.s.volumes {
		if v.UserID == userID {
			delete(r.s.volumes, key)
		}
	}
	return nil
}

func (r *MemoryDailyVolumeRepository) filter(keep func(domain.DailyVolume) bool) []*domain.DailyVolume {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*domain.DailyVolume{}
	for _, v := range r.s.volumes {
		if keep(v) {
			v := v
			result = append(result, &v)
		}
	}
	return result
}
