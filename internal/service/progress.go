package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fittrack/fittrack/internal/metrics"
	"github.com/fittrack/fittrack/internal/model"
	"github.com/fittrack/fittrack/internal/repository"
	"github.com/fittrack/fittrack/internal/validation"
)

// ProgressService owns progress entries and the denormalized
// goals.current_value column. Every mutation that can change which entry is
// most recent for a goal, or that entry's value, recomputes the column from
// the authoritative progress history.
type ProgressService struct {
	goalRepo repository.GoalRepository
	repo     repository.ProgressRepository

	// Serializes the write-then-recompute sequence per goal so concurrent
	// writers to the same goal cannot interleave recomputations.
	mu    sync.Mutex
	locks map[string]*goalLock
}

// goalLock is a refcounted mutex; the entry is dropped from the map once no
// writer holds or waits on it, so the map only tracks goals under mutation.
type goalLock struct {
	mu   sync.Mutex
	refs int
}

func NewProgressService(goalRepo repository.GoalRepository, repo repository.ProgressRepository) *ProgressService {
	return &ProgressService{
		goalRepo: goalRepo,
		repo:     repo,
		locks:    make(map[string]*goalLock),
	}
}

type CreateProgressInput struct {
	GoalID string
	Value  float64
	Date   time.Time
	Notes  string
}

// UpdateProgressInput carries a partial update; nil fields are left
// untouched. GoalID is immutable, so it does not appear here.
type UpdateProgressInput struct {
	Value *float64
	Date  *time.Time
	Notes *string
}

func (s *ProgressService) Entries(userID, goalID string, from, to *time.Time) ([]*model.Progress, error) {
	return s.repo.ForGoal(userID, goalID, from, to)
}

func (s *ProgressService) Create(userID string, in CreateProgressInput) (*model.Progress, error) {
	if err := validation.ValidateProgressValue(in.Value); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotes(in.Notes); err != nil {
		return nil, err
	}

	// The parent goal must exist and belong to the caller. A goal owned by
	// someone else reports the same not-found as a missing one.
	goal, err := s.goalRepo.ByID(userID, in.GoalID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockGoal(goal.ID)
	defer unlock()

	now := time.Now()
	progress := &model.Progress{
		ID:        uuid.New().String(),
		GoalID:    goal.ID,
		UserID:    userID,
		Value:     in.Value,
		Date:      in.Date,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.repo.Create(progress)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress entry: %w", err)
	}

	err = s.recompute(goal.ID)
	if err != nil {
		// The entry was persisted; only the cached current value is stale.
		return progress, fmt.Errorf("progress saved but goal recompute failed: %w", err)
	}

	return progress, nil
}

func (s *ProgressService) Update(userID, progressID string, in UpdateProgressInput) (*model.Progress, error) {
	progress, err := s.repo.ByID(userID, progressID)
	if err != nil {
		return nil, err
	}

	recencyChanged := false
	if in.Value != nil {
		if err := validation.ValidateProgressValue(*in.Value); err != nil {
			return nil, err
		}
		if *in.Value != progress.Value {
			recencyChanged = true
		}
		progress.Value = *in.Value
	}
	if in.Date != nil {
		if !in.Date.Equal(progress.Date) {
			recencyChanged = true
		}
		progress.Date = *in.Date
	}
	if in.Notes != nil {
		if err := validation.ValidateNotes(*in.Notes); err != nil {
			return nil, err
		}
		progress.Notes = *in.Notes
	}

	unlock := s.lockGoal(progress.GoalID)
	defer unlock()

	progress.UpdatedAt = time.Now()
	err = s.repo.Update(progress)
	if err != nil {
		return nil, err
	}

	// A notes-only update cannot move the goal's current value.
	if recencyChanged {
		err = s.recompute(progress.GoalID)
		if err != nil {
			return progress, fmt.Errorf("progress updated but goal recompute failed: %w", err)
		}
	}

	return progress, nil
}

func (s *ProgressService) Delete(userID, progressID string) error {
	progress, err := s.repo.ByID(userID, progressID)
	if err != nil {
		return err
	}

	unlock := s.lockGoal(progress.GoalID)
	defer unlock()

	err = s.repo.Delete(userID, progressID)
	if err != nil {
		return err
	}

	err = s.recompute(progress.GoalID)
	if err != nil {
		return fmt.Errorf("progress deleted but goal recompute failed: %w", err)
	}

	return nil
}

// recompute sets the goal's current value to the value of its most recent
// surviving entry (max date, ties broken by created_at then id), or zero
// when none survive. The operation reads nothing but the progress table, so
// re-running it is always safe.
func (s *ProgressService) recompute(goalID string) error {
	value := 0.0

	latest, err := s.repo.LatestForGoal(goalID)
	if err != nil && !errors.Is(err, repository.ErrProgressNotFound) {
		metrics.RecomputesTotal.WithLabelValues("error").Inc()
		return err
	}
	if latest != nil {
		value = latest.Value
	}

	err = s.goalRepo.SetCurrentValue(goalID, value)
	if err != nil {
		// The goal may have been deleted out from under us; its current
		// value no longer matters then.
		if errors.Is(err, repository.ErrGoalNotFound) {
			metrics.RecomputesTotal.WithLabelValues("orphaned").Inc()
			return nil
		}
		metrics.RecomputesTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.RecomputesTotal.WithLabelValues("ok").Inc()
	return nil
}

// lockGoal acquires the per-goal mutex, creating it on first use. The
// returned func releases the mutex and evicts the map entry when this was
// the last holder.
func (s *ProgressService) lockGoal(goalID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[goalID]
	if !ok {
		lock = &goalLock{}
		s.locks[goalID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, goalID)
		}
		s.mu.Unlock()
	}
}
