package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fittrack/fittrack/internal/model"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

type GoalRepository interface {
	Create(goal *model.Goal) error
	ByID(userID, goalID string) (*model.Goal, error)
	Goals(userID string) ([]*model.Goal, error)
	Update(goal *model.Goal) error
	Delete(userID, goalID string) error
	SetCurrentValue(goalID string, value float64) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(goal *model.Goal) error {
	query := `INSERT INTO goals (id, user_id, title, description, target_value, current_value, unit, goal_type, start_date, target_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.TargetValue,
		goal.CurrentValue,
		goal.Unit,
		goal.GoalType,
		goal.StartDate,
		goal.TargetDate,
		goal.CreatedAt,
		goal.UpdatedAt,
	)

	return err
}

func (r *goalRepository) ByID(userID, goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1 AND user_id = $2`

	err := r.db.Get(goal, query, goalID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

func (r *goalRepository) Goals(userID string) ([]*model.Goal, error) {
	// Initialized so an empty result serializes as [] rather than null.
	goals := []*model.Goal{}
	query := `SELECT * FROM goals WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	err := r.db.Select(&goals, query, userID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) Update(goal *model.Goal) error {
	query := `UPDATE goals
	          SET title = $1, description = $2, target_value = $3, unit = $4, goal_type = $5, start_date = $6, target_date = $7, updated_at = $8
	          WHERE id = $9 AND user_id = $10`

	result, err := r.db.Exec(query,
		goal.Title,
		goal.Description,
		goal.TargetValue,
		goal.Unit,
		goal.GoalType,
		goal.StartDate,
		goal.TargetDate,
		time.Now(),
		goal.ID,
		goal.UserID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

// Delete removes the goal. Dependent progress rows go with it via the
// ON DELETE CASCADE foreign key.
func (r *goalRepository) Delete(userID, goalID string) error {
	query := `DELETE FROM goals WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, goalID, userID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

// SetCurrentValue writes the denormalized current value. Not ownership
// scoped: callers have already verified ownership on the triggering
// mutation, and the recompute runs under the goal's write lock.
func (r *goalRepository) SetCurrentValue(goalID string, value float64) error {
	query := `UPDATE goals SET current_value = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, value, time.Now(), goalID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}
