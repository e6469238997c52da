package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fittrack/fittrack/internal/model"
)

var (
	ErrProgressNotFound = errors.New("progress entry not found")
)

type ProgressRepository interface {
	Create(progress *model.Progress) error
	ByID(userID, progressID string) (*model.Progress, error)
	ForGoal(userID, goalID string, from, to *time.Time) ([]*model.Progress, error)
	Update(progress *model.Progress) error
	Delete(userID, progressID string) error
	LatestForGoal(goalID string) (*model.Progress, error)
}

type progressRepository struct {
	db *sqlx.DB
}

func NewProgressRepository(db *sqlx.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Create(progress *model.Progress) error {
	query := `INSERT INTO progress (id, goal_id, user_id, value, date, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		progress.ID,
		progress.GoalID,
		progress.UserID,
		progress.Value,
		progress.Date,
		progress.Notes,
		progress.CreatedAt,
		progress.UpdatedAt,
	)

	return err
}

func (r *progressRepository) ByID(userID, progressID string) (*model.Progress, error) {
	progress := &model.Progress{}
	query := `SELECT * FROM progress WHERE id = $1 AND user_id = $2`

	err := r.db.Get(progress, query, progressID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}

	return progress, nil
}

// ForGoal returns the caller's entries for a goal ordered by date ascending,
// optionally bounded to [from, to] inclusive. A goal id that does not exist
// or belongs to another user yields an empty slice; the user_id predicate on
// the rows themselves is the ownership scope.
func (r *progressRepository) ForGoal(userID, goalID string, from, to *time.Time) ([]*model.Progress, error) {
	query := `SELECT * FROM progress WHERE goal_id = $1 AND user_id = $2`
	args := []any{goalID, userID}

	if from != nil {
		args = append(args, *from)
		query += ` AND date >= $3`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += ` AND date <= $4`
		} else {
			query += ` AND date <= $3`
		}
	}

	query += ` ORDER BY date ASC, created_at ASC, id ASC`

	// Initialized so an empty result serializes as [] rather than null.
	entries := []*model.Progress{}
	err := r.db.Select(&entries, query, args...)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *progressRepository) Update(progress *model.Progress) error {
	query := `UPDATE progress
	          SET value = $1, date = $2, notes = $3, updated_at = $4
	          WHERE id = $5 AND user_id = $6`

	result, err := r.db.Exec(query,
		progress.Value,
		progress.Date,
		progress.Notes,
		time.Now(),
		progress.ID,
		progress.UserID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrProgressNotFound
	}

	return nil
}

func (r *progressRepository) Delete(userID, progressID string) error {
	query := `DELETE FROM progress WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, progressID, userID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrProgressNotFound
	}

	return nil
}

// LatestForGoal fetches the single most recent entry for a goal by date.
// Equal dates tie-break on created_at, then id, so the winner is
// deterministic. Returns ErrProgressNotFound when the goal has no entries.
func (r *progressRepository) LatestForGoal(goalID string) (*model.Progress, error) {
	progress := &model.Progress{}
	query := `SELECT * FROM progress WHERE goal_id = $1
	          ORDER BY date DESC, created_at DESC, id DESC LIMIT 1`

	err := r.db.Get(progress, query, goalID)
	if err == sql.ErrNoRows {
		return nil, ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}

	return progress, nil
}
