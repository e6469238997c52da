package model

import (
	"time"
)

// Progress is one timestamped measurement against a goal. Date is caller
// supplied and need not be "now"; recency for current-value purposes is
// decided by Date, not CreatedAt.
type Progress struct {
	ID        string    `db:"id" json:"id"`
	GoalID    string    `db:"goal_id" json:"goalId"`
	UserID    string    `db:"user_id" json:"userId"`
	Value     float64   `db:"value" json:"value"`
	Date      time.Time `db:"date" json:"date"`
	Notes     string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
