package model

import (
	"time"
)

const (
	GoalTypeWeightLoss  = "weight_loss"
	GoalTypeMuscleGain  = "muscle_gain"
	GoalTypeEndurance   = "endurance"
	GoalTypeFlexibility = "flexibility"
	GoalTypeCustom      = "custom"
)

// GoalTypes lists every accepted goal type.
var GoalTypes = []string{
	GoalTypeWeightLoss,
	GoalTypeMuscleGain,
	GoalTypeEndurance,
	GoalTypeFlexibility,
	GoalTypeCustom,
}

// Goal tracks a target numeric outcome for a user. CurrentValue is a
// denormalized snapshot of the latest progress entry and is maintained
// exclusively by the progress service; it is never written from API input.
type Goal struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"userId"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description,omitempty"`
	TargetValue  float64   `db:"target_value" json:"targetValue"`
	CurrentValue float64   `db:"current_value" json:"currentValue"`
	Unit         string    `db:"unit" json:"unit"`
	GoalType     string    `db:"goal_type" json:"goalType"`
	StartDate    time.Time `db:"start_date" json:"startDate"`
	TargetDate   time.Time `db:"target_date" json:"targetDate"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

func ValidGoalType(t string) bool {
	for _, v := range GoalTypes {
		if v == t {
			return true
		}
	}
	return false
}
