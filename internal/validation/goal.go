package validation

import (
	"strings"

	"github.com/fittrack/fittrack/internal/model"
)

const (
	TitleMaxLen       = 100
	DescriptionMaxLen = 500
	UnitMaxLen        = 50
)

func ValidateGoalTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return Fieldf("title", "title is required")
	}
	if len(title) > TitleMaxLen {
		return Fieldf("title", "title is too long (max %d characters)", TitleMaxLen)
	}
	return nil
}

func ValidateGoalDescription(description string) error {
	if len(description) > DescriptionMaxLen {
		return Fieldf("description", "description is too long (max %d characters)", DescriptionMaxLen)
	}
	return nil
}

func ValidateTargetValue(value float64) error {
	if value <= 0 {
		return Fieldf("targetValue", "target value must be positive")
	}
	return nil
}

func ValidateUnit(unit string) error {
	if strings.TrimSpace(unit) == "" {
		return Fieldf("unit", "unit is required")
	}
	if len(unit) > UnitMaxLen {
		return Fieldf("unit", "unit is too long (max %d characters)", UnitMaxLen)
	}
	return nil
}

func ValidateGoalType(goalType string) error {
	if !model.ValidGoalType(goalType) {
		return Fieldf("goalType", "goal type must be one of: %s", strings.Join(model.GoalTypes, ", "))
	}
	return nil
}
