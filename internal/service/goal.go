package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fittrack/fittrack/internal/model"
	"github.com/fittrack/fittrack/internal/repository"
	"github.com/fittrack/fittrack/internal/validation"
)

type GoalService struct {
	repo repository.GoalRepository
}

func NewGoalService(repo repository.GoalRepository) *GoalService {
	return &GoalService{repo: repo}
}

type CreateGoalInput struct {
	Title       string
	Description string
	TargetValue float64
	Unit        string
	GoalType    string
	StartDate   time.Time
	TargetDate  time.Time
}

// UpdateGoalInput carries a partial update; nil fields are left untouched.
// There is deliberately no CurrentValue field: that column belongs to the
// progress service.
type UpdateGoalInput struct {
	Title       *string
	Description *string
	TargetValue *float64
	Unit        *string
	GoalType    *string
	StartDate   *time.Time
	TargetDate  *time.Time
}

func (s *GoalService) Goals(userID string) ([]*model.Goal, error) {
	return s.repo.Goals(userID)
}

func (s *GoalService) ByID(userID, goalID string) (*model.Goal, error) {
	return s.repo.ByID(userID, goalID)
}

func (s *GoalService) Create(userID string, in CreateGoalInput) (*model.Goal, error) {
	if err := validation.ValidateGoalTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validation.ValidateGoalDescription(in.Description); err != nil {
		return nil, err
	}
	if err := validation.ValidateTargetValue(in.TargetValue); err != nil {
		return nil, err
	}
	if err := validation.ValidateUnit(in.Unit); err != nil {
		return nil, err
	}
	if err := validation.ValidateGoalType(in.GoalType); err != nil {
		return nil, err
	}

	now := time.Now()
	goal := &model.Goal{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        in.Title,
		Description:  in.Description,
		TargetValue:  in.TargetValue,
		CurrentValue: 0,
		Unit:         in.Unit,
		GoalType:     in.GoalType,
		StartDate:    in.StartDate,
		TargetDate:   in.TargetDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.repo.Create(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

func (s *GoalService) Update(userID, goalID string, in UpdateGoalInput) (*model.Goal, error) {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if err := validation.ValidateGoalTitle(*in.Title); err != nil {
			return nil, err
		}
		goal.Title = *in.Title
	}
	if in.Description != nil {
		if err := validation.ValidateGoalDescription(*in.Description); err != nil {
			return nil, err
		}
		goal.Description = *in.Description
	}
	if in.TargetValue != nil {
		if err := validation.ValidateTargetValue(*in.TargetValue); err != nil {
			return nil, err
		}
		goal.TargetValue = *in.TargetValue
	}
	if in.Unit != nil {
		if err := validation.ValidateUnit(*in.Unit); err != nil {
			return nil, err
		}
		goal.Unit = *in.Unit
	}
	if in.GoalType != nil {
		if err := validation.ValidateGoalType(*in.GoalType); err != nil {
			return nil, err
		}
		goal.GoalType = *in.GoalType
	}
	if in.StartDate != nil {
		goal.StartDate = *in.StartDate
	}
	if in.TargetDate != nil {
		goal.TargetDate = *in.TargetDate
	}

	goal.UpdatedAt = time.Now()
	err = s.repo.Update(goal)
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// Delete removes the goal and, through the cascading foreign key, every
// progress entry recorded against it.
func (s *GoalService) Delete(userID, goalID string) error {
	return s.repo.Delete(userID, goalID)
}
