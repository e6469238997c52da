package handler

import (
	"net/http"
	"time"

	"github.com/fittrack/fittrack/internal/ctxkeys"
	"github.com/fittrack/fittrack/internal/service"
	"github.com/fittrack/fittrack/internal/validation"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

type goalCreateRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	TargetValue float64 `json:"targetValue"`
	Unit        string  `json:"unit"`
	GoalType    string  `json:"goalType"`
	StartDate   string  `json:"startDate"`
	TargetDate  string  `json:"targetDate"`
}

type goalUpdateRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	TargetValue  *float64 `json:"targetValue"`
	Unit         *string  `json:"unit"`
	GoalType     *string  `json:"goalType"`
	StartDate    *string  `json:"startDate"`
	TargetDate   *string  `json:"targetDate"`
	CurrentValue *float64 `json:"currentValue"`
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.Goals(user.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goal, err := h.goalService.ByID(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req goalCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	startDate, err := parseDate("startDate", req.StartDate)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	targetDate, err := parseDate("targetDate", req.TargetDate)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	goal, err := h.goalService.Create(user.ID, service.CreateGoalInput{
		Title:       req.Title,
		Description: req.Description,
		TargetValue: req.TargetValue,
		Unit:        req.Unit,
		GoalType:    req.GoalType,
		StartDate:   startDate,
		TargetDate:  targetDate,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req goalUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// current_value is owned by the progress recompute path
	if req.CurrentValue != nil {
		respondServiceError(w, r, validation.Fieldf("currentValue", "current value is system-maintained and cannot be set"))
		return
	}

	in := service.UpdateGoalInput{
		Title:       req.Title,
		Description: req.Description,
		TargetValue: req.TargetValue,
		Unit:        req.Unit,
		GoalType:    req.GoalType,
	}

	if req.StartDate != nil {
		startDate, err := parseDate("startDate", *req.StartDate)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		in.StartDate = &startDate
	}
	if req.TargetDate != nil {
		targetDate, err := parseDate("targetDate", *req.TargetDate)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		in.TargetDate = &targetDate
	}

	goal, err := h.goalService.Update(user.ID, r.PathValue("id"), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.goalService.Delete(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "goal deleted"})
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, validation.Fieldf(field, "%s is required", field)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, validation.Fieldf(field, "%s must be an RFC 3339 timestamp", field)
	}
	return t, nil
}
