package handler

import (
	"net/http"
	"time"

	"github.com/fittrack/fittrack/internal/ctxkeys"
	"github.com/fittrack/fittrack/internal/service"
	"github.com/fittrack/fittrack/internal/validation"
)

type ProgressHandler struct {
	progressService *service.ProgressService
}

func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

type progressCreateRequest struct {
	GoalID string  `json:"goalId"`
	Value  float64 `json:"value"`
	Date   string  `json:"date"`
	Notes  string  `json:"notes"`
}

type progressUpdateRequest struct {
	GoalID *string  `json:"goalId"`
	Value  *float64 `json:"value"`
	Date   *string  `json:"date"`
	Notes  *string  `json:"notes"`
}

func (h *ProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goalID := r.URL.Query().Get("goalId")
	if goalID == "" {
		respondError(w, http.StatusBadRequest, "goalId is required")
		return
	}

	from, err := parseOptionalDate("startDate", r.URL.Query().Get("startDate"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	to, err := parseOptionalDate("endDate", r.URL.Query().Get("endDate"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	entries, err := h.progressService.Entries(user.ID, goalID, from, to)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

func (h *ProgressHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req progressCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.GoalID == "" {
		respondServiceError(w, r, validation.Fieldf("goalId", "goalId is required"))
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	progress, err := h.progressService.Create(user.ID, service.CreateProgressInput{
		GoalID: req.GoalID,
		Value:  req.Value,
		Date:   date,
		Notes:  req.Notes,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, progress)
}

func (h *ProgressHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req progressUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// An entry stays with the goal it was recorded against
	if req.GoalID != nil {
		respondServiceError(w, r, validation.Fieldf("goalId", "goalId cannot be changed"))
		return
	}

	in := service.UpdateProgressInput{
		Value: req.Value,
		Notes: req.Notes,
	}
	if req.Date != nil {
		date, err := parseDate("date", *req.Date)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		in.Date = &date
	}

	progress, err := h.progressService.Update(user.ID, r.PathValue("id"), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, progress)
}

func (h *ProgressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.progressService.Delete(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "progress deleted"})
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
