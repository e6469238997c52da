package handler

import (
	"net/http"

	"github.com/fittrack/fittrack/internal/ctxkeys"
	"github.com/fittrack/fittrack/internal/service"
	"github.com/fittrack/fittrack/internal/validation"
)

type AccountHandler struct {
	userService *service.UserService
}

func NewAccountHandler(userService *service.UserService) *AccountHandler {
	return &AccountHandler{userService: userService}
}

func (h *AccountHandler) Account(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	respondJSON(w, http.StatusOK, user)
}

func (h *AccountHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := r.ParseMultipartForm(validation.AvatarMaxSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		respondError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	updated, err := h.userService.UpdateAvatar(user.ID, file, header)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *AccountHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.userService.DeleteAvatar(user.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "avatar removed"})
}
