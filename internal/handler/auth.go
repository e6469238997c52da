package handler

import (
	"net/http"

	"github.com/fittrack/fittrack/internal/model"
	"github.com/fittrack/fittrack/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	h.authService.SetJWTCookie(w, token)
	respondJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	h.authService.SetJWTCookie(w, token)
	respondJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
