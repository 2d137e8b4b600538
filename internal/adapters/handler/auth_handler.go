package handler

import (
	"net/http"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/middleware"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/respond"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	errors      *respond.Errors
}

func NewAuthHandler(auth ports.AuthService, errs *respond.Errors) *AuthHandler {
	return &AuthHandler{authService: auth, errors: errs}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// Me echoes the resolved identity without its credential.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		h.errors.Write(w, r, domain.ErrMissingToken)
		return
	}
	respond.JSON(w, http.StatusOK, session.Identity.Public())
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		h.errors.Write(w, r, domain.ErrMissingToken)
		return
	}
	if err := h.authService.Logout(r.Context(), *session); err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Message{Message: "Logged out successfully"})
}
