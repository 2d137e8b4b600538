package handler

import (
	"net/http"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/respond"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

type RegistrationHandler struct {
	registrationService ports.RegistrationService
	errors              *respond.Errors
}

func NewRegistrationHandler(registration ports.RegistrationService, errs *respond.Errors) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registration, errors: errs}
}

// RegistrationRequest accepts the role under "role" or, for older
// clients, "type".
type RegistrationRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Type     string `json:"type,omitempty"`
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}
	role := req.Role
	if role == "" {
		role = req.Type
	}

	result, err := h.registrationService.Register(r.Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, result)
}
