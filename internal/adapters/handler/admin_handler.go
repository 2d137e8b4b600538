package handler

import (
	"net/http"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/respond"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

type AdminHandler struct {
	admin  ports.AdminService
	errors *respond.Errors
}

func NewAdminHandler(admin ports.AdminService, errs *respond.Errors) *AdminHandler {
	return &AdminHandler{admin: admin, errors: errs}
}

func (h *AdminHandler) ListIdentities(w http.ResponseWriter, r *http.Request) {
	admin, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	identities, err := h.admin.ListIdentities(r.Context(), admin)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, identities)
}

func (h *AdminHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	admin, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	listings, err := h.admin.ListListings(r.Context(), admin)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, listings)
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	admin, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	bookings, err := h.admin.ListBookings(r.Context(), admin)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, bookings)
}

func (h *AdminHandler) BookingHistory(w http.ResponseWriter, r *http.Request) {
	admin, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	history, err := h.admin.BookingHistory(r.Context(), admin, r.PathValue("id"))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, history)
}

func (h *AdminHandler) ApproveOwner(w http.ResponseWriter, r *http.Request) {
	admin, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	identity, err := h.admin.ApproveOwner(r.Context(), admin, r.PathValue("id"))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, identity)
}

func (h *AdminHandler) DeleteIdentity(w http.ResponseWriter, r *http.Request) {
	admin, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	if err := h.admin.DeleteIdentity(r.Context(), admin, r.PathValue("id")); err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Message{Message: "Identity removed"})
}
