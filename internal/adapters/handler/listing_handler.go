package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/respond"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

const maxPageSize = 100

// ListingHandler serves the public catalogue and the Renter booking
// routes that hang off it.
type ListingHandler struct {
	listings ports.ListingService
	bookings ports.BookingService
	errors   *respond.Errors
}

func NewListingHandler(listings ports.ListingService, bookings ports.BookingService, errs *respond.Errors) *ListingHandler {
	return &ListingHandler{listings: listings, bookings: bookings, errors: errs}
}

func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := listingFilter(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	views, err := h.listings.ListAvailable(r.Context(), filter)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, views)
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.listings.GetAvailable(r.Context(), r.PathValue("id"))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, view)
}

type BookingRequest struct {
	RenterDetails domain.RenterDetails `json:"renterDetails"`
}

func (h *ListingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	renter, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	var req BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}
	booking, err := h.bookings.Create(r.Context(), renter, r.PathValue("id"), req.RenterDetails)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, booking)
}

func (h *ListingHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	renter, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	views, err := h.bookings.ListForRenter(r.Context(), renter)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, views)
}

// Image streams a stored listing image.
func (h *ListingHandler) Image(w http.ResponseWriter, r *http.Request) {
	blob, err := h.listings.OpenImage(r.Context(), r.PathValue("name"))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	defer blob.Content.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	if blob.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, blob.Content)
}

func listingFilter(r *http.Request) (domain.ListingFilter, error) {
	q := r.URL.Query()
	filter := domain.ListingFilter{PropertyType: q.Get("propertyType")}

	if raw := q.Get("adType"); raw != "" {
		adType, err := domain.ParseAdType(raw)
		if err != nil {
			return filter, err
		}
		filter.AdType = adType
	}

	var err error
	if filter.MinRent, err = parseOptionalFloat("minRent", q.Get("minRent")); err != nil {
		return filter, err
	}
	if filter.MaxRent, err = parseOptionalFloat("maxRent", q.Get("maxRent")); err != nil {
		return filter, err
	}
	if filter.Limit, err = parseOptionalInt("limit", q.Get("limit"), maxPageSize); err != nil {
		return filter, err
	}
	if filter.Offset, err = parseOptionalInt("offset", q.Get("offset"), 0); err != nil {
		return filter, err
	}
	return filter, nil
}
