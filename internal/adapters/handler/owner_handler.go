package handler

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/metrics"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/respond"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

const multipartMemory = 8 << 20

// OwnerHandler serves the approved-Owner routes.
type OwnerHandler struct {
	listings       ports.ListingService
	bookings       ports.BookingService
	errors         *respond.Errors
	metrics        *metrics.Metrics
	maxUploadBytes int64
	maxImages      int
}

func NewOwnerHandler(
	listings ports.ListingService,
	bookings ports.BookingService,
	errs *respond.Errors,
	m *metrics.Metrics,
	maxUploadBytes int64,
	maxImages int,
) *OwnerHandler {
	return &OwnerHandler{
		listings:       listings,
		bookings:       bookings,
		errors:         errs,
		metrics:        m,
		maxUploadBytes: maxUploadBytes,
		maxImages:      maxImages,
	}
}

type ListingRequest struct {
	PropertyType string   `json:"propertyType"`
	AdType       string   `json:"adType"`
	Address      string   `json:"address"`
	Description  string   `json:"description"`
	RentAmount   *float64 `json:"rentAmount"`
}

func (req ListingRequest) draft() domain.ListingDraft {
	return domain.ListingDraft{
		PropertyType: req.PropertyType,
		AdType:       req.AdType,
		Address:      req.Address,
		Description:  req.Description,
		RentAmount:   req.RentAmount,
	}
}

// CreateListing accepts either a JSON body or a multipart form whose
// files are sent under "images" (or "image").
func (h *OwnerHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	owner, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var (
		draft   domain.ListingDraft
		uploads []ports.ImageUpload
	)
	if mediaType == "multipart/form-data" {
		var files []multipart.File
		// r is a copy made by the auth middleware, so the server never
		// removes the temp files backing this form.
		defer func() {
			for _, f := range files {
				f.Close()
			}
			if r.MultipartForm != nil {
				r.MultipartForm.RemoveAll()
			}
		}()
		draft, uploads, files, err = h.readMultipart(w, r)
	} else {
		var req ListingRequest
		err = decodeJSON(w, r, &req)
		draft = req.draft()
	}
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	listing, err := h.listings.Create(r.Context(), owner, draft, uploads)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, listing)
}

func (h *OwnerHandler) readMultipart(w http.ResponseWriter, r *http.Request) (domain.ListingDraft, []ports.ImageUpload, []multipart.File, error) {
	limit := h.uploadLimit()
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.ListingDraft{}, nil, nil, domain.NewError(domain.KindInvalidInput, "upload exceeds %d bytes", limit)
		}
		return domain.ListingDraft{}, nil, nil, domain.WrapError(domain.KindInvalidInput, err, "invalid multipart form")
	}

	form := r.MultipartForm
	value := func(key string) string {
		if vs := form.Value[key]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}
	rent, err := parseOptionalFloat("rentAmount", value("rentAmount"))
	if err != nil {
		return domain.ListingDraft{}, nil, nil, err
	}
	draft := domain.ListingDraft{
		PropertyType: value("propertyType"),
		AdType:       value("adType"),
		Address:      value("address"),
		Description:  value("description"),
		RentAmount:   rent,
	}

	headers := append(append([]*multipart.FileHeader{}, form.File["images"]...), form.File["image"]...)
	uploads := make([]ports.ImageUpload, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return draft, nil, files, domain.WrapError(domain.KindInvalidInput, err, "file %q could not be read", fh.Filename)
		}
		files = append(files, f)
		uploads = append(uploads, ports.ImageUpload{Filename: fh.Filename, Size: fh.Size, Content: f})
	}
	return draft, uploads, files, nil
}

// uploadLimit leaves room for the largest accepted image set plus the
// text fields.
func (h *OwnerHandler) uploadLimit() int64 {
	return h.maxUploadBytes*int64(h.maxImages) + maxJSONBody
}

func (h *OwnerHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	owner, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	listings, err := h.listings.ListMine(r.Context(), owner)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, listings)
}

func (h *OwnerHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	owner, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	listing, err := h.listings.GetMine(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, listing)
}

func (h *OwnerHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	owner, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	var patch domain.ListingPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.errors.Write(w, r, err)
		return
	}
	listing, err := h.listings.Update(r.Context(), owner, r.PathValue("id"), patch)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, listing)
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable"`
}

func (h *OwnerHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	owner, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	var req AvailabilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}
	if req.IsAvailable == nil {
		h.errors.Write(w, r, domain.NewError(domain.KindInvalidInput, "isAvailable is required"))
		return
	}
	listing, err := h.listings.SetAvailability(r.Context(), owner, r.PathValue("id"), *req.IsAvailable)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, listing)
}

func (h *OwnerHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	owner, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	if err := h.listings.Delete(r.Context(), owner, r.PathValue("id")); err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Message{Message: "Listing removed"})
}

func (h *OwnerHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	owner, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	views, err := h.bookings.ListForOwner(r.Context(), owner)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, views)
}

type StatusRequest struct {
	Status string `json:"status"`
}

func (h *OwnerHandler) TransitionBooking(w http.ResponseWriter, r *http.Request) {
	owner, err := actor(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	var req StatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}
	result, err := h.bookings.Transition(r.Context(), owner, r.PathValue("id"), req.Status)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	h.metrics.ObserveTransition(result.From, result.Booking.Status)
	respond.JSON(w, http.StatusOK, result.Booking)
}
