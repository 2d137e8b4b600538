package domain

import (
	"math"
	"strings"
	"time"
)

type AdType string

const (
	AdTypeRent AdType = "Rent"
	AdTypeSale AdType = "Sale"
)

func ParseAdType(s string) (AdType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rent":
		return AdTypeRent, nil
	case "sale":
		return AdTypeSale, nil
	}
	return "", NewError(KindInvalidInput, "ad type must be Rent or Sale, got %q", s)
}

type Listing struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	PropertyType string    `json:"propertyType"`
	AdType       AdType    `json:"adType"`
	Address      string    `json:"address"`
	Description  string    `json:"description"`
	Images       []string  `json:"images"`
	RentAmount   float64   `json:"rentAmount"`
	IsAvailable  bool      `json:"isAvailable"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListingDraft carries the caller-supplied fields of a new listing.
type ListingDraft struct {
	PropertyType string
	AdType       string
	Address      string
	Description  string
	RentAmount   *float64
}

// NewListing validates draft and builds an available listing owned by
// ownerID. Images are attached in the order given.
func NewListing(id, ownerID string, draft ListingDraft, images []string, now time.Time) (Listing, error) {
	var missing []string
	if strings.TrimSpace(draft.PropertyType) == "" {
		missing = append(missing, "propertyType")
	}
	if strings.TrimSpace(draft.AdType) == "" {
		missing = append(missing, "adType")
	}
	if strings.TrimSpace(draft.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(draft.Description) == "" {
		missing = append(missing, "description")
	}
	if draft.RentAmount == nil {
		missing = append(missing, "rentAmount")
	}
	if len(missing) > 0 {
		return Listing{}, NewError(KindInvalidInput, "missing required listing fields: %s", strings.Join(missing, ", "))
	}
	adType, err := ParseAdType(draft.AdType)
	if err != nil {
		return Listing{}, err
	}
	if err := validateRent(*draft.RentAmount); err != nil {
		return Listing{}, err
	}
	if images == nil {
		images = []string{}
	}
	return Listing{
		ID:           id,
		OwnerID:      ownerID,
		PropertyType: strings.TrimSpace(draft.PropertyType),
		AdType:       adType,
		Address:      strings.TrimSpace(draft.Address),
		Description:  strings.TrimSpace(draft.Description),
		Images:       images,
		RentAmount:   *draft.RentAmount,
		IsAvailable:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ListingPatch is a partial update. Nil fields are left untouched.
// OwnerID and Images cannot be patched.
type ListingPatch struct {
	PropertyType *string  `json:"propertyType,omitempty"`
	AdType       *string  `json:"adType,omitempty"`
	Address      *string  `json:"address,omitempty"`
	Description  *string  `json:"description,omitempty"`
	RentAmount   *float64 `json:"rentAmount,omitempty"`
	IsAvailable  *bool    `json:"isAvailable,omitempty"`
}

func (p ListingPatch) IsEmpty() bool {
	return p.PropertyType == nil && p.AdType == nil && p.Address == nil &&
		p.Description == nil && p.RentAmount == nil && p.IsAvailable == nil
}

// Apply re-validates every supplied field and writes it onto l. On error
// l is left unchanged.
func (l *Listing) Apply(p ListingPatch, now time.Time) error {
	next := *l
	if p.PropertyType != nil {
		v, err := requireText("propertyType", *p.PropertyType)
		if err != nil {
			return err
		}
		next.PropertyType = v
	}
	if p.AdType != nil {
		adType, err := ParseAdType(*p.AdType)
		if err != nil {
			return err
		}
		next.AdType = adType
	}
	if p.Address != nil {
		v, err := requireText("address", *p.Address)
		if err != nil {
			return err
		}
		next.Address = v
	}
	if p.Description != nil {
		v, err := requireText("description", *p.Description)
		if err != nil {
			return err
		}
		next.Description = v
	}
	if p.RentAmount != nil {
		if err := validateRent(*p.RentAmount); err != nil {
			return err
		}
		next.RentAmount = *p.RentAmount
	}
	if p.IsAvailable != nil {
		next.IsAvailable = *p.IsAvailable
	}
	next.UpdatedAt = now
	*l = next
	return nil
}

func requireText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", NewError(KindInvalidInput, "%s cannot be empty", field)
	}
	return v, nil
}

func validateRent(amount float64) error {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return NewError(KindInvalidInput, "rentAmount must be a non-negative number")
	}
	return nil
}

// ListingView is a listing as shown to anyone but its owner: the owner
// is reduced to name and email.
type ListingView struct {
	Listing
	Owner *PartySummary `json:"owner,omitempty"`
}

// ListingSummary is the listing excerpt embedded in booking views.
type ListingSummary struct {
	ID           string   `json:"id"`
	Address      string   `json:"address"`
	PropertyType string   `json:"propertyType"`
	RentAmount   float64  `json:"rentAmount"`
	Images       []string `json:"images"`
}

func (l Listing) Summary() ListingSummary {
	return ListingSummary{
		ID:           l.ID,
		Address:      l.Address,
		PropertyType: l.PropertyType,
		RentAmount:   l.RentAmount,
		Images:       l.Images,
	}
}

// ListingFilter narrows the public listing search.
type ListingFilter struct {
	PropertyType string
	AdType       AdType
	MinRent      *float64
	MaxRent      *float64
	Limit        int
	Offset       int
}
