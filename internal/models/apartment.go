package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status tracks where the couple stands with the landlord for a listing.
type Status string

const (
	StatusSpoke    Status = "spoke"
	StatusNotSpoke Status = "not_spoke"
	StatusNoAnswer Status = "no_answer"
)

// Valid reports whether s is one of the closed set of status values.
// Anything else is a data-entry error, not a new state.
func (s Status) Valid() bool {
	switch s {
	case StatusSpoke, StatusNotSpoke, StatusNoAnswer:
		return true
	}
	return false
}

// DisplayColor returns the UI color token for a status. Every view that
// renders status (list rows, map pins) must use this single mapping.
func (s Status) DisplayColor() string {
	switch s {
	case StatusSpoke:
		return "success"
	case StatusNoAnswer:
		return "danger"
	default:
		return "warning"
	}
}

// PetsAllowed is the landlord's pet policy as far as anyone knows.
type PetsAllowed string

const (
	PetsYes     PetsAllowed = "yes"
	PetsNo      PetsAllowed = "no"
	PetsUnknown PetsAllowed = "unknown"
)

// Valid reports whether p is one of the closed set of pet-policy values.
func (p PetsAllowed) Valid() bool {
	switch p {
	case PetsYes, PetsNo, PetsUnknown:
		return true
	}
	return false
}

// Rating bounds for each partner's independent score.
const (
	MinRating = 0
	MaxRating = 5
)

// PlaceholderImageURL is used when a listing has no uploaded image.
const PlaceholderImageURL = "https://placehold.co/600x400?text=No+Photo"

// Apartment is the canonical listing record owned by the couple account.
// All nullable fields use pointers to distinguish between zero values and NULL.
type Apartment struct {
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	Description        *string     `json:"description,omitempty"`
	Location           *string     `json:"location,omitempty"`
	ContactName        *string     `json:"contactName,omitempty"`
	ContactPhone       *string     `json:"contactPhone,omitempty"`
	ApartmentLink      *string     `json:"apartmentLink,omitempty"`
	FbURL              *string     `json:"fbUrl,omitempty"`
	Price              *float64    `json:"price,omitempty"`
	Arnona             *float64    `json:"arnona,omitempty"`
	SquareMeters       *float64    `json:"squareMeters,omitempty"`
	Floor              *int        `json:"floor,omitempty"`
	ImageURL           string      `json:"imageUrl"`
	Status             Status      `json:"status"`
	PetsAllowed        PetsAllowed `json:"petsAllowed"`
	HasShelter         *bool       `json:"hasShelter,omitempty"`
	EntryDate          *time.Time  `json:"entryDate,omitempty"`
	MorRating          int         `json:"morRating"`
	GabiRating         int         `json:"gabiRating"`
	SpokeWithMor       bool        `json:"spokeWithMor"`
	SpokeWithGabi      bool        `json:"spokeWithGabi"`
	Note               *string     `json:"note,omitempty"`
	ScheduledVisitText *string     `json:"scheduledVisitText,omitempty"`
	CoupleID           *string     `json:"coupleId,omitempty"`
}

// MarshalJSON adds the derived statusColor field so clients render the
// status color from one server-side mapping instead of duplicating it.
func (a Apartment) MarshalJSON() ([]byte, error) {
	type alias Apartment
	return json.Marshal(struct {
		alias
		StatusColor string `json:"statusColor"`
	}{
		alias:       alias(a),
		StatusColor: a.Status.DisplayColor(),
	})
}

// CombinedRating is the canonical list sort key: the sum of both partners'
// independent scores. No normalization, no cap beyond the per-partner 0..5.
func (a *Apartment) CombinedRating() int {
	return a.MorRating + a.GabiRating
}

// Validate checks the invariants that must hold before an apartment is
// written to the store. Ratings out of range and unknown enum values are
// rejected here rather than trusted to the database.
func (a *Apartment) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if a.MorRating < MinRating || a.MorRating > MaxRating {
		return fmt.Errorf("%w: mor_rating must be between %d and %d, got %d",
			ErrValidation, MinRating, MaxRating, a.MorRating)
	}
	if a.GabiRating < MinRating || a.GabiRating > MaxRating {
		return fmt.Errorf("%w: gabi_rating must be between %d and %d, got %d",
			ErrValidation, MinRating, MaxRating, a.GabiRating)
	}
	if !a.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, a.Status)
	}
	if !a.PetsAllowed.Valid() {
		return fmt.Errorf("%w: unknown pets_allowed %q", ErrValidation, a.PetsAllowed)
	}
	if a.Price != nil && *a.Price < 0 {
		return fmt.Errorf("%w: price must be non-negative", ErrValidation)
	}
	if a.Arnona != nil && *a.Arnona < 0 {
		return fmt.Errorf("%w: arnona must be non-negative", ErrValidation)
	}
	if a.SquareMeters != nil && *a.SquareMeters < 0 {
		return fmt.Errorf("%w: square_meters must be non-negative", ErrValidation)
	}
	if a.Floor != nil && *a.Floor < 0 {
		return fmt.Errorf("%w: floor must be non-negative", ErrValidation)
	}
	return nil
}

// ValidateEntryDate enforces the today-or-later rule for user-supplied
// entry dates. A nil date is always acceptable.
func (a *Apartment) ValidateEntryDate(now time.Time) error {
	if a.EntryDate == nil {
		return nil
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if a.EntryDate.Before(today) {
		return fmt.Errorf("%w: entry_date must be today or later", ErrValidation)
	}
	return nil
}

// ApplyDefaults fills server-side defaults for fields the client may omit.
func (a *Apartment) ApplyDefaults() {
	if a.Status == "" {
		a.Status = StatusNotSpoke
	}
	if a.PetsAllowed == "" {
		a.PetsAllowed = PetsUnknown
	}
	if a.ImageURL == "" {
		a.ImageURL = PlaceholderImageURL
	}
}
