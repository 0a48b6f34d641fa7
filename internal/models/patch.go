package models

import (
	"fmt"
	"time"
)

// ApartmentPatch is a partial update: only non-nil fields are written.
// Concurrent patches to different fields of the same apartment are safe;
// patches to the same field are last-write-wins.
type ApartmentPatch struct {
	Title              *string      `json:"title,omitempty"`
	Description        *string      `json:"description,omitempty"`
	Location           *string      `json:"location,omitempty"`
	ContactName        *string      `json:"contactName,omitempty"`
	ContactPhone       *string      `json:"contactPhone,omitempty"`
	ApartmentLink      *string      `json:"apartmentLink,omitempty"`
	FbURL              *string      `json:"fbUrl,omitempty"`
	Price              *float64     `json:"price,omitempty"`
	Arnona             *float64     `json:"arnona,omitempty"`
	SquareMeters       *float64     `json:"squareMeters,omitempty"`
	Floor              *int         `json:"floor,omitempty"`
	ImageURL           *string      `json:"imageUrl,omitempty"`
	Status             *Status      `json:"status,omitempty"`
	PetsAllowed        *PetsAllowed `json:"petsAllowed,omitempty"`
	HasShelter         *bool        `json:"hasShelter,omitempty"`
	EntryDate          *time.Time   `json:"entryDate,omitempty"`
	MorRating          *int         `json:"morRating,omitempty"`
	GabiRating         *int         `json:"gabiRating,omitempty"`
	SpokeWithMor       *bool        `json:"spokeWithMor,omitempty"`
	SpokeWithGabi      *bool        `json:"spokeWithGabi,omitempty"`
	Note               *string      `json:"note,omitempty"`
	ScheduledVisitText *string      `json:"scheduledVisitText,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p *ApartmentPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Location == nil &&
		p.ContactName == nil && p.ContactPhone == nil && p.ApartmentLink == nil &&
		p.FbURL == nil && p.Price == nil && p.Arnona == nil &&
		p.SquareMeters == nil && p.Floor == nil && p.ImageURL == nil &&
		p.Status == nil && p.PetsAllowed == nil && p.HasShelter == nil &&
		p.EntryDate == nil && p.MorRating == nil && p.GabiRating == nil &&
		p.SpokeWithMor == nil && p.SpokeWithGabi == nil && p.Note == nil &&
		p.ScheduledVisitText == nil
}

// Validate rejects patch values that would break store invariants.
// The talked flags are deliberately not coupled to status here: setting
// spoke_with_mor never implies status=spoke.
func (p *ApartmentPatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return fmt.Errorf("%w: title cannot be emptied", ErrValidation)
	}
	if p.MorRating != nil && (*p.MorRating < MinRating || *p.MorRating > MaxRating) {
		return fmt.Errorf("%w: mor_rating must be between %d and %d, got %d",
			ErrValidation, MinRating, MaxRating, *p.MorRating)
	}
	if p.GabiRating != nil && (*p.GabiRating < MinRating || *p.GabiRating > MaxRating) {
		return fmt.Errorf("%w: gabi_rating must be between %d and %d, got %d",
			ErrValidation, MinRating, MaxRating, *p.GabiRating)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, *p.Status)
	}
	if p.PetsAllowed != nil && !p.PetsAllowed.Valid() {
		return fmt.Errorf("%w: unknown pets_allowed %q", ErrValidation, *p.PetsAllowed)
	}
	return nil
}
