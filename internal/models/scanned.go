package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation is the sentinel for pre-network validation failures.
// It is checked before any store mutation is attempted.
var ErrValidation = errors.New("validation error")

// ScannedApartment is a provisional candidate sourced from an external
// scrape. It carries no ratings, status, or notes. It is never edited in
// place, only promoted into a canonical Apartment or deleted.
type ScannedApartment struct {
	CreatedAt     time.Time   `json:"createdAt"`
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   *string     `json:"description,omitempty"`
	Location      *string     `json:"location,omitempty"`
	ContactName   *string     `json:"contactName,omitempty"`
	ContactPhone  *string     `json:"contactPhone,omitempty"`
	ApartmentLink *string     `json:"apartmentLink,omitempty"`
	Price         *float64    `json:"price,omitempty"`
	Arnona        *float64    `json:"arnona,omitempty"`
	SquareMeters  *float64    `json:"squareMeters,omitempty"`
	Floor         *int        `json:"floor,omitempty"`
	ImageURL      string      `json:"imageUrl"`
	PetsAllowed   PetsAllowed `json:"petsAllowed"`
	HasShelter    *bool       `json:"hasShelter,omitempty"`
	EntryDate     *time.Time  `json:"entryDate,omitempty"`
	CoupleID      *string     `json:"coupleId,omitempty"`
}

// Validate checks the shape every record coming out of the scan pipeline
// must satisfy. Unknown fields are defaulted, never left absent.
func (s *ScannedApartment) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !s.PetsAllowed.Valid() {
		return fmt.Errorf("%w: unknown pets_allowed %q", ErrValidation, s.PetsAllowed)
	}
	return nil
}

// ApplyDefaults fills the fields a scraper is allowed to leave out.
func (s *ScannedApartment) ApplyDefaults() {
	if s.PetsAllowed == "" {
		s.PetsAllowed = PetsUnknown
	}
	if s.ImageURL == "" {
		s.ImageURL = PlaceholderImageURL
	}
}

// Promote maps a scanned record 1:1 into a new canonical Apartment with
// fresh defaults: status not_spoke, both ratings zero, nothing talked.
// The fb_url is synthesized from the scan link, or a timestamp-based
// placeholder when the scrape carried no link.
func (s *ScannedApartment) Promote(now time.Time) Apartment {
	fbURL := fmt.Sprintf("scanned-%d", now.UnixMilli())
	if s.ApartmentLink != nil && *s.ApartmentLink != "" {
		fbURL = *s.ApartmentLink
	}

	apt := Apartment{
		Title:         s.Title,
		Description:   s.Description,
		Location:      s.Location,
		ContactName:   s.ContactName,
		ContactPhone:  s.ContactPhone,
		ApartmentLink: s.ApartmentLink,
		FbURL:         &fbURL,
		Price:         s.Price,
		Arnona:        s.Arnona,
		SquareMeters:  s.SquareMeters,
		Floor:         s.Floor,
		ImageURL:      s.ImageURL,
		Status:        StatusNotSpoke,
		PetsAllowed:   s.PetsAllowed,
		HasShelter:    s.HasShelter,
		EntryDate:     s.EntryDate,
		MorRating:     0,
		GabiRating:    0,
		CoupleID:      s.CoupleID,
	}
	apt.ApplyDefaults()
	return apt
}
