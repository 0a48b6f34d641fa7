package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{"spoke", StatusSpoke, true},
		{"not_spoke", StatusNotSpoke, true},
		{"no_answer", StatusNoAnswer, true},
		{"empty", Status(""), false},
		{"garbage", Status("maybe"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Valid())
		})
	}
}

func TestStatus_DisplayColor(t *testing.T) {
	// The same mapping feeds both list rows and map pins.
	assert.Equal(t, "success", StatusSpoke.DisplayColor())
	assert.Equal(t, "warning", StatusNotSpoke.DisplayColor())
	assert.Equal(t, "danger", StatusNoAnswer.DisplayColor())
}

func TestApartment_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Apartment{ID: "a1", Title: "Dizengoff 3BR", Status: StatusSpoke})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "success", decoded["statusColor"])
	assert.Equal(t, "spoke", decoded["status"])
	assert.Equal(t, "Dizengoff 3BR", decoded["title"])
}

func TestApartment_CombinedRating(t *testing.T) {
	apt := Apartment{MorRating: 4, GabiRating: 5}
	assert.Equal(t, 9, apt.CombinedRating())

	apt = Apartment{}
	assert.Equal(t, 0, apt.CombinedRating())
}

func TestApartment_Validate(t *testing.T) {
	valid := func() Apartment {
		return Apartment{
			Title:       "3-room, Givatayim",
			Status:      StatusNotSpoke,
			PetsAllowed: PetsUnknown,
			MorRating:   4,
			GabiRating:  5,
		}
	}

	t.Run("valid apartment", func(t *testing.T) {
		apt := valid()
		require.NoError(t, apt.Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		apt := valid()
		apt.Title = "  "
		err := apt.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "title")
	})

	t.Run("rating above max", func(t *testing.T) {
		apt := valid()
		apt.MorRating = 6
		assert.ErrorIs(t, apt.Validate(), ErrValidation)
	})

	t.Run("rating below min", func(t *testing.T) {
		apt := valid()
		apt.GabiRating = -1
		assert.ErrorIs(t, apt.Validate(), ErrValidation)
	})

	t.Run("unknown status", func(t *testing.T) {
		apt := valid()
		apt.Status = "shrug"
		assert.ErrorIs(t, apt.Validate(), ErrValidation)
	})

	t.Run("unknown pets value", func(t *testing.T) {
		apt := valid()
		apt.PetsAllowed = "dogs only"
		assert.ErrorIs(t, apt.Validate(), ErrValidation)
	})

	t.Run("negative price", func(t *testing.T) {
		apt := valid()
		price := -100.0
		apt.Price = &price
		assert.ErrorIs(t, apt.Validate(), ErrValidation)
	})
}

func TestApartment_ValidateEntryDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 13, 30, 0, 0, time.UTC)

	t.Run("nil date is fine", func(t *testing.T) {
		apt := Apartment{}
		assert.NoError(t, apt.ValidateEntryDate(now))
	})

	t.Run("today passes", func(t *testing.T) {
		today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
		apt := Apartment{EntryDate: &today}
		assert.NoError(t, apt.ValidateEntryDate(now))
	})

	t.Run("future passes", func(t *testing.T) {
		future := now.AddDate(0, 1, 0)
		apt := Apartment{EntryDate: &future}
		assert.NoError(t, apt.ValidateEntryDate(now))
	})

	t.Run("yesterday fails", func(t *testing.T) {
		past := now.AddDate(0, 0, -1)
		apt := Apartment{EntryDate: &past}
		assert.ErrorIs(t, apt.ValidateEntryDate(now), ErrValidation)
	})
}

func TestApartment_ApplyDefaults(t *testing.T) {
	apt := Apartment{Title: "Studio"}
	apt.ApplyDefaults()

	assert.Equal(t, StatusNotSpoke, apt.Status)
	assert.Equal(t, PetsUnknown, apt.PetsAllowed)
	assert.Equal(t, PlaceholderImageURL, apt.ImageURL)

	// Defaults never overwrite supplied values.
	apt = Apartment{Title: "Studio", Status: StatusSpoke, PetsAllowed: PetsYes, ImageURL: "https://img.example/x.jpg"}
	apt.ApplyDefaults()
	assert.Equal(t, StatusSpoke, apt.Status)
	assert.Equal(t, PetsYes, apt.PetsAllowed)
	assert.Equal(t, "https://img.example/x.jpg", apt.ImageURL)
}

func TestScannedApartment_Promote(t *testing.T) {
	now := time.Date(2025, 6, 15, 13, 30, 0, 0, time.UTC)
	link := "https://listings.example/item/42"
	loc := "Givatayim"
	price := 6200.0

	t.Run("carries fields and resets lifecycle", func(t *testing.T) {
		scanned := ScannedApartment{
			ID:            "scan-1",
			Title:         "3-room, Givatayim",
			Location:      &loc,
			Price:         &price,
			ApartmentLink: &link,
			ImageURL:      "https://img.example/apt.jpg",
			PetsAllowed:   PetsYes,
		}

		apt := scanned.Promote(now)

		assert.Equal(t, scanned.Title, apt.Title)
		assert.Equal(t, scanned.Location, apt.Location)
		assert.Equal(t, scanned.Price, apt.Price)
		assert.Equal(t, scanned.ImageURL, apt.ImageURL)
		assert.Equal(t, StatusNotSpoke, apt.Status)
		assert.Equal(t, 0, apt.MorRating)
		assert.Equal(t, 0, apt.GabiRating)
		assert.False(t, apt.SpokeWithMor)
		assert.False(t, apt.SpokeWithGabi)
		require.NotNil(t, apt.FbURL)
		assert.Equal(t, link, *apt.FbURL)
		// Promoted apartments carry no server id; the store assigns one.
		assert.Empty(t, apt.ID)
	})

	t.Run("synthesizes fb_url when link absent", func(t *testing.T) {
		scanned := ScannedApartment{Title: "Studio", PetsAllowed: PetsUnknown}
		apt := scanned.Promote(now)
		require.NotNil(t, apt.FbURL)
		assert.Equal(t, "scanned-1749994200000", *apt.FbURL)
	})
}

func TestScannedApartment_ApplyDefaults(t *testing.T) {
	s := ScannedApartment{Title: "Studio"}
	s.ApplyDefaults()
	assert.Equal(t, PetsUnknown, s.PetsAllowed)
	assert.Equal(t, PlaceholderImageURL, s.ImageURL)
}

func TestApartmentPatch_Validate(t *testing.T) {
	intp := func(v int) *int { return &v }
	stat := StatusSpoke
	bad := Status("nope")

	tests := []struct {
		name    string
		patch   ApartmentPatch
		wantErr bool
	}{
		{"empty patch is valid shape", ApartmentPatch{}, false},
		{"rating in range", ApartmentPatch{MorRating: intp(5)}, false},
		{"rating out of range", ApartmentPatch{MorRating: intp(7)}, true},
		{"negative rating", ApartmentPatch{GabiRating: intp(-2)}, true},
		{"valid status", ApartmentPatch{Status: &stat}, false},
		{"invalid status", ApartmentPatch{Status: &bad}, true},
		{"talked flag alone", ApartmentPatch{SpokeWithMor: boolp(true)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApartmentPatch_IsEmpty(t *testing.T) {
	assert.True(t, (&ApartmentPatch{}).IsEmpty())
	assert.False(t, (&ApartmentPatch{SpokeWithGabi: boolp(true)}).IsEmpty())
}

func TestThemeLookup(t *testing.T) {
	cfg := ThemeByID(ThemeSunset)
	assert.Equal(t, "Sunset", cfg.Name)

	// Unknown ids fall back rather than breaking rendering.
	cfg = ThemeByID("neon")
	assert.Equal(t, ThemeClassic, cfg.ID)

	// The cycle wraps around.
	assert.Equal(t, ThemeSunset, NextTheme(ThemeClassic))
	assert.Equal(t, ThemeCats, NextTheme(ThemeSunset))
	assert.Equal(t, ThemeClassic, NextTheme(ThemeCats))
	assert.Equal(t, ThemeClassic, NextTheme("neon"))
}

func boolp(v bool) *bool { return &v }
