package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/morgabi/homehunt/internal/database"
	"github.com/morgabi/homehunt/internal/models"
)

// ErrNotFound is returned when the requested apartment does not exist.
var ErrNotFound = errors.New("apartment not found")

// apartmentColumns is the canonical select list for the apartments table.
const apartmentColumns = `
	id, title, description, location, contact_name, contact_phone,
	apartment_link, fb_url, price, arnona, square_meters, floor,
	image_url, status, pets_allowed, has_shelter, entry_date,
	mor_rating, gabi_rating, spoke_with_mor, spoke_with_gabi,
	note, scheduled_visit_text, couple_id, created_at, updated_at`

// ApartmentRepository is the sole owner of read/write access to the
// apartments and deleted_apartments tables.
type ApartmentRepository interface {
	// List fetches all apartments ordered by combined rating descending.
	// The store's native order is creation time descending; the combined
	// rating sort is applied in this layer, not the store.
	List(ctx context.Context) ([]models.Apartment, error)

	// GetByID fetches a single apartment.
	// Returns ErrNotFound if no row exists.
	GetByID(ctx context.Context, id string) (*models.Apartment, error)

	// Create inserts one apartment and returns the stored row with
	// server-assigned id and timestamps.
	Create(ctx context.Context, apt *models.Apartment) (*models.Apartment, error)

	// Update performs a partial update of the given fields.
	// Returns ErrNotFound if no row exists.
	Update(ctx context.Context, id string, patch *models.ApartmentPatch) error

	// SoftDelete archives the row into deleted_apartments and then removes
	// the original, as one transaction. If the archival insert fails the
	// delete does not proceed.
	SoftDelete(ctx context.Context, id string) error
}

// apartmentRepository is the concrete implementation of ApartmentRepository.
type apartmentRepository struct {
	db *database.Database
}

// NewApartmentRepository creates a new instance of ApartmentRepository.
func NewApartmentRepository(db *database.Database) ApartmentRepository {
	return &apartmentRepository{
		db: db,
	}
}

// SortByCombinedRating orders apartments by (mor_rating + gabi_rating)
// descending, in place. The sort is stable so ties keep the store's own
// creation-time-descending order.
func SortByCombinedRating(apts []models.Apartment) {
	sort.SliceStable(apts, func(i, j int) bool {
		return apts[i].CombinedRating() > apts[j].CombinedRating()
	})
}

func (r *apartmentRepository) List(ctx context.Context) ([]models.Apartment, error) {
	query := `SELECT` + apartmentColumns + `
		FROM apartments
		ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query apartments: %w", err)
	}
	defer rows.Close()

	var apartments []models.Apartment
	for rows.Next() {
		apt, err := scanApartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan apartment row: %w", err)
		}
		apartments = append(apartments, *apt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating apartment rows: %w", err)
	}

	if apartments == nil {
		apartments = []models.Apartment{}
	}

	SortByCombinedRating(apartments)
	return apartments, nil
}

func (r *apartmentRepository) GetByID(ctx context.Context, id string) (*models.Apartment, error) {
	query := `SELECT` + apartmentColumns + `
		FROM apartments
		WHERE id = $1`

	apt, err := scanApartment(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query apartment %s: %w", id, err)
	}

	return apt, nil
}

func (r *apartmentRepository) Create(ctx context.Context, apt *models.Apartment) (*models.Apartment, error) {
	query := `
		INSERT INTO apartments (
			title, description, location, contact_name, contact_phone,
			apartment_link, fb_url, price, arnona, square_meters, floor,
			image_url, status, pets_allowed, has_shelter, entry_date,
			mor_rating, gabi_rating, spoke_with_mor, spoke_with_gabi,
			note, scheduled_visit_text, couple_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
		RETURNING` + apartmentColumns

	created, err := scanApartment(r.db.Pool.QueryRow(ctx, query,
		apt.Title,
		apt.Description,
		apt.Location,
		apt.ContactName,
		apt.ContactPhone,
		apt.ApartmentLink,
		apt.FbURL,
		apt.Price,
		apt.Arnona,
		apt.SquareMeters,
		apt.Floor,
		apt.ImageURL,
		apt.Status,
		apt.PetsAllowed,
		apt.HasShelter,
		apt.EntryDate,
		apt.MorRating,
		apt.GabiRating,
		apt.SpokeWithMor,
		apt.SpokeWithGabi,
		apt.Note,
		apt.ScheduledVisitText,
		apt.CoupleID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert apartment: %w", err)
	}

	return created, nil
}

func (r *apartmentRepository) Update(ctx context.Context, id string, patch *models.ApartmentPatch) error {
	sets, args := buildPatchSet(patch)
	if len(sets) == 0 {
		return nil
	}

	// updated_at moves with every write; ids are bound last.
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE apartments SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args),
	)

	tag, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update apartment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *apartmentRepository) SoftDelete(ctx context.Context, id string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin soft-delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Archive first. If this insert fails the delete must not proceed,
	// otherwise the row is silently lost.
	archive := `
		INSERT INTO deleted_apartments (
			original_id, title, description, location, contact_name,
			contact_phone, apartment_link, fb_url, price, arnona,
			square_meters, floor, image_url, status, pets_allowed,
			has_shelter, entry_date, mor_rating, gabi_rating,
			spoke_with_mor, spoke_with_gabi, note, scheduled_visit_text,
			couple_id, deleted_at
		)
		SELECT
			id, title, description, location, contact_name,
			contact_phone, apartment_link, fb_url, price, arnona,
			square_meters, floor, image_url, status, pets_allowed,
			has_shelter, entry_date, mor_rating, gabi_rating,
			spoke_with_mor, spoke_with_gabi, note, scheduled_visit_text,
			couple_id, NOW()
		FROM apartments
		WHERE id = $1`

	tag, err := tx.Exec(ctx, archive, id)
	if err != nil {
		return fmt.Errorf("failed to archive apartment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM apartments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete apartment %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit soft-delete of apartment %s: %w", id, err)
	}

	return nil
}

// buildPatchSet turns the non-nil fields of a patch into SET clauses with
// positional placeholders, in a fixed column order.
func buildPatchSet(patch *models.ApartmentPatch) ([]string, []interface{}) {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.ContactName != nil {
		add("contact_name", *patch.ContactName)
	}
	if patch.ContactPhone != nil {
		add("contact_phone", *patch.ContactPhone)
	}
	if patch.ApartmentLink != nil {
		add("apartment_link", *patch.ApartmentLink)
	}
	if patch.FbURL != nil {
		add("fb_url", *patch.FbURL)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Arnona != nil {
		add("arnona", *patch.Arnona)
	}
	if patch.SquareMeters != nil {
		add("square_meters", *patch.SquareMeters)
	}
	if patch.Floor != nil {
		add("floor", *patch.Floor)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.PetsAllowed != nil {
		add("pets_allowed", *patch.PetsAllowed)
	}
	if patch.HasShelter != nil {
		add("has_shelter", *patch.HasShelter)
	}
	if patch.EntryDate != nil {
		add("entry_date", *patch.EntryDate)
	}
	if patch.MorRating != nil {
		add("mor_rating", *patch.MorRating)
	}
	if patch.GabiRating != nil {
		add("gabi_rating", *patch.GabiRating)
	}
	if patch.SpokeWithMor != nil {
		add("spoke_with_mor", *patch.SpokeWithMor)
	}
	if patch.SpokeWithGabi != nil {
		add("spoke_with_gabi", *patch.SpokeWithGabi)
	}
	if patch.Note != nil {
		add("note", *patch.Note)
	}
	if patch.ScheduledVisitText != nil {
		add("scheduled_visit_text", *patch.ScheduledVisitText)
	}

	return sets, args
}

// scanApartment reads one apartment row in apartmentColumns order.
func scanApartment(row pgx.Row) (*models.Apartment, error) {
	var apt models.Apartment
	err := row.Scan(
		&apt.ID,
		&apt.Title,
		&apt.Description,
		&apt.Location,
		&apt.ContactName,
		&apt.ContactPhone,
		&apt.ApartmentLink,
		&apt.FbURL,
		&apt.Price,
		&apt.Arnona,
		&apt.SquareMeters,
		&apt.Floor,
		&apt.ImageURL,
		&apt.Status,
		&apt.PetsAllowed,
		&apt.HasShelter,
		&apt.EntryDate,
		&apt.MorRating,
		&apt.GabiRating,
		&apt.SpokeWithMor,
		&apt.SpokeWithGabi,
		&apt.Note,
		&apt.ScheduledVisitText,
		&apt.CoupleID,
		&apt.CreatedAt,
		&apt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &apt, nil
}
