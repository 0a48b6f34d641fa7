package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/morgabi/homehunt/internal/database"
	"github.com/morgabi/homehunt/internal/models"
)

// scannedColumns is the canonical select list for scanned_apartments.
const scannedColumns = `
	id, title, description, location, contact_name, contact_phone,
	apartment_link, price, arnona, square_meters, floor, image_url,
	pets_allowed, has_shelter, entry_date, couple_id, created_at`

// ScannedRepository owns access to the scanned_apartments table.
// Scanned records are never edited in place: the pipeline inserts them,
// the user promotes or discards them.
type ScannedRepository interface {
	// List fetches all scanned candidates, newest first.
	List(ctx context.Context) ([]models.ScannedApartment, error)

	// GetByID fetches a single scanned candidate.
	// Returns ErrNotFound if no row exists.
	GetByID(ctx context.Context, id string) (*models.ScannedApartment, error)

	// Insert stores one scraped candidate and returns the stored row.
	Insert(ctx context.Context, scanned *models.ScannedApartment) (*models.ScannedApartment, error)

	// Delete removes one scanned candidate.
	// Returns ErrNotFound if no row exists.
	Delete(ctx context.Context, id string) error

	// DeleteAll clears the whole candidate pool and reports how many
	// rows were removed.
	DeleteAll(ctx context.Context) (int64, error)
}

type scannedRepository struct {
	db *database.Database
}

// NewScannedRepository creates a new instance of ScannedRepository.
func NewScannedRepository(db *database.Database) ScannedRepository {
	return &scannedRepository{
		db: db,
	}
}

func (r *scannedRepository) List(ctx context.Context) ([]models.ScannedApartment, error) {
	query := `SELECT` + scannedColumns + `
		FROM scanned_apartments
		ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scanned apartments: %w", err)
	}
	defer rows.Close()

	var scanned []models.ScannedApartment
	for rows.Next() {
		rec, err := scanScanned(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scanned-apartment row: %w", err)
		}
		scanned = append(scanned, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scanned-apartment rows: %w", err)
	}

	if scanned == nil {
		scanned = []models.ScannedApartment{}
	}

	return scanned, nil
}

func (r *scannedRepository) GetByID(ctx context.Context, id string) (*models.ScannedApartment, error) {
	query := `SELECT` + scannedColumns + `
		FROM scanned_apartments
		WHERE id = $1`

	rec, err := scanScanned(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query scanned apartment %s: %w", id, err)
	}

	return rec, nil
}

func (r *scannedRepository) Insert(ctx context.Context, scanned *models.ScannedApartment) (*models.ScannedApartment, error) {
	query := `
		INSERT INTO scanned_apartments (
			title, description, location, contact_name, contact_phone,
			apartment_link, price, arnona, square_meters, floor,
			image_url, pets_allowed, has_shelter, entry_date, couple_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
		RETURNING` + scannedColumns

	created, err := scanScanned(r.db.Pool.QueryRow(ctx, query,
		scanned.Title,
		scanned.Description,
		scanned.Location,
		scanned.ContactName,
		scanned.ContactPhone,
		scanned.ApartmentLink,
		scanned.Price,
		scanned.Arnona,
		scanned.SquareMeters,
		scanned.Floor,
		scanned.ImageURL,
		scanned.PetsAllowed,
		scanned.HasShelter,
		scanned.EntryDate,
		scanned.CoupleID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert scanned apartment: %w", err)
	}

	return created, nil
}

func (r *scannedRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM scanned_apartments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scanned apartment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *scannedRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM scanned_apartments`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear scanned apartments: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanScanned reads one scanned-apartment row in scannedColumns order.
func scanScanned(row pgx.Row) (*models.ScannedApartment, error) {
	var rec models.ScannedApartment
	err := row.Scan(
		&rec.ID,
		&rec.Title,
		&rec.Description,
		&rec.Location,
		&rec.ContactName,
		&rec.ContactPhone,
		&rec.ApartmentLink,
		&rec.Price,
		&rec.Arnona,
		&rec.SquareMeters,
		&rec.Floor,
		&rec.ImageURL,
		&rec.PetsAllowed,
		&rec.HasShelter,
		&rec.EntryDate,
		&rec.CoupleID,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
