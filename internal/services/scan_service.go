package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/morgabi/homehunt/internal/clients"
	"github.com/morgabi/homehunt/internal/logger"
	"github.com/morgabi/homehunt/internal/models"
	"github.com/morgabi/homehunt/internal/repository"
)

// ErrScannedNotFound is returned when a scanned candidate does not exist.
var ErrScannedNotFound = errors.New("scanned apartment not found")

// ScanService runs the scan import pipeline: trigger the external
// scraper, list the candidate pool, promote candidates into the canonical
// store, or discard them.
type ScanService interface {
	// Scan triggers the external scraper with the given filters and
	// reports how many candidates it produced. Blocking and empty-result
	// conditions surface as clients.ErrScraperBlocked and
	// clients.ErrNoListings for specific user-facing messages.
	Scan(ctx context.Context, params clients.ScanParams) (int, error)

	// ListScanned returns the current candidate pool, newest first.
	ListScanned(ctx context.Context) ([]models.ScannedApartment, error)

	// Import ingests scraper output into the candidate pool. Every
	// record is defaulted and validated before anything is inserted;
	// one bad record rejects the whole batch. Returns how many records
	// were stored.
	Import(ctx context.Context, records []models.ScannedApartment) (int, error)

	// Promote copies a scanned candidate into the canonical store with
	// fresh lifecycle defaults, then deletes the candidate. The two steps
	// are sequential, not atomic: a crash in between can leave the
	// candidate behind, and retrying then duplicates the apartment.
	Promote(ctx context.Context, scannedID string) (*models.Apartment, error)

	// Discard deletes one scanned candidate without promoting it.
	Discard(ctx context.Context, scannedID string) error

	// ClearAll empties the candidate pool before a fresh scan.
	ClearAll(ctx context.Context) (int64, error)
}

type scanService struct {
	scanned repository.ScannedRepository
	apts    repository.ApartmentRepository
	scraper clients.ScraperClient
	mailer  clients.Mailer
	log     *logger.Logger
}

// NewScanService creates a new instance of ScanService.
func NewScanService(
	scanned repository.ScannedRepository,
	apts repository.ApartmentRepository,
	scraper clients.ScraperClient,
	mailer clients.Mailer,
	log *logger.Logger,
) ScanService {
	return &scanService{
		scanned: scanned,
		apts:    apts,
		scraper: scraper,
		mailer:  mailer,
		log:     log,
	}
}

func (s *scanService) Scan(ctx context.Context, params clients.ScanParams) (int, error) {
	s.log.Info("Triggering apartment scan", map[string]interface{}{
		"property_type": params.PropertyType,
		"max_price":     params.MaxPrice,
		"areas":         params.Areas,
	})

	result, err := s.scraper.Scan(ctx, params)
	if err != nil {
		// Keep the specific sentinels intact for the handler's
		// user-facing translation.
		s.log.Warn("Scan failed", map[string]interface{}{
			"error": err.Error(),
		})
		return 0, err
	}

	s.log.Info("Scan complete", map[string]interface{}{
		"count":   result.Count,
		"message": result.Message,
	})
	return result.Count, nil
}

func (s *scanService) ListScanned(ctx context.Context) ([]models.ScannedApartment, error) {
	scanned, err := s.scanned.List(ctx)
	if err != nil {
		s.log.Error("Failed to list scanned apartments", err, nil)
		return nil, fmt.Errorf("failed to list scanned apartments: %w", err)
	}
	return scanned, nil
}

func (s *scanService) Import(ctx context.Context, records []models.ScannedApartment) (int, error) {
	// Default and validate the whole batch before touching the store so
	// a bad record cannot leave a partial import behind.
	for i := range records {
		records[i].ApplyDefaults()
		if err := records[i].Validate(); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
	}

	inserted := 0
	for i := range records {
		if _, err := s.scanned.Insert(ctx, &records[i]); err != nil {
			s.log.Error("Failed to insert scanned apartment", err, map[string]interface{}{
				"title":    records[i].Title,
				"inserted": inserted,
			})
			return inserted, fmt.Errorf("failed to import scanned apartments: %w", err)
		}
		inserted++
	}

	s.log.Info("Scanned apartments imported", map[string]interface{}{
		"count": inserted,
	})
	return inserted, nil
}

func (s *scanService) Promote(ctx context.Context, scannedID string) (*models.Apartment, error) {
	candidate, err := s.scanned.GetByID(ctx, scannedID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScannedNotFound
		}
		return nil, fmt.Errorf("failed to load scanned apartment: %w", err)
	}

	apt := candidate.Promote(time.Now())
	if err := apt.Validate(); err != nil {
		return nil, err
	}

	created, err := s.apts.Create(ctx, &apt)
	if err != nil {
		s.log.Error("Failed to promote scanned apartment", err, map[string]interface{}{
			"scanned_id": scannedID,
		})
		return nil, fmt.Errorf("failed to promote scanned apartment: %w", err)
	}

	// Promotion adds an apartment to the canonical list, so it gets the
	// same fire-and-forget "added" notification as a manual create.
	s.notifyAsync(created)

	// Delete after insert. If this fails the candidate stays in the pool
	// and a retried promotion would duplicate the apartment.
	if err := s.scanned.Delete(ctx, scannedID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Error("Promoted but failed to delete scanned candidate", err, map[string]interface{}{
			"scanned_id":   scannedID,
			"apartment_id": created.ID,
		})
		return created, fmt.Errorf("promoted, but failed to remove scanned candidate: %w", err)
	}

	s.log.Info("Scanned apartment promoted", map[string]interface{}{
		"scanned_id":   scannedID,
		"apartment_id": created.ID,
	})
	return created, nil
}

func (s *scanService) Discard(ctx context.Context, scannedID string) error {
	if err := s.scanned.Delete(ctx, scannedID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrScannedNotFound
		}
		return fmt.Errorf("failed to discard scanned apartment: %w", err)
	}
	return nil
}

func (s *scanService) ClearAll(ctx context.Context) (int64, error) {
	count, err := s.scanned.DeleteAll(ctx)
	if err != nil {
		s.log.Error("Failed to clear scanned apartments", err, nil)
		return 0, fmt.Errorf("failed to clear scanned apartments: %w", err)
	}

	s.log.Info("Scanned pool cleared", map[string]interface{}{"removed": count})
	return count, nil
}

// notifyAsync spawns the "added" notification for a promoted apartment
// as an independent task. Failure is logged and never fails promotion.
func (s *scanService) notifyAsync(apt *models.Apartment) {
	snapshot := *apt
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.mailer.Notify(ctx, &snapshot, clients.ActionAdded); err != nil {
			s.log.Warn("Apartment promoted but notification failed", map[string]interface{}{
				"id":    snapshot.ID,
				"error": err.Error(),
			})
		}
	}()
}
