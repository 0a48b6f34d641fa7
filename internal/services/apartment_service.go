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

// Service-level errors
var (
	ErrApartmentNotFound = errors.New("apartment not found")
	ErrEmptyPatch        = errors.New("update carries no fields")
)

// notifyTimeout bounds the fire-and-forget notification call, which runs
// detached from the request context.
const notifyTimeout = 30 * time.Second

// ApartmentService is the interactive layer over the apartment store.
// Every mutation is followed by a full re-fetch so callers always end up
// holding ground truth rather than a locally patched copy; on failure the
// previous list stays valid (stale-but-consistent).
type ApartmentService interface {
	// List returns all apartments ordered by combined rating descending.
	List(ctx context.Context) ([]models.Apartment, error)

	// Get returns one apartment. Returns ErrApartmentNotFound if absent.
	Get(ctx context.Context, id string) (*models.Apartment, error)

	// Create validates and inserts an apartment, spawns the best-effort
	// "added" notification, and returns the stored record plus the
	// re-fetched list. Notification failure never fails the create.
	Create(ctx context.Context, apt *models.Apartment) (*models.Apartment, []models.Apartment, error)

	// Update applies a partial update and returns the re-fetched list.
	// It deliberately does not notify: only creation notifies.
	Update(ctx context.Context, id string, patch *models.ApartmentPatch) ([]models.Apartment, error)

	// Remove archives the apartment into the recycle bin and deletes the
	// original, then returns the re-fetched list.
	Remove(ctx context.Context, id string) ([]models.Apartment, error)

	// Narrow intention-revealing helpers; all go through Update and the
	// same refresh discipline.
	SetMorRating(ctx context.Context, id string, rating int) ([]models.Apartment, error)
	SetGabiRating(ctx context.Context, id string, rating int) ([]models.Apartment, error)
	SetMorTalked(ctx context.Context, id string, talked bool) ([]models.Apartment, error)
	SetGabiTalked(ctx context.Context, id string, talked bool) ([]models.Apartment, error)
}

type apartmentService struct {
	repo   repository.ApartmentRepository
	mailer clients.Mailer
	log    *logger.Logger
}

// NewApartmentService creates a new instance of ApartmentService.
func NewApartmentService(repo repository.ApartmentRepository, mailer clients.Mailer, log *logger.Logger) ApartmentService {
	return &apartmentService{
		repo:   repo,
		mailer: mailer,
		log:    log,
	}
}

func (s *apartmentService) List(ctx context.Context) ([]models.Apartment, error) {
	apartments, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("Failed to list apartments", err, nil)
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}
	return apartments, nil
}

func (s *apartmentService) Get(ctx context.Context, id string) (*models.Apartment, error) {
	apt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrApartmentNotFound
		}
		s.log.Error("Failed to get apartment", err, map[string]interface{}{"id": id})
		return nil, fmt.Errorf("failed to get apartment: %w", err)
	}
	return apt, nil
}

func (s *apartmentService) Create(ctx context.Context, apt *models.Apartment) (*models.Apartment, []models.Apartment, error) {
	apt.ApplyDefaults()

	// All validation happens before any network call; a rejected create
	// must leave the store untouched.
	if err := apt.Validate(); err != nil {
		return nil, nil, err
	}
	if err := apt.ValidateEntryDate(time.Now()); err != nil {
		return nil, nil, err
	}

	created, err := s.repo.Create(ctx, apt)
	if err != nil {
		s.log.Error("Failed to create apartment", err, map[string]interface{}{
			"title": apt.Title,
		})
		return nil, nil, fmt.Errorf("failed to create apartment: %w", err)
	}

	s.log.Info("Apartment created", map[string]interface{}{
		"id":    created.ID,
		"title": created.Title,
	})

	// Best-effort notification, detached from the request. Its failure is
	// logged on its own and never rolls back the create.
	s.notifyAsync(created, clients.ActionAdded)

	list, err := s.repo.List(ctx)
	if err != nil {
		// The create itself succeeded; surface that alongside the
		// refresh failure so the caller can retry the fetch.
		s.log.Error("Refresh after create failed", err, map[string]interface{}{
			"id": created.ID,
		})
		return created, nil, fmt.Errorf("apartment created but refresh failed: %w", err)
	}

	return created, list, nil
}

func (s *apartmentService) Update(ctx context.Context, id string, patch *models.ApartmentPatch) ([]models.Apartment, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.EntryDate != nil {
		probe := models.Apartment{EntryDate: patch.EntryDate}
		if err := probe.ValidateEntryDate(time.Now()); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrApartmentNotFound
		}
		s.log.Error("Failed to update apartment", err, map[string]interface{}{"id": id})
		return nil, fmt.Errorf("failed to update apartment: %w", err)
	}

	return s.List(ctx)
}

func (s *apartmentService) Remove(ctx context.Context, id string) ([]models.Apartment, error) {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrApartmentNotFound
		}
		s.log.Error("Failed to delete apartment", err, map[string]interface{}{"id": id})
		return nil, fmt.Errorf("failed to delete apartment: %w", err)
	}

	s.log.Info("Apartment moved to recycle bin", map[string]interface{}{"id": id})
	return s.List(ctx)
}

func (s *apartmentService) SetMorRating(ctx context.Context, id string, rating int) ([]models.Apartment, error) {
	return s.Update(ctx, id, &models.ApartmentPatch{MorRating: &rating})
}

func (s *apartmentService) SetGabiRating(ctx context.Context, id string, rating int) ([]models.Apartment, error) {
	return s.Update(ctx, id, &models.ApartmentPatch{GabiRating: &rating})
}

func (s *apartmentService) SetMorTalked(ctx context.Context, id string, talked bool) ([]models.Apartment, error) {
	return s.Update(ctx, id, &models.ApartmentPatch{SpokeWithMor: &talked})
}

func (s *apartmentService) SetGabiTalked(ctx context.Context, id string, talked bool) ([]models.Apartment, error) {
	return s.Update(ctx, id, &models.ApartmentPatch{SpokeWithGabi: &talked})
}

// notifyAsync spawns the notification as an independent task with its own
// timeout and failure logging.
func (s *apartmentService) notifyAsync(apt *models.Apartment, action clients.NotifyAction) {
	snapshot := *apt
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.mailer.Notify(ctx, &snapshot, action); err != nil {
			s.log.Warn("Apartment saved but notification failed", map[string]interface{}{
				"id":     snapshot.ID,
				"action": string(action),
				"error":  err.Error(),
			})
		}
	}()
}
