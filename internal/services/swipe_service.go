package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/morgabi/homehunt/internal/logger"
	"github.com/morgabi/homehunt/internal/repository"
	"github.com/morgabi/homehunt/internal/swipe"
)

// ErrUnknownSwipeMode is returned for a session request with a mode
// outside {regular, scanned}.
var ErrUnknownSwipeMode = errors.New("unknown swipe mode")

// SwipeService runs deck browsing sessions. A session snapshots the
// chosen list's order at start; apartments added later appear on the next
// session, not mid-deck.
type SwipeService interface {
	// StartSession builds a deck over the current regular or scanned
	// list and returns the session id with the initial state.
	StartSession(ctx context.Context, mode swipe.Mode) (string, swipe.Snapshot, error)

	// Snapshot returns the current deck state for rendering.
	Snapshot(sessionID string) (swipe.Snapshot, error)

	// Begin / Move / End drive one gesture. End resolves scanned-mode
	// likes by promoting the liked candidate before the deck advances;
	// regular-mode likes and dislikes touch nothing.
	Begin(sessionID string, x float64) (swipe.Snapshot, error)
	Move(sessionID string, x float64) (swipe.Snapshot, error)
	End(ctx context.Context, sessionID string) (swipe.Outcome, swipe.Snapshot, error)

	// Reset returns the deck to its first card with no other effects.
	Reset(sessionID string) (swipe.Snapshot, error)

	// EndSession drops the deck.
	EndSession(sessionID string)
}

type swipeService struct {
	store *swipe.Store
	apts  repository.ApartmentRepository
	scans ScanService
	log   *logger.Logger
}

// NewSwipeService creates a new instance of SwipeService.
func NewSwipeService(store *swipe.Store, apts repository.ApartmentRepository, scans ScanService, log *logger.Logger) SwipeService {
	return &swipeService{
		store: store,
		apts:  apts,
		scans: scans,
		log:   log,
	}
}

func (s *swipeService) StartSession(ctx context.Context, mode swipe.Mode) (string, swipe.Snapshot, error) {
	var items []string

	switch mode {
	case swipe.ModeRegular:
		apartments, err := s.apts.List(ctx)
		if err != nil {
			return "", swipe.Snapshot{}, fmt.Errorf("failed to build swipe deck: %w", err)
		}
		for _, apt := range apartments {
			items = append(items, apt.ID)
		}
	case swipe.ModeScanned:
		scanned, err := s.scans.ListScanned(ctx)
		if err != nil {
			return "", swipe.Snapshot{}, fmt.Errorf("failed to build swipe deck: %w", err)
		}
		for _, rec := range scanned {
			items = append(items, rec.ID)
		}
	default:
		return "", swipe.Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownSwipeMode, mode)
	}

	id := s.store.Start(mode, items)
	deck, err := s.store.Get(id)
	if err != nil {
		return "", swipe.Snapshot{}, err
	}

	s.log.Info("Swipe session started", map[string]interface{}{
		"session_id": id,
		"mode":       string(mode),
		"cards":      len(items),
	})
	return id, deck.Snapshot(), nil
}

func (s *swipeService) Snapshot(sessionID string) (swipe.Snapshot, error) {
	deck, err := s.store.Get(sessionID)
	if err != nil {
		return swipe.Snapshot{}, err
	}
	return deck.Snapshot(), nil
}

func (s *swipeService) Begin(sessionID string, x float64) (swipe.Snapshot, error) {
	deck, err := s.store.Get(sessionID)
	if err != nil {
		return swipe.Snapshot{}, err
	}
	if err := deck.Begin(x); err != nil {
		return deck.Snapshot(), err
	}
	return deck.Snapshot(), nil
}

func (s *swipeService) Move(sessionID string, x float64) (swipe.Snapshot, error) {
	deck, err := s.store.Get(sessionID)
	if err != nil {
		return swipe.Snapshot{}, err
	}
	if err := deck.Move(x); err != nil {
		return deck.Snapshot(), err
	}
	return deck.Snapshot(), nil
}

func (s *swipeService) End(ctx context.Context, sessionID string) (swipe.Outcome, swipe.Snapshot, error) {
	deck, err := s.store.Get(sessionID)
	if err != nil {
		return swipe.Outcome{}, swipe.Snapshot{}, err
	}

	var resolve func(swipe.Outcome) error
	if deck.Mode() == swipe.ModeScanned {
		resolve = func(out swipe.Outcome) error {
			if out.Kind != swipe.OutcomeLike {
				// Disliked candidates stay in the pool for later review.
				return nil
			}
			if _, err := s.scans.Promote(ctx, out.ItemID); err != nil {
				return err
			}
			return nil
		}
	}

	out, err := deck.EndWith(resolve)
	if err != nil {
		return out, deck.Snapshot(), err
	}
	return out, deck.Snapshot(), nil
}

func (s *swipeService) Reset(sessionID string) (swipe.Snapshot, error) {
	deck, err := s.store.Get(sessionID)
	if err != nil {
		return swipe.Snapshot{}, err
	}
	deck.Reset()
	return deck.Snapshot(), nil
}

func (s *swipeService) EndSession(sessionID string) {
	s.store.End(sessionID)
}
