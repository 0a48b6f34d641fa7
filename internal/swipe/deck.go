// Package swipe implements the card-deck browsing engine: a pointer
// gesture state machine over a fixed linear sequence of apartments.
// The deck is independent of persistence; scanned-mode side effects are
// decided by the caller from the returned outcome.
package swipe

import (
	"errors"
	"sync"
)

// Gesture thresholds in pixels of horizontal displacement.
const (
	// HintThreshold is where the direction overlay kicks in. Purely a
	// rendering hint, never a commit signal.
	HintThreshold = 50
	// CommitThreshold is the drag distance past which releasing the card
	// counts as a decisive like or dislike rather than a cancelled drag.
	CommitThreshold = 100
)

// Direction is the rendering hint derived from the current drag offset.
type Direction string

const (
	DirectionNone  Direction = "none"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Mode selects which list the deck browses.
type Mode string

const (
	// ModeRegular browses the canonical list. Like/dislike are
	// presentation only; no rating or status field is ever mutated.
	ModeRegular Mode = "regular"
	// ModeScanned browses the scanned candidate pool. A like promotes
	// the current item into the canonical store.
	ModeScanned Mode = "scanned"
)

// OutcomeKind classifies what a gesture end meant.
type OutcomeKind string

const (
	// OutcomeSnapBack means the drag ended short of the commit
	// threshold; the card returns to rest with no state change.
	OutcomeSnapBack OutcomeKind = "snap_back"
	OutcomeLike     OutcomeKind = "like"
	OutcomeDislike  OutcomeKind = "dislike"
)

// Outcome reports the result of ending a gesture. ItemID is the card the
// gesture acted on (empty for a snap-back past the end of the deck).
type Outcome struct {
	Kind      OutcomeKind `json:"kind"`
	ItemID    string      `json:"itemId,omitempty"`
	Index     int         `json:"index"`
	Exhausted bool        `json:"exhausted"`
}

var (
	// ErrNoGesture is returned when a move or end arrives without a
	// preceding gesture start. A stale card must not leak transitions.
	ErrNoGesture = errors.New("no gesture in progress")
	// ErrExhausted is returned when a gesture starts on an exhausted
	// deck; the completion view only offers reset.
	ErrExhausted = errors.New("deck exhausted")
)

// Deck is a swipeable view over a fixed ordered list of item ids.
// CurrentIndex ranges 0..N where N == len(items) is the terminal state.
type Deck struct {
	mu sync.Mutex

	mode  Mode
	items []string

	currentIndex int
	dragOffset   float64
	direction    Direction
	isDragging   bool
	startX       float64
}

// NewDeck creates a deck over the given item ids in their given order.
func NewDeck(mode Mode, items []string) *Deck {
	return &Deck{
		mode:      mode,
		items:     append([]string(nil), items...),
		direction: DirectionNone,
	}
}

// Mode returns which list this deck browses.
func (d *Deck) Mode() Mode {
	return d.mode
}

// Snapshot is the deck state as rendered by a client.
type Snapshot struct {
	Mode         Mode      `json:"mode"`
	CurrentIndex int       `json:"currentIndex"`
	CurrentItem  string    `json:"currentItem,omitempty"`
	DragOffset   float64   `json:"dragOffset"`
	Direction    Direction `json:"direction"`
	IsDragging   bool      `json:"isDragging"`
	Total        int       `json:"total"`
	Exhausted    bool      `json:"exhausted"`
}

// Snapshot returns the current deck state.
func (d *Deck) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := Snapshot{
		Mode:         d.mode,
		CurrentIndex: d.currentIndex,
		DragOffset:   d.dragOffset,
		Direction:    d.direction,
		IsDragging:   d.isDragging,
		Total:        len(d.items),
		Exhausted:    d.currentIndex >= len(d.items),
	}
	if !snap.Exhausted {
		snap.CurrentItem = d.items[d.currentIndex]
	}
	return snap
}

// Begin starts a gesture at the given x coordinate.
func (d *Deck) Begin(x float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.currentIndex >= len(d.items) {
		return ErrExhausted
	}

	d.isDragging = true
	d.startX = x
	d.dragOffset = 0
	d.direction = DirectionNone
	return nil
}

// Move updates the drag offset from the current pointer position. Past
// the hint threshold the direction overlay becomes left or right; this
// never commits anything.
func (d *Deck) Move(x float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isDragging {
		return ErrNoGesture
	}

	d.dragOffset = x - d.startX
	switch {
	case d.dragOffset > HintThreshold:
		d.direction = DirectionRight
	case d.dragOffset < -HintThreshold:
		d.direction = DirectionLeft
	default:
		d.direction = DirectionNone
	}
	return nil
}

// End finishes the gesture. Past the commit threshold it resolves to a
// like (right) or dislike (left) and advances the deck; otherwise the
// card snaps back with no change to the underlying list position.
func (d *Deck) End() (Outcome, error) {
	return d.EndWith(nil)
}

// EndWith is End with a resolve hook that runs on a decisive outcome
// before the deck advances (scanned-mode likes promote the item here).
// If resolve fails the gesture still resets but the card stays current,
// so the swipe can be retried.
func (d *Deck) EndWith(resolve func(Outcome) error) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isDragging {
		return Outcome{}, ErrNoGesture
	}

	offset := d.dragOffset
	d.isDragging = false
	d.dragOffset = 0
	d.direction = DirectionNone
	d.startX = 0

	if offset > CommitThreshold {
		return d.commit(OutcomeLike, resolve)
	}
	if offset < -CommitThreshold {
		return d.commit(OutcomeDislike, resolve)
	}

	return Outcome{
		Kind:      OutcomeSnapBack,
		Index:     d.currentIndex,
		Exhausted: d.currentIndex >= len(d.items),
	}, nil
}

// commit resolves a decisive swipe on the current card and advances.
// Caller holds the lock.
func (d *Deck) commit(kind OutcomeKind, resolve func(Outcome) error) (Outcome, error) {
	out := Outcome{
		Kind:   kind,
		ItemID: d.items[d.currentIndex],
		Index:  d.currentIndex,
	}
	if resolve != nil {
		if err := resolve(out); err != nil {
			return out, err
		}
	}
	if d.currentIndex < len(d.items) {
		d.currentIndex++
	}
	out.Exhausted = d.currentIndex >= len(d.items)
	return out, nil
}

// Reset returns the deck to the first card with no other side effects.
func (d *Deck) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.currentIndex = 0
	d.dragOffset = 0
	d.direction = DirectionNone
	d.isDragging = false
	d.startX = 0
}
