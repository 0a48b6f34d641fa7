// Package session centralizes the small pieces of per-process state the
// app used to scatter across ad-hoc storage reads: the device id, the
// active theme, and named counters (rate limits and the like). One
// component, explicit accessors, documented lifecycle: initialized once
// at startup, read and written only through here.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/morgabi/homehunt/internal/models"
)

// State is the process-wide local session state.
type State struct {
	mu       sync.RWMutex
	deviceID string
	theme    models.ThemeID
	counters map[string]int
}

// NewState initializes the state with a fresh device id and the default
// theme. Called once at startup.
func NewState() *State {
	return &State{
		deviceID: uuid.New().String(),
		theme:    models.ThemeClassic,
		counters: make(map[string]int),
	}
}

// DeviceID returns the id assigned to this process instance.
func (s *State) DeviceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceID
}

// Theme returns the active theme id.
func (s *State) Theme() models.ThemeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme sets the active theme id.
func (s *State) SetTheme(id models.ThemeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = id
}

// CycleTheme advances to the next theme and returns its config.
func (s *State) CycleTheme() models.ThemeConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = models.NextTheme(s.theme)
	return models.ThemeByID(s.theme)
}

// Counter returns the value of a named counter, zero if never touched.
func (s *State) Counter(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[name]
}

// Counters returns a copy of every counter.
func (s *State) Counters() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.counters))
	for name, v := range s.counters {
		out[name] = v
	}
	return out
}

// Increment bumps a named counter and returns its new value.
func (s *State) Increment(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name]++
	return s.counters[name]
}

// Reset clears every counter and returns the theme to the default. The
// device id survives: it identifies the install, not the session.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = models.ThemeClassic
	s.counters = make(map[string]int)
}
