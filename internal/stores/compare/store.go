// Package compare holds the bounded, ordered comparison selection.
package compare

import (
	"errors"
	"sync"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/models"
	"github.com/bobmcallan/raymonds/internal/stores"
)

// DefaultMaxItems is used when New is given a non-positive maximum.
const DefaultMaxItems = 4

// MinForModal is the smallest selection that can be shown side by side.
const MinForModal = 2

var (
	// ErrSelectionFull is returned by Add when the selection is at capacity.
	// The selection is left unchanged.
	ErrSelectionFull = errors.New("comparison selection is full")
	ErrMissingID     = errors.New("company id is required")
)

// State is an immutable snapshot of the selection.
type State struct {
	Items       []models.CompanyScore
	IsModalOpen bool
	Max         int
}

// Len returns the number of selected items.
func (s State) Len() int { return len(s.Items) }

// Store is the comparison selection. The zero value is not usable; call New.
type Store struct {
	mu        sync.Mutex
	items     []models.CompanyScore
	modalOpen bool
	max       int
	version   uint64
	logger    *common.Logger
	listeners stores.Listeners[State]
}

func New(max int, logger *common.Logger) *Store {
	if max <= 0 {
		max = DefaultMaxItems
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Store{max: max, logger: logger}
}

// Subscribe registers fn to receive a snapshot after every state change.
func (s *Store) Subscribe(fn func(State)) func() {
	return s.listeners.Subscribe(fn)
}

// snapshot must be called with s.mu held.
func (s *Store) snapshot() State {
	items := make([]models.CompanyScore, len(s.items))
	copy(items, s.items)
	return State{Items: items, IsModalOpen: s.modalOpen, Max: s.max}
}

// update runs fn under the lock and notifies subscribers when it reports a change.
func (s *Store) update(fn func() bool) {
	s.mu.Lock()
	changed := fn()
	if !changed {
		s.mu.Unlock()
		return
	}
	s.version++
	version, state := s.version, s.snapshot()
	s.mu.Unlock()

	s.listeners.Publish(version, state)
}

func (s *Store) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Add appends item if it is not already selected. Adding a selected company
// is a no-op; adding to a full selection returns ErrSelectionFull.
func (s *Store) Add(item models.CompanyScore) error {
	if item.ID == "" {
		return ErrMissingID
	}

	var err error
	s.update(func() bool {
		if s.indexOf(item.ID) >= 0 {
			return false
		}
		if len(s.items) >= s.max {
			err = ErrSelectionFull
			return false
		}
		s.items = append(s.items, item)
		return true
	})

	if err != nil {
		s.logger.Debug().Str("company_id", item.ID).Int("max", s.max).Msg("Comparison selection full")
	}
	return err
}

// Remove drops id from the selection and reports whether it was present.
// The modal closes once fewer than two items remain.
func (s *Store) Remove(id string) bool {
	removed := false
	s.update(func() bool {
		i := s.indexOf(id)
		if i < 0 {
			return false
		}
		s.items = append(s.items[:i:i], s.items[i+1:]...)
		if len(s.items) < MinForModal {
			s.modalOpen = false
		}
		removed = true
		return true
	})
	return removed
}

// Clear empties the selection and closes the modal.
func (s *Store) Clear() {
	s.update(func() bool {
		changed := len(s.items) > 0 || s.modalOpen
		s.items = nil
		s.modalOpen = false
		return changed
	})
}

// OpenModal shows the comparison when at least two items are selected and
// reports whether the modal is open afterwards.
func (s *Store) OpenModal() bool {
	open := false
	s.update(func() bool {
		if len(s.items) < MinForModal {
			return false
		}
		open = true
		if s.modalOpen {
			return false
		}
		s.modalOpen = true
		return true
	})
	return open
}

func (s *Store) CloseModal() {
	s.update(func() bool {
		if !s.modalOpen {
			return false
		}
		s.modalOpen = false
		return true
	})
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Items returns the selection in insertion order.
func (s *Store) Items() []models.CompanyScore {
	return s.State().Items
}

func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) IsFull() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) >= s.max
}

func (s *Store) Max() int {
	return s.max
}
