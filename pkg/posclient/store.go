package posclient

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/pkg/pricing"
	"go.uber.org/zap"
)

// CartState is Empty or Populated
type CartState int

const (
	CartEmpty CartState = iota
	CartPopulated
)

func (s CartState) String() string {
	if s == CartPopulated {
		return "populated"
	}
	return "empty"
}

// Store owns the cart lines and the per-line discount overrides. Every commit
// is written to the mirror; the mirror is read back only by Hydrate.
type Store struct {
	mu        sync.RWMutex
	lines     []CartLine
	overrides map[uuid.UUID]float64
	mirror    Mirror
	hydrated  bool
	logger    *zap.Logger
}

// NewStore creates an empty store. A nil mirror disables mirroring.
func NewStore(mirror Mirror, logger *zap.Logger) *Store {
	if mirror == nil {
		mirror = nopMirror{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		overrides: make(map[uuid.UUID]float64),
		mirror:    mirror,
		logger:    logger,
	}
}

// Hydrate seeds the store from the mirror. Only the first call reads it.
// Overrides are not mirrored, so hydrated lines carry the discount they
// were saved with until the server cart replaces them.
func (s *Store) Hydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return nil
	}
	s.hydrated = true

	lines, err := s.mirror.Load()
	if err != nil {
		return err
	}
	s.lines = lines
	return nil
}

// Replace swaps in the server cart, re-applying local discount overrides.
// Overrides for items no longer in the cart are dropped.
func (s *Store) Replace(remote *RemoteCart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hydrated = true
	s.lines = HydrateLines(remote, s.overrides)
	for id := range s.overrides {
		if s.indexOf(id) < 0 {
			delete(s.overrides, id)
		}
	}
	s.commit()
}

// SetOverride changes the effective discount of a line without touching the server
func (s *Store) SetOverride(itemID uuid.UUID, pct float64) error {
	if !pricing.ValidDiscount(pct) {
		return ErrInvalidDiscount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(itemID)
	if i < 0 {
		return ErrNotInCart
	}
	s.overrides[itemID] = pct
	s.lines[i].DiscountPercent = pct
	s.commit()
	return nil
}

// Clear empties the cart and forgets every override
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.overrides = make(map[uuid.UUID]float64)
	s.commit()
}

// Lines returns a copy of the cart lines
func (s *Store) Lines() []CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]CartLine(nil), s.lines...)
}

// Line returns the line for itemID
func (s *Store) Line(itemID uuid.UUID) (CartLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(itemID); i >= 0 {
		return s.lines[i], true
	}
	return CartLine{}, false
}

// QuantityOf returns the quantity of itemID already in the cart
func (s *Store) QuantityOf(itemID uuid.UUID) int {
	line, _ := s.Line(itemID)
	return line.Quantity
}

// Override returns the local discount override for itemID, if any
func (s *Store) Override(itemID uuid.UUID) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pct, ok := s.overrides[itemID]
	return pct, ok
}

// Totals prices the current lines
func (s *Store) Totals() pricing.Totals {
	return Totals(s.Lines())
}

// State reports whether the cart has lines
func (s *Store) State() CartState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.lines) == 0 {
		return CartEmpty
	}
	return CartPopulated
}

func (s *Store) indexOf(itemID uuid.UUID) int {
	for i := range s.lines {
		if s.lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// commit mirrors the lines. Callers hold s.mu.
func (s *Store) commit() {
	if err := s.mirror.Save(s.lines); err != nil {
		s.logger.Warn("failed to write cart mirror", zap.Error(err))
	}
}
