package speaker

import (
	"log"
	"sync"
)

// Rule is a single permission entry.
type Rule struct {
	Ref     Ref
	Allowed bool
}

// Store holds the per-guild speaker rules in insertion order, together
// with an immutable lookup snapshot that is rebuilt on every mutation.
// The everyone entry is always present; Reset and Set never remove it.
type Store struct {
	mu       sync.RWMutex
	rules    []Rule
	index    map[Ref]int
	snapshot map[Ref]bool
}

// NewStore creates a store seeded with everyone -> allowed.
func NewStore() *Store {
	s := &Store{}
	s.resetLocked()
	return s
}

// Set upserts a rule and rebuilds the lookup snapshot.
func (s *Store) Set(ref Ref, allowed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[ref]; ok {
		s.rules[i].Allowed = allowed
	} else {
		s.index[ref] = len(s.rules)
		s.rules = append(s.rules, Rule{Ref: ref, Allowed: allowed})
	}
	s.rebuildLocked()
}

// Reset drops every rule and restores the single everyone -> allowed default.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.rules = []Rule{{Ref: Everyone, Allowed: true}}
	s.index = map[Ref]int{Everyone: 0}
	s.rebuildLocked()
}

func (s *Store) rebuildLocked() {
	snap := make(map[Ref]bool, len(s.rules))
	for _, r := range s.rules {
		snap[r.Ref] = r.Allowed
	}
	s.snapshot = snap
}

// Resolve returns the effective permission for a user holding the given
// roles. A user rule wins over any role rule; roles are checked in the
// order the gateway supplied them; everyone is the final fallback.
func (s *Store) Resolve(userID string, roleIDs []string) bool {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	if allowed, ok := snap[UserRef(userID)]; ok {
		return allowed
	}
	for _, id := range roleIDs {
		if allowed, ok := snap[RoleRef(id)]; ok {
			return allowed
		}
	}
	if allowed, ok := snap[Everyone]; ok {
		return allowed
	}
	// Unreachable while the everyone invariant holds.
	log.Println("[ERR] speaker: permission table is missing the everyone entry")
	return true
}

// Rules returns a copy of all rules in insertion order.
func (s *Store) Rules() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}
