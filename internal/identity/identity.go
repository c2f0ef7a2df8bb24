// Package identity allocates identifiers for new records.
package identity

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator produces identifiers with negligible collision probability.
type Generator interface {
	NewID() string
}

// UUID generates random (version 4) UUIDs in canonical form.
type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}

// Default is the generator used when none is configured.
var Default Generator = UUID{}

// Sequence yields prefix-1, prefix-2, ... and is meant for tests that need
// stable identifiers.
type Sequence struct {
	Prefix string

	mu sync.Mutex
	n  int
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.Prefix, s.n)
}

// Valid reports whether id is a canonical UUID string.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
