package id

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
)

// digits is the width of the numeric part of a sequence identifier.
const digits = 14

// Sequence mints prefixed identifiers with a zero-padded monotonic counter,
// e.g. "app00000000000001". Each prefix owns an independent counter that
// starts at 1 and is never reused or reset for the life of the Sequence.
type Sequence struct {
	mu       sync.Mutex
	counters map[string]uint64
}

// NewSequence creates a Sequence with all counters at zero.
func NewSequence() *Sequence {
	return &Sequence{counters: make(map[string]uint64)}
}

// Next returns the next identifier for the given prefix.
func (s *Sequence) Next(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[prefix]++
	return fmt.Sprintf("%s%0*d", prefix, digits, s.counters[prefix])
}

// Peek returns the last counter value minted for the given prefix.
// Returns 0 if the prefix has never been used.
func (s *Sequence) Peek(prefix string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[prefix]
}

// Secret returns n random bytes encoded as standard base64.
// Suitable for simulated credentials like webhook MAC secrets.
func Secret(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}
