// Package dice provides seeded random rolls for deterministic rule resolution.
//
// Every roll in a session comes from one Roller seeded with the session seed,
// so replaying the same intents from a restored snapshot reproduces the same
// outcomes without re-contacting the generation service.
package dice

import (
	"math/rand"
	"sync"
)

//go:generate mockgen -destination=mock/mock.go -package=dicemock github.com/llmadventure/llmadventure/internal/pkg/dice Roller

// Roller produces random rolls for the rule engine
type Roller interface {
	// Roll returns a value in [1, sides]
	Roll(sides int) int

	// Chance returns true with the given probability in [0, 1]
	Chance(p float64) bool

	// IntN returns a value in [0, n)
	IntN(n int) int
}

// Seeded implements Roller with a deterministic seeded source
type Seeded struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeeded creates a roller from a session seed
func NewSeeded(seed int64) *Seeded {
	// nolint:gosec // reproducibility is the point, not cryptographic strength
	return &Seeded{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns a value in [1, sides]
func (r *Seeded) Roll(sides int) int {
	if sides <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(sides) + 1
}

// Chance returns true with probability p
func (r *Seeded) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64() < p
}

// IntN returns a value in [0, n)
func (r *Seeded) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}
