package session

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// Random is the pseudo-random source used to draw target numbers.
type Random interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// IDGenerator produces candidate session ids. Collisions are handled by the registry.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// NewRandom returns a PCG source seeded from crypto/rand.
// The returned source is not safe for concurrent use; the registry serializes access.
func NewRandom() (Random, error) {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return NewSeededRandom(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])), nil
}

func NewSeededRandom(seed1, seed2 uint64) Random {
	return rand.New(rand.NewPCG(seed1, seed2))
}
