package diagram

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	idLength   = 8
	idAlphabet = "abcdefghijklmnopqrstuvwxyz1234567890"
	idLetters  = 26
)

// RandomIDs generates 8 character ids whose first character is a lowercase
// letter and whose remaining characters are lowercase letters or digits.
// Collisions are possible and are not checked.
type RandomIDs struct {
	rng *rand.Rand
}

// NewRandomIDs creates a generator seeded with seed.
func NewRandomIDs(seed int64) *RandomIDs {
	return &RandomIDs{rng: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededIDs creates a generator seeded from the wall clock.
func NewTimeSeededIDs() *RandomIDs {
	return NewRandomIDs(time.Now().UnixNano())
}

// NextID implements IDGenerator.
func (r *RandomIDs) NextID() string {
	var sb strings.Builder
	sb.Grow(idLength)
	sb.WriteByte(idAlphabet[r.rng.Intn(idLetters)])
	for i := 0; i < idLength-1; i++ {
		sb.WriteByte(idAlphabet[r.rng.Intn(len(idAlphabet))])
	}
	return sb.String()
}

// UUIDs generates random (version 4) UUID strings.
type UUIDs struct{}

// NextID implements IDGenerator.
func (UUIDs) NextID() string {
	return uuid.NewString()
}

// Strategy names accepted by NewIDGenerator.
const (
	StrategyRandom = "random"
	StrategyUUID   = "uuid"
)

// NewIDGenerator returns the generator registered under name.
func NewIDGenerator(name string) (IDGenerator, error) {
	switch name {
	case "", StrategyRandom:
		return NewTimeSeededIDs(), nil
	case StrategyUUID:
		return UUIDs{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy: %s", name)
	}
}

// IsValidRandomID reports whether id has the shape RandomIDs produces.
func IsValidRandomID(id string) bool {
	if len(id) != idLength {
		return false
	}
	if id[0] < 'a' || id[0] > 'z' {
		return false
	}
	for i := 1; i < len(id); i++ {
		if !strings.ContainsRune(idAlphabet, rune(id[i])) {
			return false
		}
	}
	return true
}
