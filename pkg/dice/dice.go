// Package dice supplies die rolls to a game. Production games draw from a
// seeded pseudo-random generator; tests and replays use scripted rolls.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Faces is the number of faces on a die.
const Faces = 6

// Source produces die values in 1..6.
type Source interface {
	Roll() int
}

// Random is a Source backed by math/rand. It is not safe for concurrent
// use; callers serialize access per game.
type Random struct {
	seed int64
	rng  *rand.Rand
}

// NewRandom returns a Source seeded with seed. The same seed replays the
// same rolls.
func NewRandom(seed int64) *Random {
	return &Random{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// NewSeed generates a seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Seed returns the seed the source was created with.
func (r *Random) Seed() int64 {
	return r.seed
}

// Roll returns a uniformly distributed value in 1..6.
func (r *Random) Roll() int {
	return r.rng.Intn(Faces) + 1
}

// Script replays a fixed list of values, starting over when it runs out.
type Script struct {
	values []int
	next   int
}

// NewScript returns a Source that yields values in order. Every value must
// be in 1..6.
func NewScript(values ...int) (*Script, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("dice script is empty")
	}
	for _, v := range values {
		if v < 1 || v > Faces {
			return nil, fmt.Errorf("die value %d out of range 1-%d", v, Faces)
		}
	}
	return &Script{values: append([]int(nil), values...)}, nil
}

// Roll returns the next scripted value.
func (s *Script) Roll() int {
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	return v
}

// Pair rolls two dice.
func Pair(src Source) (int, int) {
	return src.Roll(), src.Roll()
}
