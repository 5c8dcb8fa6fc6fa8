package application

import (
	"math/rand"
	"time"

	"github.com/ark-network/mixer/internal/core/ports"
)

// NewRandomSource returns a seeded random source. A zero seed picks a
// time based one.
func NewRandomSource(seed int64) ports.RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
