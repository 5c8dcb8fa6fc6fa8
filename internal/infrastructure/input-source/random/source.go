package randomsource

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/ark-network/mixer/internal/core/ports"
)

type Config struct {
	MinParticipants         int
	MaxParticipants         int
	MaxInputsPerParticipant int
	MinInputAmount          int64
	MaxInputAmount          int64
	// Seed 0 picks a time based seed. The source draws from a stream
	// derived from Seed, distinct from an engine seeded with the same value.
	Seed int64
}

const seedSalt = 0x5eed

// streamSeed derives the seed of the source's own random stream.
func streamSeed(seed int64) int64 {
	if seed == 0 {
		return 0
	}
	if derived := seed ^ seedSalt; derived != 0 {
		return derived
	}
	return ^seed
}

func (c Config) validate() error {
	if c.MinParticipants <= 0 {
		return fmt.Errorf("min participants must be greater than 0")
	}
	if c.MaxParticipants < c.MinParticipants {
		return fmt.Errorf("max participants must not be lower than min")
	}
	if c.MaxInputsPerParticipant <= 0 {
		return fmt.Errorf("max inputs per participant must be greater than 0")
	}
	if c.MinInputAmount <= 0 {
		return fmt.Errorf("min input amount must be greater than 0")
	}
	if c.MaxInputAmount < c.MinInputAmount {
		return fmt.Errorf("max input amount must not be lower than min")
	}
	return nil
}

type source struct {
	cfg    Config
	lock   *sync.Mutex
	random *rand.Rand
}

// NewInputSource returns a source of synthetic rounds. Input amounts are
// log-uniformly distributed so that every order of magnitude is equally
// represented, like real wallet balances.
func NewInputSource(cfg Config) (ports.InputSource, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := streamSeed(cfg.Seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &source{cfg, &sync.Mutex{}, rand.New(rand.NewSource(seed))}, nil
}

func (s *source) NextRound(ctx context.Context) ([][]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	count := s.cfg.MinParticipants +
		s.random.Intn(s.cfg.MaxParticipants-s.cfg.MinParticipants+1)

	groups := make([][]int64, 0, count)
	for i := 0; i < count; i++ {
		inputCount := 1 + s.random.Intn(s.cfg.MaxInputsPerParticipant)
		inputs := make([]int64, 0, inputCount)
		for j := 0; j < inputCount; j++ {
			inputs = append(inputs, s.amount())
		}
		groups = append(groups, inputs)
	}
	return groups, nil
}

func (s *source) amount() int64 {
	low := math.Log(float64(s.cfg.MinInputAmount))
	high := math.Log(float64(s.cfg.MaxInputAmount))
	amount := int64(math.Exp(low + s.random.Float64()*(high-low)))

	// Float rounding may step out of bounds.
	if amount < s.cfg.MinInputAmount {
		return s.cfg.MinInputAmount
	}
	if amount > s.cfg.MaxInputAmount {
		return s.cfg.MaxInputAmount
	}
	return amount
}
