package filesource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/ark-network/mixer/internal/core/ports"
)

type source struct {
	lock   *sync.Mutex
	rounds [][][]int64
	next   int
}

// NewInputSource loads a JSON array of rounds, each an array of groups of
// input values. Rounds are served cyclically.
func NewInputSource(path string) (ports.InputSource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %s", err)
	}
	return NewInputSourceFromJSON(buf)
}

func NewInputSourceFromJSON(buf []byte) (ports.InputSource, error) {
	rounds := make([][][]int64, 0)
	if err := json.Unmarshal(buf, &rounds); err != nil {
		return nil, fmt.Errorf("invalid input file format: %s", err)
	}
	if len(rounds) <= 0 {
		return nil, fmt.Errorf("missing rounds in input file")
	}
	for i, groups := range rounds {
		if len(groups) <= 0 {
			return nil, fmt.Errorf("round %d: missing participants", i)
		}
	}
	return &source{&sync.Mutex{}, rounds, 0}, nil
}

func (s *source) NextRound(ctx context.Context) ([][]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	round := s.rounds[s.next]
	s.next = (s.next + 1) % len(s.rounds)

	groups := make([][]int64, 0, len(round))
	for _, g := range round {
		groups = append(groups, append([]int64{}, g...))
	}
	return groups, nil
}
