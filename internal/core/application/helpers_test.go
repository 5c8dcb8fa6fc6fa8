package application_test

import (
	"context"
	"math/rand"

	"github.com/ark-network/mixer/internal/core/application"
	"github.com/ark-network/mixer/internal/core/domain"
	"github.com/ark-network/mixer/internal/core/ports"
)

var (
	oneSatPerVByte = domain.FeeRateFromSatPerVByte(1)

	p2wpkhOnlyConfig = application.MixerConfig{
		FeeRate:                oneSatPerVByte,
		MinAllowedOutputAmount: 5000,
		MaxAllowedOutputAmount: 134_375_000_000,
	}
	taprootConfig = application.MixerConfig{
		FeeRate:                domain.FeeRateFromSatPerVByte(3),
		MinAllowedOutputAmount: 5000,
		MaxAllowedOutputAmount: 134_375_000_000,
		IsTaprootAllowed:       true,
	}
)

// fixedRandom always draws the same number and never shuffles.
type fixedRandom struct {
	n int
}

func (r fixedRandom) Intn(n int) int {
	if r.n >= n {
		return n - 1
	}
	return r.n
}

func (r fixedRandom) Shuffle(int, func(i, j int)) {}

// fakeSearch returns the given combinations, whatever the request.
type fakeSearch struct {
	combos  [][]int64
	err     error
	calls   int
	request ports.SearchRequest
}

func (s *fakeSearch) Search(
	ctx context.Context, req ports.SearchRequest, fn func(ports.Combination) bool,
) error {
	s.calls++
	s.request = req
	for i, combo := range s.combos {
		if !fn(ports.Combination{Count: len(combo), Selection: uint64(i)}) {
			break
		}
	}
	if s.err != nil {
		return s.err
	}
	return ctx.Err()
}

func (s *fakeSearch) Materialize(c ports.Combination, _ []int64) []int64 {
	return s.combos[c.Selection]
}

// fuzzSearch returns random, mostly invalid, combinations.
type fuzzSearch struct {
	random *rand.Rand
	combos [][]int64
}

func (s *fuzzSearch) Search(
	_ context.Context, req ports.SearchRequest, fn func(ports.Combination) bool,
) error {
	s.combos = s.combos[:0]
	for i := 0; i < 50; i++ {
		count := 1 + s.random.Intn(10)
		combo := make([]int64, 0, count)
		for j := 0; j < count; j++ {
			if s.random.Intn(10) == 0 {
				combo = append(combo, 1+s.random.Int63n(req.Target))
				continue
			}
			combo = append(combo, req.Values[s.random.Intn(len(req.Values))])
		}
		s.combos = append(s.combos, combo)
		if !fn(ports.Combination{Count: count, Selection: uint64(i)}) {
			return nil
		}
	}
	return nil
}

func (s *fuzzSearch) Materialize(c ports.Combination, _ []int64) []int64 {
	return s.combos[c.Selection]
}

type fakeMetrics struct {
	decompositions int
	aborted        []string
	exhausted      int
	rounds         int
	failedRounds   int
}

func (m *fakeMetrics) ObserveDecomposition(int, int64) {
	m.decompositions++
}

func (m *fakeMetrics) ObserveAbortedDecomposition(reason string) {
	m.aborted = append(m.aborted, reason)
}

func (m *fakeMetrics) ObserveSearchExhausted() {
	m.exhausted++
}

func (m *fakeMetrics) ObserveRound(_, _ int, failed bool) {
	m.rounds++
	if failed {
		m.failedRounds++
	}
}

func randomGroups(random *rand.Rand, maxParticipants, maxInputs int) [][]int64 {
	count := 1 + random.Intn(maxParticipants)
	groups := make([][]int64, 0, count)
	for i := 0; i < count; i++ {
		inputCount := 1 + random.Intn(maxInputs)
		inputs := make([]int64, 0, inputCount)
		for j := 0; j < inputCount; j++ {
			inputs = append(inputs, 10_000+random.Int63n(10_000_000))
		}
		groups = append(groups, inputs)
	}
	return groups
}

func amounts(outputs []domain.Output) []int64 {
	list := make([]int64, 0, len(outputs))
	for _, o := range outputs {
		list = append(list, o.Amount())
	}
	return list
}
