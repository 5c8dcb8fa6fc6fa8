package application

import (
	"sort"

	"github.com/ark-network/mixer/internal/core/domain"
)

const maxFilterSeverityIncrement = 0.5

type breakdownEntry struct {
	output domain.Output
	count  int64
}

// FilterDenominations returns the denominations likely to be produced by
// more than one participant of the given pool of input values, ordered by
// descending effective cost. The result only depends on the pool.
func (m *Mixer) FilterDenominations(pool []int64) []domain.Output {
	maxCost := secondLargest(pool)

	denoms := make([]domain.Output, 0, len(m.denominations))
	for _, d := range m.denominations {
		if d.EffectiveCost() <= maxCost {
			denoms = append(denoms, d)
		}
	}
	sortByEffectiveCost(denoms)

	frequencies := make(map[domain.OutputKey]int64)
	for _, value := range pool {
		for _, entry := range m.breakDown(value, denoms) {
			frequencies[entry.output.Key()] += entry.count
		}
	}

	preFiltered := make([]domain.Output, 0)
	for _, d := range denoms {
		if frequencies[d.Key()] > 1 {
			preFiltered = append(preFiltered, d)
		}
	}

	return pruneSimilar(preFiltered)
}

// breakDown greedily decomposes value into the given denominations, taking
// the most expensive first. What is left, if large enough, becomes change.
func (m *Mixer) breakDown(value int64, denoms []domain.Output) []breakdownEntry {
	remaining := value
	minRemaining := m.minAllowedOutputAmount + m.changeFee
	entries := make([]breakdownEntry, 0)

	for _, d := range denoms {
		if remaining < minRemaining {
			break
		}
		if count := remaining / d.EffectiveCost(); count > 0 {
			entries = append(entries, breakdownEntry{d, count})
			remaining -= count * d.EffectiveCost()
		}
	}

	if remaining >= minRemaining {
		change := domain.NewOutputFromAmount(remaining, m.changeScriptType, m.feeRate)
		entries = append(entries, breakdownEntry{change, 1})
	}

	return entries
}

// pruneSimilar drops denominations too close to the previous kept one.
// Filtering is heavy on the top and fades to nothing at the bottom: large
// amounts rarely collide, small ones are produced by most participants.
func pruneSimilar(denoms []domain.Output) []domain.Output {
	kept := make([]domain.Output, 0, len(denoms))
	if len(denoms) <= 0 {
		return kept
	}

	increment := maxFilterSeverityIncrement / float64(len(denoms))
	remainingCount := len(denoms)
	for _, d := range denoms {
		severity := 1 + float64(remainingCount)*increment
		if len(kept) <= 0 ||
			float64(d.Amount()) <= float64(kept[len(kept)-1].Amount())/severity {
			kept = append(kept, d)
		}
		remainingCount--
	}
	return kept
}

func sortByEffectiveCost(denoms []domain.Output) {
	sort.SliceStable(denoms, func(i, j int) bool {
		a, b := denoms[i], denoms[j]
		if a.EffectiveCost() != b.EffectiveCost() {
			return a.EffectiveCost() > b.EffectiveCost()
		}
		if a.Amount() != b.Amount() {
			return a.Amount() > b.Amount()
		}
		return a.ScriptType() < b.ScriptType()
	})
}
