package application

import (
	"sort"

	"github.com/ark-network/mixer/internal/core/domain"
	"github.com/ark-network/mixer/internal/core/ports"
)

// Candidates costing up to bestCostNumerator/bestCostDenominator times the
// best one are considered equally good.
const (
	bestCostNumerator   = 12
	bestCostDenominator = 10
)

// OrderCandidates sorts candidates by ascending cost, then those without
// change first, then those mixing script kinds first. Candidates are
// shuffled beforehand so that ties end up in random order.
func OrderCandidates(
	random ports.RandomSource, candidates []domain.Candidate,
) []domain.Candidate {
	ordered := append([]domain.Candidate{}, candidates...)
	random.Shuffle(len(ordered), func(i, j int) {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	})

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Cost != b.Cost {
			return a.Cost < b.Cost
		}
		if a.HasChange != b.HasChange {
			return !a.HasChange
		}
		return a.MixesScriptTypes() && !b.MixesScriptTypes()
	})
	return ordered
}

// BestCandidates returns the prefix of the ordered candidates whose cost is
// within 20% of the first one.
func BestCandidates(ordered []domain.Candidate) []domain.Candidate {
	if len(ordered) <= 0 {
		return nil
	}

	maxCost := ordered[0].Cost * bestCostNumerator
	best := make([]domain.Candidate, 0, len(ordered))
	for _, c := range ordered {
		if c.Cost*bestCostDenominator > maxCost {
			break
		}
		best = append(best, c)
	}
	return best
}

// PickLargestAmount picks one of the distinct largest output amounts of the
// candidates. Candidates with different largest amounts differ a lot, while
// those sharing it often differ only in their smallest outputs.
func PickLargestAmount(
	random ports.RandomSource, candidates []domain.Candidate,
) int64 {
	seen := make(map[int64]struct{})
	amounts := make([]int64, 0)
	for _, c := range candidates {
		amount := c.LargestAmount()
		if _, ok := seen[amount]; ok {
			continue
		}
		seen[amount] = struct{}{}
		amounts = append(amounts, amount)
	}
	if len(amounts) <= 0 {
		return 0
	}
	return amounts[random.Intn(len(amounts))]
}

// PickCandidate picks one of the candidates whose largest output amount is
// largestAmount.
func PickCandidate(
	random ports.RandomSource, candidates []domain.Candidate, largestAmount int64,
) domain.Candidate {
	matching := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.LargestAmount() == largestAmount {
			matching = append(matching, c)
		}
	}
	if len(matching) <= 0 {
		return domain.Candidate{}
	}
	return matching[random.Intn(len(matching))]
}
