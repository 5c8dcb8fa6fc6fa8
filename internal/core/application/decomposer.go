package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ark-network/mixer/internal/core/domain"
	"github.com/ark-network/mixer/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const (
	maxOutputsCount = 8
	minDenomUsage   = 2
	maxDenomUsage   = 7
)

// Decompose splits the inputs of a participant into output amounts. The
// other participants' inputs are only used to guess which denominations
// are likely to be shared. The returned outputs never spend more than the
// inputs nor leave more than the dust threshold unallocated, and fit in
// availableVsize.
// Inputs too small for any denomination become a single change output;
// when their sum doesn't even cover the change output fee,
// domain.ErrInputBelowChangeFee is returned.
func (m *Mixer) Decompose(
	ctx context.Context, myInputs, othersInputs []int64, availableVsize int,
) ([]domain.Output, error) {
	if err := validateInputs(myInputs); err != nil {
		return nil, err
	}

	pool := make([]int64, 0, len(myInputs)+len(othersInputs))
	pool = append(pool, myInputs...)
	pool = append(pool, othersInputs...)
	denoms := m.FilterDenominations(pool)

	inputSum := sum(myInputs)
	candidates := domain.NewCandidateSet()

	naive, loss, err := m.naiveDecomposition(denoms, inputSum, availableVsize)
	if err != nil {
		return nil, err
	}
	candidates.Add(naive)

	if err := m.optimizedDecompositions(
		ctx, candidates, denoms, inputSum, loss, availableVsize,
	); err != nil {
		return nil, err
	}

	ordered := OrderCandidates(m.random, candidates.List())
	best := BestCandidates(ordered)
	largestAmount := PickLargestAmount(m.random, best)
	selected := PickCandidate(m.random, best, largestAmount)

	if err := m.checkDecomposition(selected, inputSum, availableVsize); err != nil {
		m.metrics.ObserveAbortedDecomposition(abortReason(err))
		return nil, err
	}

	leftover := inputSum - selected.EffectiveCost()
	m.leftovers.push(leftover)
	m.metrics.ObserveDecomposition(len(selected.Outputs), leftover)

	log.Debugf(
		"decomposed %d sats into %d outputs out of %d candidates, leftover %d",
		inputSum, len(selected.Outputs), candidates.Len(), leftover,
	)

	return selected.Outputs, nil
}

// naiveDecomposition greedily takes the largest denominations, at most a
// random number of times each, and turns what is left into change. The
// returned loss is the amount too small to become change.
func (m *Mixer) naiveDecomposition(
	denoms []domain.Output, inputSum int64, availableVsize int,
) (domain.Candidate, int64, error) {
	remaining := inputSum
	remainingVsize := availableVsize
	changeVsize := m.changeScriptType.EstimateOutputVsize()
	maxUsage := minDenomUsage + m.random.Intn(maxDenomUsage-minDenomUsage+1)

	outputs := make([]domain.Output, 0)
	end := false
	for _, denom := range denoms {
		usage := 0
		for denom.EffectiveCost() <= remaining {
			// Go on only if both the denomination and a potential change fit.
			if remaining < m.minAllowedOutputAmount+m.changeFee ||
				remainingVsize < denom.Vsize()+changeVsize {
				end = true
				break
			}

			outputs = append(outputs, denom)
			remaining -= denom.EffectiveCost()
			remainingVsize -= denom.Vsize()
			usage++

			// The rest becomes change.
			if usage >= maxUsage {
				end = true
				break
			}
		}

		if end {
			break
		}
	}

	loss := int64(0)
	hasChange := false
	if remaining >= m.minAllowedOutputAmount+m.changeFee {
		outputs = append(
			outputs, domain.NewOutputFromAmount(remaining, m.changeScriptType, m.feeRate),
		)
		hasChange = true
	} else {
		// This goes to miners.
		loss = remaining
	}

	// The smallest denomination is larger than the input sum.
	if len(outputs) <= 0 {
		if remaining <= m.changeFee {
			return domain.Candidate{}, 0, fmt.Errorf(
				"%w: %d sats, change fee %d", domain.ErrInputBelowChangeFee,
				remaining, m.changeFee,
			)
		}
		outputs = append(
			outputs, domain.NewOutputFromAmount(remaining, m.changeScriptType, m.feeRate),
		)
		hasChange = true
		loss = 0
	}

	cost := loss + domain.OutputsCost(outputs)
	return domain.NewCandidate(outputs, cost, hasChange), loss, nil
}

// optimizedDecompositions registers the combinations of denominations
// found by the combination search. Every combination is re-validated here.
// If the search runs out of budget nothing is registered.
func (m *Mixer) optimizedDecompositions(
	ctx context.Context, candidates *domain.CandidateSet,
	denoms []domain.Output, inputSum, loss int64, availableVsize int,
) error {
	maxOutputs := availableVsize / domain.CheapestOutputVsize()
	if maxOutputs > maxOutputsCount {
		maxOutputs = maxOutputsCount
	}
	if maxOutputs <= 1 {
		return nil
	}

	denomsByCost := make(map[int64]domain.Output)
	values := make([]int64, 0, len(denoms))
	for _, d := range denoms {
		cost := d.EffectiveCost()
		if cost > inputSum {
			continue
		}
		if _, ok := denomsByCost[cost]; ok {
			continue
		}
		denomsByCost[cost] = d
		values = append(values, cost)
	}
	if len(values) <= 0 {
		return nil
	}

	maxLeftover := m.minAllowedOutputAmount + m.changeFee
	tolerance := maxLeftover / 2
	if loss > tolerance {
		tolerance = loss
	}

	searchCtx, cancel := context.WithTimeout(ctx, m.searchTimeout)
	defer cancel()

	found := domain.NewCandidateSet()
	err := m.search.Search(searchCtx, ports.SearchRequest{
		Target:    inputSum,
		Tolerance: tolerance,
		MaxCount:  maxOutputs,
		Values:    values,
	}, func(c ports.Combination) bool {
		amounts := m.search.Materialize(c, values)
		if len(amounts) <= 0 || len(amounts) > maxOutputs {
			return true
		}

		outputs := make([]domain.Output, 0, len(amounts))
		for _, amount := range amounts {
			denom, ok := denomsByCost[amount]
			if !ok {
				return true
			}
			outputs = append(outputs, denom)
		}

		// The search ignores script kinds, vsize is checked here.
		if domain.OutputsVsize(outputs) > availableVsize {
			return true
		}
		effectiveCost := domain.OutputsEffectiveCost(outputs)
		if effectiveCost > inputSum || inputSum-effectiveCost > maxLeftover {
			return true
		}

		deficit := (inputSum - effectiveCost) + domain.OutputsCost(outputs)
		found.Add(domain.NewCandidate(outputs, deficit, false))
		return true
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, ports.ErrSearchBudgetExhausted) ||
			errors.Is(err, context.DeadlineExceeded) {
			m.metrics.ObserveSearchExhausted()
		}
		log.WithError(err).Warn("combination search failed, using naive decomposition")
		return nil
	}

	for _, c := range found.List() {
		candidates.Add(c)
	}
	return nil
}

func (m *Mixer) checkDecomposition(
	c domain.Candidate, inputSum int64, availableVsize int,
) error {
	effectiveCost := c.EffectiveCost()
	if effectiveCost > inputSum {
		return fmt.Errorf(
			"%w: %d sats spent out of %d", domain.ErrValueCreation,
			effectiveCost, inputSum,
		)
	}

	leftover := inputSum - effectiveCost
	maxLeftover := m.minAllowedOutputAmount +
		domain.Fee(m.feeRate, domain.LargestInputVsize())
	if leftover > maxLeftover {
		return fmt.Errorf(
			"%w: %d sats, max %d", domain.ErrExcessiveLoss, leftover, maxLeftover,
		)
	}

	if vsize := c.Vsize(); vsize > availableVsize {
		return fmt.Errorf(
			"%w: %d vbytes, available %d", domain.ErrVsizeBudgetExceeded,
			vsize, availableVsize,
		)
	}
	return nil
}

func abortReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValueCreation):
		return "value_creation"
	case errors.Is(err, domain.ErrExcessiveLoss):
		return "excessive_loss"
	case errors.Is(err, domain.ErrVsizeBudgetExceeded):
		return "vsize_budget"
	default:
		return "unknown"
	}
}
