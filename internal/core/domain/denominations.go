package domain

import (
	"math"
	"sort"

	"github.com/lightningnetwork/lnd/lnwallet/chainfee"
)

type progression struct {
	base       int64
	multiplier int64
}

// Every progression is strictly increasing.
var progressions = []progression{
	{2, 1},  // powers of 2
	{3, 1},  // powers of 3
	{3, 2},  // powers of 3 * 2
	{10, 1}, // 1-2-5 series
	{10, 2},
	{10, 5},
}

type DenominationParams struct {
	FeeRate                chainfee.SatPerKVByte
	MinAllowedOutputAmount int64
	MaxAllowedOutputAmount int64
	IsTaprootAllowed       bool
}

// NewDenominations builds the catalog of standard amounts in the allowed
// range, ordered by descending effective amount. When taproot is allowed
// pickScriptType is called once per candidate amount.
func NewDenominations(
	params DenominationParams, pickScriptType func() ScriptType,
) []Output {
	seen := make(map[OutputKey]struct{})
	denominations := make([]Output, 0)

	for _, p := range progressions {
		for _, amount := range p.terms(params.MaxAllowedOutputAmount) {
			if amount < params.MinAllowedOutputAmount {
				continue
			}

			scriptType := P2WPKH
			if params.IsTaprootAllowed {
				scriptType = pickScriptType()
			}

			denom := NewOutputFromDenomination(amount, scriptType, params.FeeRate)
			if _, ok := seen[denom.Key()]; ok {
				continue
			}
			seen[denom.Key()] = struct{}{}
			denominations = append(denominations, denom)
		}
	}

	sort.SliceStable(denominations, func(i, j int) bool {
		a, b := denominations[i], denominations[j]
		if a.EffectiveAmount() != b.EffectiveAmount() {
			return a.EffectiveAmount() > b.EffectiveAmount()
		}
		if a.Amount() != b.Amount() {
			return a.Amount() > b.Amount()
		}
		return a.ScriptType() < b.ScriptType()
	})

	return denominations
}

// terms returns the progression values up to max, in increasing order.
func (p progression) terms(max int64) []int64 {
	terms := make([]int64, 0)
	for power := int64(1); ; power *= p.base {
		if power > math.MaxInt64/p.multiplier {
			break
		}
		term := power * p.multiplier
		if term > max {
			break
		}
		terms = append(terms, term)
		if power > math.MaxInt64/p.base {
			break
		}
	}
	return terms
}
