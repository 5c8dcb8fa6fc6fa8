package ports

import (
	"context"
	"errors"
)

// ErrSearchBudgetExhausted is returned by a CombinationSearch that ran out of
// time or attempts before completing the enumeration.
var ErrSearchBudgetExhausted = errors.New("combination search budget exhausted")

type SearchRequest struct {
	Target    int64
	Tolerance int64
	MaxCount  int
	Values    []int64
}

// Combination is a multiset of values whose sum is close to the target.
// Selection is opaque and only meaningful to the search that produced it.
type Combination struct {
	Sum       int64
	Count     int
	Selection uint64
}

// CombinationSearch enumerates multisets of at most MaxCount elements drawn
// with repetition from Values whose sum lies in [Target-Tolerance, Target].
// Search calls fn for every combination found and stops when fn returns
// false.
type CombinationSearch interface {
	Search(ctx context.Context, req SearchRequest, fn func(Combination) bool) error
	Materialize(c Combination, values []int64) []int64
}
