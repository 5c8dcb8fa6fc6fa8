package combinationsearch

import (
	"context"
	"fmt"
	"sort"

	"github.com/ark-network/mixer/internal/core/ports"
)

const (
	// Every selected element is packed in 8 bits of the selection.
	indexBits        = 8
	maxValues        = 1 << indexBits
	maxCount         = 64 / indexBits
	ctxCheckInterval = 1024

	DefaultMaxAttempts = 2_000_000
	DefaultMaxResults  = 10_000
)

// ErrBudgetExhausted matches ports.ErrSearchBudgetExhausted.
var ErrBudgetExhausted = fmt.Errorf("%w", ports.ErrSearchBudgetExhausted)

type Config struct {
	// MaxAttempts bounds the number of visited nodes. Reaching it fails the
	// search with ErrBudgetExhausted.
	MaxAttempts int
	// MaxResults stops the search successfully once reached.
	MaxResults int
}

type service struct {
	maxAttempts int
	maxResults  int
}

// NewService returns a depth first search enumerating multisets in
// canonical order, so that every multiset is found once. Only sums not
// exceeding the target are accepted.
func NewService(cfg Config) ports.CombinationSearch {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	return &service{cfg.MaxAttempts, cfg.MaxResults}
}

func (s *service) Search(
	ctx context.Context, req ports.SearchRequest, fn func(ports.Combination) bool,
) error {
	if len(req.Values) > maxValues {
		return fmt.Errorf("too many values, max %d", maxValues)
	}
	if req.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative")
	}
	for _, v := range req.Values {
		if v <= 0 {
			return fmt.Errorf("values must be positive")
		}
	}

	count := req.MaxCount
	if count > maxCount {
		count = maxCount
	}
	if count <= 0 || len(req.Values) <= 0 {
		return nil
	}

	// Walk values in descending order to prune branches that can no longer
	// reach the target.
	order := make([]int, len(req.Values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return req.Values[order[i]] > req.Values[order[j]]
	})

	w := &walker{
		ctx:         ctx,
		values:      req.Values,
		order:       order,
		low:         req.Target - req.Tolerance,
		high:        req.Target,
		maxCount:    count,
		maxAttempts: s.maxAttempts,
		maxResults:  s.maxResults,
		fn:          fn,
	}
	if err := w.walk(0, 0, 0, 0); err != nil {
		return err
	}
	return nil
}

func (s *service) Materialize(c ports.Combination, values []int64) []int64 {
	amounts := make([]int64, 0, c.Count)
	for i := 0; i < c.Count; i++ {
		idx := int((c.Selection >> (uint(i) * indexBits)) & (maxValues - 1))
		if idx >= len(values) {
			return nil
		}
		amounts = append(amounts, values[idx])
	}
	return amounts
}

type walker struct {
	ctx         context.Context
	values      []int64
	order       []int
	low, high   int64
	maxCount    int
	maxAttempts int
	maxResults  int
	fn          func(ports.Combination) bool

	attempts int
	results  int
	stopped  bool
}

// walk extends the current multiset with elements at position start or
// later of the descending order.
func (w *walker) walk(start, count int, sum int64, selection uint64) error {
	for pos := start; pos < len(w.order); pos++ {
		if w.stopped {
			return nil
		}

		w.attempts++
		if w.attempts > w.maxAttempts {
			return fmt.Errorf(
				"%w: %d attempts", ErrBudgetExhausted, w.maxAttempts,
			)
		}
		if w.attempts%ctxCheckInterval == 0 {
			if err := w.ctx.Err(); err != nil {
				return fmt.Errorf("%w: %w", ErrBudgetExhausted, err)
			}
		}

		idx := w.order[pos]
		value := w.values[idx]
		if sum+value > w.high {
			continue
		}
		// Not even filling every slot left with this value reaches the
		// target, smaller values won't either.
		if sum+value*int64(w.maxCount-count) < w.low {
			return nil
		}

		newSum := sum + value
		newSelection := selection | uint64(idx)<<(uint(count)*indexBits)
		if newSum >= w.low {
			w.results++
			if !w.fn(ports.Combination{
				Sum: newSum, Count: count + 1, Selection: newSelection,
			}) || w.results >= w.maxResults {
				w.stopped = true
				return nil
			}
		}

		if count+1 < w.maxCount {
			if err := w.walk(pos, count+1, newSum, newSelection); err != nil {
				return err
			}
		}
	}
	return nil
}
