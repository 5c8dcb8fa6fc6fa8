package application

import (
	"sort"
	"sync"

	"github.com/ark-network/mixer/internal/core/domain"
)

// leftoverLog is the append-only log of the amounts left unallocated by
// every successful decomposition.
type leftoverLog struct {
	lock      *sync.RWMutex
	leftovers []int64
}

func newLeftoverLog() *leftoverLog {
	return &leftoverLog{&sync.RWMutex{}, make([]int64, 0)}
}

func (l *leftoverLog) push(leftover int64) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.leftovers = append(l.leftovers, leftover)
}

func (l *leftoverLog) list() []int64 {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return append([]int64{}, l.leftovers...)
}

func sum(values []int64) int64 {
	tot := int64(0)
	for _, v := range values {
		tot += v
	}
	return tot
}

// secondLargest returns the second largest value, or the only one if there
// is just one.
func secondLargest(values []int64) int64 {
	if len(values) <= 0 {
		return 0
	}
	sorted := append([]int64{}, values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })
	if len(sorted) == 1 {
		return sorted[0]
	}
	return sorted[1]
}

func validateInputs(inputs []int64) error {
	if len(inputs) <= 0 {
		return domain.ErrNoInputs
	}
	for _, in := range inputs {
		if in <= 0 {
			return domain.ErrInvalidInput
		}
	}
	return nil
}
