package combinationsearch_test

import (
	"context"
	"testing"

	"github.com/ark-network/mixer/internal/core/ports"
	combinationsearch "github.com/ark-network/mixer/internal/infrastructure/combination-search"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	values := []int64{2, 5, 3}

	t.Run("valid", func(t *testing.T) {
		fixtures := []struct {
			name     string
			req      ports.SearchRequest
			expected [][]int64
		}{
			{
				name:     "exact_target",
				req:      ports.SearchRequest{Target: 10, MaxCount: 4, Values: values},
				expected: [][]int64{{5, 5}, {5, 3, 2}, {3, 3, 2, 2}},
			},
			{
				name:     "with_tolerance",
				req:      ports.SearchRequest{Target: 10, Tolerance: 2, MaxCount: 2, Values: values},
				expected: [][]int64{{5, 5}, {5, 3}},
			},
			{
				name:     "unreachable_target",
				req:      ports.SearchRequest{Target: 100, MaxCount: 8, Values: values},
				expected: [][]int64{},
			},
			{
				name:     "no_values",
				req:      ports.SearchRequest{Target: 10, MaxCount: 8},
				expected: [][]int64{},
			},
		}

		svc := combinationsearch.NewService(combinationsearch.Config{})
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				found := make([][]int64, 0)
				err := svc.Search(
					context.Background(), f.req, func(c ports.Combination) bool {
						amounts := svc.Materialize(c, f.req.Values)
						require.Len(t, amounts, c.Count)
						require.Equal(t, c.Sum, total(amounts))
						found = append(found, amounts)
						return true
					},
				)
				require.NoError(t, err)
				require.Equal(t, f.expected, found)
			})
		}
	})

	t.Run("stop", func(t *testing.T) {
		req := ports.SearchRequest{Target: 10, MaxCount: 4, Values: values}

		svc := combinationsearch.NewService(combinationsearch.Config{MaxResults: 1})
		count := 0
		err := svc.Search(context.Background(), req, func(ports.Combination) bool {
			count++
			return true
		})
		require.NoError(t, err)
		require.Equal(t, 1, count)

		svc = combinationsearch.NewService(combinationsearch.Config{})
		count = 0
		err = svc.Search(context.Background(), req, func(ports.Combination) bool {
			count++
			return count < 2
		})
		require.NoError(t, err)
		require.Equal(t, 2, count)
	})

	t.Run("budget_exhausted", func(t *testing.T) {
		req := ports.SearchRequest{Target: 10, MaxCount: 4, Values: values}

		svc := combinationsearch.NewService(combinationsearch.Config{MaxAttempts: 3})
		err := svc.Search(context.Background(), req, func(ports.Combination) bool {
			return true
		})
		require.ErrorIs(t, err, ports.ErrSearchBudgetExhausted)

		manyValues := make([]int64, 0, 200)
		for i := int64(1); i <= 200; i++ {
			manyValues = append(manyValues, i)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		svc = combinationsearch.NewService(combinationsearch.Config{
			MaxResults: 1 << 30,
		})
		err = svc.Search(ctx, ports.SearchRequest{
			Target: 800, MaxCount: 8, Values: manyValues,
		}, func(ports.Combination) bool {
			return true
		})
		require.ErrorIs(t, err, ports.ErrSearchBudgetExhausted)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid", func(t *testing.T) {
		tooManyValues := make([]int64, 257)
		for i := range tooManyValues {
			tooManyValues[i] = int64(i + 1)
		}

		fixtures := []struct {
			name        string
			req         ports.SearchRequest
			expectedErr string
		}{
			{
				name:        "too_many_values",
				req:         ports.SearchRequest{Target: 10, MaxCount: 2, Values: tooManyValues},
				expectedErr: "too many values, max 256",
			},
			{
				name:        "negative_tolerance",
				req:         ports.SearchRequest{Target: 10, Tolerance: -1, MaxCount: 2, Values: values},
				expectedErr: "tolerance must not be negative",
			},
			{
				name:        "non_positive_value",
				req:         ports.SearchRequest{Target: 10, MaxCount: 2, Values: []int64{5, 0}},
				expectedErr: "values must be positive",
			},
		}

		svc := combinationsearch.NewService(combinationsearch.Config{})
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				err := svc.Search(context.Background(), f.req, func(ports.Combination) bool {
					return true
				})
				require.EqualError(t, err, f.expectedErr)
			})
		}
	})

	t.Run("materialize_out_of_range", func(t *testing.T) {
		svc := combinationsearch.NewService(combinationsearch.Config{})
		require.Nil(t, svc.Materialize(ports.Combination{Count: 1, Selection: 3}, values))
	})
}

func total(amounts []int64) int64 {
	tot := int64(0)
	for _, a := range amounts {
		tot += a
	}
	return tot
}
