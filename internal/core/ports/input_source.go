package ports

import "context"

// InputSource provides the effective input values of the participants of
// the next round, grouped by participant.
type InputSource interface {
	NextRound(ctx context.Context) ([][]int64, error)
}
