package ports

import (
	"context"

	"github.com/lightningnetwork/lnd/lnwallet/chainfee"
)

type FeeEstimator interface {
	FeeRate(ctx context.Context) (chainfee.SatPerKVByte, error)
}
