package feeestimator

import (
	"context"
	"fmt"
	"time"

	"github.com/ark-network/mixer/internal/core/domain"
	"github.com/ark-network/mixer/internal/core/ports"
	"github.com/lightningnetwork/lnd/lnwallet/chainfee"
)

const (
	confTarget = 1

	minFeeUpdateTimeout = 5 * time.Minute
	maxFeeUpdateTimeout = 20 * time.Minute
)

type service struct {
	estimator chainfee.Estimator
}

// NewStaticService returns a fee estimator always returning the given
// sat/vB rate.
func NewStaticService(satPerVByte float64) (ports.FeeEstimator, error) {
	if satPerVByte < 0 {
		return nil, fmt.Errorf("fee rate must not be negative")
	}
	feeRate := domain.FeeRateFromSatPerVByte(satPerVByte)
	estimator := chainfee.NewStaticEstimator(feeRate.FeePerKWeight(), 0)
	return newService(estimator)
}

// NewEsploraService returns a fee estimator polling the fee-estimates
// endpoint of an esplora instance.
func NewEsploraService(url string) (ports.FeeEstimator, error) {
	if len(url) <= 0 {
		return nil, fmt.Errorf("missing esplora url")
	}
	estimator, err := chainfee.NewWebAPIEstimator(
		newEsploraClient(url), true, minFeeUpdateTimeout, maxFeeUpdateTimeout,
	)
	if err != nil {
		return nil, err
	}
	return newService(estimator)
}

func newService(estimator chainfee.Estimator) (ports.FeeEstimator, error) {
	if err := estimator.Start(); err != nil {
		return nil, fmt.Errorf("failed to start fee estimator: %s", err)
	}
	return &service{estimator}, nil
}

func (s *service) FeeRate(_ context.Context) (chainfee.SatPerKVByte, error) {
	feeRate, err := s.estimator.EstimateFeePerKW(confTarget)
	if err != nil {
		return 0, err
	}

	return feeRate.FeePerKVByte(), nil
}
