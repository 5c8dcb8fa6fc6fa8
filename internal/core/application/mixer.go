package application

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/ark-network/mixer/internal/core/domain"
	"github.com/ark-network/mixer/internal/core/ports"
	"github.com/lightningnetwork/lnd/lnwallet/chainfee"
)

const defaultSearchTimeout = 2 * time.Second

type MixerConfig struct {
	FeeRate                chainfee.SatPerKVByte
	MinAllowedOutputAmount int64
	MaxAllowedOutputAmount int64
	IsTaprootAllowed       bool
	MaxTransactionSize     int
	MaxVsizeCredential     int
	SearchTimeout          time.Duration
}

func (c MixerConfig) withDefaults() MixerConfig {
	if c.MaxTransactionSize <= 0 {
		c.MaxTransactionSize = DefaultMaxTransactionSize
	}
	if c.MaxVsizeCredential <= 0 {
		c.MaxVsizeCredential = DefaultMaxVsizeCredential
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = defaultSearchTimeout
	}
	return c
}

func (c MixerConfig) validate() error {
	if c.FeeRate < 0 {
		return fmt.Errorf("fee rate must not be negative")
	}
	if c.MinAllowedOutputAmount <= 0 {
		return fmt.Errorf("min allowed output amount must be greater than 0")
	}
	if c.MaxAllowedOutputAmount < c.MinAllowedOutputAmount {
		return fmt.Errorf("max allowed output amount must not be lower than min")
	}
	return nil
}

// Mixer is the context of a single round. It owns the denominations
// catalog, the random source and the leftover log shared by the
// decompositions of all participants.
type Mixer struct {
	feeRate                chainfee.SatPerKVByte
	minAllowedOutputAmount int64
	maxAllowedOutputAmount int64
	isTaprootAllowed       bool
	maxTransactionSize     int
	maxVsizeCredential     int
	searchTimeout          time.Duration

	changeScriptType domain.ScriptType
	changeFee        int64
	denominations    []domain.Output

	random    ports.RandomSource
	search    ports.CombinationSearch
	metrics   ports.Metrics
	leftovers *leftoverLog
}

func NewMixer(
	cfg MixerConfig, search ports.CombinationSearch,
	random ports.RandomSource, metrics ports.Metrics,
) (*Mixer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if search == nil {
		return nil, fmt.Errorf("missing combination search")
	}
	if random == nil {
		return nil, fmt.Errorf("missing random source")
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	cfg = cfg.withDefaults()

	pickScriptType := func() domain.ScriptType {
		if random.Intn(2) == 0 {
			return domain.P2WPKH
		}
		return domain.Taproot
	}

	changeScriptType := domain.P2WPKH
	if cfg.IsTaprootAllowed {
		changeScriptType = pickScriptType()
	}

	denominations := domain.NewDenominations(domain.DenominationParams{
		FeeRate:                cfg.FeeRate,
		MinAllowedOutputAmount: cfg.MinAllowedOutputAmount,
		MaxAllowedOutputAmount: cfg.MaxAllowedOutputAmount,
		IsTaprootAllowed:       cfg.IsTaprootAllowed,
	}, pickScriptType)

	return &Mixer{
		feeRate:                cfg.FeeRate,
		minAllowedOutputAmount: cfg.MinAllowedOutputAmount,
		maxAllowedOutputAmount: cfg.MaxAllowedOutputAmount,
		isTaprootAllowed:       cfg.IsTaprootAllowed,
		maxTransactionSize:     cfg.MaxTransactionSize,
		maxVsizeCredential:     cfg.MaxVsizeCredential,
		searchTimeout:          cfg.SearchTimeout,
		changeScriptType:       changeScriptType,
		changeFee:              domain.Fee(cfg.FeeRate, changeScriptType.EstimateOutputVsize()),
		denominations:          denominations,
		random:                 random,
		search:                 search,
		metrics:                metrics,
		leftovers:              newLeftoverLog(),
	}, nil
}

func (m *Mixer) FeeRate() chainfee.SatPerKVByte {
	return m.feeRate
}

func (m *Mixer) ChangeScriptType() domain.ScriptType {
	return m.changeScriptType
}

func (m *Mixer) ChangeFee() int64 {
	return m.changeFee
}

// Denominations returns a copy of the round catalog.
func (m *Mixer) Denominations() []domain.Output {
	return append([]domain.Output{}, m.denominations...)
}

// Leftovers returns the log of unallocated amounts, one entry per
// successful decomposition.
func (m *Mixer) Leftovers() []int64 {
	return m.leftovers.list()
}

// Mixes decomposes the inputs of every participant, in order, yielding the
// output face values of each. The sequence stops at the first error.
// Iterating it again draws new randomness and appends new leftovers.
func (m *Mixer) Mixes(
	ctx context.Context, groups [][]int64,
) iter.Seq2[[]int64, error] {
	return func(yield func([]int64, error) bool) {
		totalInputCount := 0
		for _, g := range groups {
			totalInputCount += len(g)
		}
		if totalInputCount <= 0 {
			yield(nil, domain.ErrNoInputs)
			return
		}

		maxVsizeCredential := MaxVsizeCredentialValue(
			m.maxTransactionSize, m.maxVsizeCredential, totalInputCount,
		)

		for i, myInputs := range groups {
			others := make([]int64, 0, totalInputCount-len(myInputs))
			for j, g := range groups {
				if i != j {
					others = append(others, g...)
				}
			}

			availableVsize := AvailableVsize(maxVsizeCredential, len(myInputs))
			outputs, err := m.Decompose(ctx, myInputs, others, availableVsize)
			if err != nil {
				yield(nil, fmt.Errorf("participant %d: %w", i, err))
				return
			}

			amounts := make([]int64, 0, len(outputs))
			for _, o := range outputs {
				amounts = append(amounts, o.Amount())
			}
			if !yield(amounts, nil) {
				return
			}
		}
	}
}

// CompleteMix returns the output face values of every participant, in the
// same order as the given groups. No partial result is returned on error.
func (m *Mixer) CompleteMix(ctx context.Context, groups [][]int64) ([][]int64, error) {
	results := make([][]int64, 0, len(groups))
	for outputs, err := range m.Mixes(ctx, groups) {
		if err != nil {
			return nil, err
		}
		results = append(results, outputs)
	}
	return results, nil
}

type noopMetrics struct{}

func (noopMetrics) ObserveDecomposition(int, int64)    {}
func (noopMetrics) ObserveAbortedDecomposition(string) {}
func (noopMetrics) ObserveSearchExhausted()            {}
func (noopMetrics) ObserveRound(int, int, bool)        {}
