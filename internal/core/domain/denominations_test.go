package domain_test

import (
	"testing"

	"github.com/ark-network/mixer/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestNewDenominations(t *testing.T) {
	alwaysTaproot := func() domain.ScriptType { return domain.Taproot }
	alternate := func() func() domain.ScriptType {
		i := 0
		return func() domain.ScriptType {
			i++
			return domain.ScriptTypes[i%len(domain.ScriptTypes)]
		}
	}

	t.Run("bounds_and_uniqueness", func(t *testing.T) {
		fixtures := []struct {
			name   string
			params domain.DenominationParams
			pick   func() domain.ScriptType
		}{
			{
				name: "default_range",
				params: domain.DenominationParams{
					FeeRate:                feeRate,
					MinAllowedOutputAmount: 5000,
					MaxAllowedOutputAmount: 134_375_000_000,
				},
				pick: alwaysTaproot,
			},
			{
				name: "taproot_allowed",
				params: domain.DenominationParams{
					FeeRate:                domain.FeeRateFromSatPerVByte(12),
					MinAllowedOutputAmount: 5000,
					MaxAllowedOutputAmount: 134_375_000_000,
					IsTaprootAllowed:       true,
				},
				pick: alternate(),
			},
			{
				name: "narrow_range",
				params: domain.DenominationParams{
					FeeRate:                feeRate,
					MinAllowedOutputAmount: 1000,
					MaxAllowedOutputAmount: 1000,
				},
				pick: alwaysTaproot,
			},
		}

		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				denoms := domain.NewDenominations(f.params, f.pick)
				require.NotEmpty(t, denoms)

				seen := make(map[domain.OutputKey]struct{})
				for i, d := range denoms {
					require.GreaterOrEqual(t, d.Amount(), f.params.MinAllowedOutputAmount)
					require.LessOrEqual(t, d.Amount(), f.params.MaxAllowedOutputAmount)

					_, ok := seen[d.Key()]
					require.False(t, ok, "duplicate denomination %s", d)
					seen[d.Key()] = struct{}{}

					if !f.params.IsTaprootAllowed {
						require.Equal(t, domain.P2WPKH, d.ScriptType())
					}
					if i > 0 {
						require.GreaterOrEqual(
							t, denoms[i-1].EffectiveAmount(), d.EffectiveAmount(),
						)
					}
				}
			})
		}
	})

	t.Run("progressions", func(t *testing.T) {
		denoms := domain.NewDenominations(domain.DenominationParams{
			FeeRate:                feeRate,
			MinAllowedOutputAmount: 5000,
			MaxAllowedOutputAmount: 100_000,
		}, alwaysTaproot)

		amounts := make([]int64, 0, len(denoms))
		for _, d := range denoms {
			amounts = append(amounts, d.Amount())
		}
		// 2^i, 3^i, 2*3^i and the 1-2-5 series, 10000 appears once.
		require.Equal(t, []int64{
			100_000, 65_536, 59_049, 50_000, 39_366, 32_768, 20_000, 19_683,
			16_384, 13_122, 10_000, 8192, 6561, 5000,
		}, amounts)
	})

	t.Run("empty_range", func(t *testing.T) {
		denoms := domain.NewDenominations(domain.DenominationParams{
			FeeRate:                feeRate,
			MinAllowedOutputAmount: 5000,
			MaxAllowedOutputAmount: 4000,
		}, alwaysTaproot)
		require.Empty(t, denoms)
	})
}
