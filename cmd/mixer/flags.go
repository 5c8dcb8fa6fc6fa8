package main

import (
	"time"

	"github.com/ark-network/mixer/internal/core/application"
	"github.com/ark-network/mixer/internal/core/domain"
	"github.com/ark-network/mixer/internal/core/ports"
	combinationsearch "github.com/ark-network/mixer/internal/infrastructure/combination-search"
	"github.com/urfave/cli/v2"
)

var (
	logLevelFlag = cli.IntFlag{
		Name:  "log-level",
		Usage: "logrus level, 4 is info, 5 is debug",
		Value: 3,
	}
	feeRateFlag = cli.Float64Flag{
		Name:  "fee-rate",
		Usage: "fee rate in sat/vB",
		Value: 2,
	}
	minOutputFlag = cli.Int64Flag{
		Name:  "min-output",
		Usage: "min allowed output amount in sats",
		Value: 5000,
	}
	maxOutputFlag = cli.Int64Flag{
		Name:  "max-output",
		Usage: "max allowed output amount in sats",
		Value: 134375000000,
	}
	taprootFlag = cli.BoolFlag{
		Name:  "taproot",
		Usage: "allow taproot outputs",
		Value: true,
	}
	seedFlag = cli.Int64Flag{
		Name:  "seed",
		Usage: "random seed, 0 for a random one",
		Value: 0,
	}
	maxTxSizeFlag = cli.IntFlag{
		Name:  "max-tx-size",
		Usage: "max standard transaction size in vbytes",
		Value: application.DefaultMaxTransactionSize,
	}
	maxVsizeCredentialFlag = cli.IntFlag{
		Name:  "max-vsize-credential",
		Usage: "max vsize every input can claim",
		Value: application.DefaultMaxVsizeCredential,
	}
	searchTimeoutFlag = cli.DurationFlag{
		Name:  "search-timeout",
		Usage: "time budget of the combination search of every participant",
		Value: 2 * time.Second,
	}
	searchMaxAttemptsFlag = cli.IntFlag{
		Name:  "search-max-attempts",
		Usage: "max number of nodes visited by the combination search",
		Value: combinationsearch.DefaultMaxAttempts,
	}
	searchMaxResultsFlag = cli.IntFlag{
		Name:  "search-max-results",
		Usage: "max number of combinations returned by the combination search",
		Value: combinationsearch.DefaultMaxResults,
	}

	mixerFlags = []cli.Flag{
		&feeRateFlag, &minOutputFlag, &maxOutputFlag, &taprootFlag, &seedFlag,
		&maxTxSizeFlag, &maxVsizeCredentialFlag, &searchTimeoutFlag,
		&searchMaxAttemptsFlag, &searchMaxResultsFlag,
	}
)

func mixerConfigFromFlags(ctx *cli.Context) application.MixerConfig {
	return application.MixerConfig{
		FeeRate:                domain.FeeRateFromSatPerVByte(ctx.Float64(feeRateFlag.Name)),
		MinAllowedOutputAmount: ctx.Int64(minOutputFlag.Name),
		MaxAllowedOutputAmount: ctx.Int64(maxOutputFlag.Name),
		IsTaprootAllowed:       ctx.Bool(taprootFlag.Name),
		MaxTransactionSize:     ctx.Int(maxTxSizeFlag.Name),
		MaxVsizeCredential:     ctx.Int(maxVsizeCredentialFlag.Name),
		SearchTimeout:          ctx.Duration(searchTimeoutFlag.Name),
	}
}

func searchFromFlags(ctx *cli.Context) ports.CombinationSearch {
	return combinationsearch.NewService(combinationsearch.Config{
		MaxAttempts: ctx.Int(searchMaxAttemptsFlag.Name),
		MaxResults:  ctx.Int(searchMaxResultsFlag.Name),
	})
}

func newMixer(ctx *cli.Context) (*application.Mixer, error) {
	return application.NewMixer(
		mixerConfigFromFlags(ctx), searchFromFlags(ctx),
		application.NewRandomSource(ctx.Int64(seedFlag.Name)), nil,
	)
}
