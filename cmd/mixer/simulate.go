package main

import (
	"github.com/ark-network/mixer/internal/core/application"
	"github.com/ark-network/mixer/internal/core/ports"
	feeestimator "github.com/ark-network/mixer/internal/infrastructure/fee-estimator"
	filesource "github.com/ark-network/mixer/internal/infrastructure/input-source/file"
	randomsource "github.com/ark-network/mixer/internal/infrastructure/input-source/random"
	"github.com/urfave/cli/v2"
)

var (
	roundsFlag = cli.IntFlag{
		Name:  "rounds",
		Usage: "number of rounds to simulate",
		Value: 1,
	}
	roundsFileFlag = cli.StringFlag{
		Name:  "rounds-file",
		Usage: "JSON file with the rounds to replay, random rounds if missing",
	}
	minParticipantsFlag = cli.IntFlag{
		Name:  "min-participants",
		Usage: "min number of participants of a random round",
		Value: 5,
	}
	maxParticipantsFlag = cli.IntFlag{
		Name:  "max-participants",
		Usage: "max number of participants of a random round",
		Value: 50,
	}
	maxInputsFlag = cli.IntFlag{
		Name:  "max-inputs",
		Usage: "max number of inputs of a random participant",
		Value: 3,
	}
	minInputFlag = cli.Int64Flag{
		Name:  "min-input",
		Usage: "min random input amount in sats",
		Value: 10_000,
	}
	maxInputFlag = cli.Int64Flag{
		Name:  "max-input",
		Usage: "max random input amount in sats",
		Value: 100_000_000,
	}
)

var simulateCommand = cli.Command{
	Name:   "simulate",
	Usage:  "Run rounds with synthetic or recorded inputs and print their summary",
	Action: simulateAction,
	Flags: append([]cli.Flag{
		&roundsFlag, &roundsFileFlag, &minParticipantsFlag, &maxParticipantsFlag,
		&maxInputsFlag, &minInputFlag, &maxInputFlag,
	}, mixerFlags...),
}

func simulateAction(ctx *cli.Context) error {
	inputSource, err := inputSourceFromFlags(ctx)
	if err != nil {
		return err
	}
	feeEstimator, err := feeestimator.NewStaticService(ctx.Float64(feeRateFlag.Name))
	if err != nil {
		return err
	}

	// Rounds are run on demand, no scheduler needed.
	svc, err := application.NewService(
		application.ServiceConfig{
			MixerConfig:   mixerConfigFromFlags(ctx),
			RoundInterval: 2,
		},
		feeEstimator, inputSource, nil, searchFromFlags(ctx),
		application.NewRandomSource(ctx.Int64(seedFlag.Name)), nil,
	)
	if err != nil {
		return err
	}

	summaries := make([]map[string]interface{}, 0, ctx.Int(roundsFlag.Name))
	for i := 0; i < ctx.Int(roundsFlag.Name); i++ {
		round, err := svc.RunRound(ctx.Context)
		if err != nil {
			return err
		}

		outputs := 0
		leftover := int64(0)
		for _, r := range round.Results {
			outputs += len(r.Outputs)
			leftover += r.Leftover
		}
		summaries = append(summaries, map[string]interface{}{
			"round":          round.Id,
			"participants":   len(round.Participants),
			"outputs":        outputs,
			"shared_outputs": round.SharedOutputCount(),
			"input_amount":   round.TotInputAmount(),
			"output_amount":  round.TotOutputAmount(),
			"leftover":       leftover,
		})
	}

	return printJSON(summaries)
}

func inputSourceFromFlags(ctx *cli.Context) (ports.InputSource, error) {
	if path := ctx.String(roundsFileFlag.Name); len(path) > 0 {
		return filesource.NewInputSource(cleanAndExpandPath(path))
	}
	return randomsource.NewInputSource(randomsource.Config{
		MinParticipants:         ctx.Int(minParticipantsFlag.Name),
		MaxParticipants:         ctx.Int(maxParticipantsFlag.Name),
		MaxInputsPerParticipant: ctx.Int(maxInputsFlag.Name),
		MinInputAmount:          ctx.Int64(minInputFlag.Name),
		MaxInputAmount:          ctx.Int64(maxInputFlag.Name),
		Seed:                    ctx.Int64(seedFlag.Name),
	})
}
