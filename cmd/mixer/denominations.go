package main

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/urfave/cli/v2"
)

var denominationsCommand = cli.Command{
	Name:   "denominations",
	Usage:  "Print the catalog of standard output amounts",
	Action: denominationsAction,
	Flags:  mixerFlags,
}

func denominationsAction(ctx *cli.Context) error {
	mixer, err := newMixer(ctx)
	if err != nil {
		return err
	}

	denominations := make([]map[string]interface{}, 0)
	for _, d := range mixer.Denominations() {
		denominations = append(denominations, map[string]interface{}{
			"amount":         btcutil.Amount(d.Amount()).String(),
			"sats":           d.Amount(),
			"script_type":    d.ScriptType().String(),
			"script_class":   d.ScriptType().ScriptClass().String(),
			"fee":            d.Fee(),
			"effective_cost": d.EffectiveCost(),
		})
	}

	return printJSON(map[string]interface{}{
		"change_script_type": mixer.ChangeScriptType().String(),
		"change_fee":         mixer.ChangeFee(),
		"denominations":      denominations,
	})
}
