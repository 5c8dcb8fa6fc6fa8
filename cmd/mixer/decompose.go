package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

var inputFlag = cli.StringFlag{
	Name:     "input",
	Usage:    "JSON file with the input values grouped by participant, - for stdin",
	Required: true,
}

var decomposeCommand = cli.Command{
	Name:   "decompose",
	Usage:  "Decompose the inputs of every participant of a round into outputs",
	Action: decomposeAction,
	Flags:  append([]cli.Flag{&inputFlag}, mixerFlags...),
}

func decomposeAction(ctx *cli.Context) error {
	groups, err := readGroups(ctx.String(inputFlag.Name))
	if err != nil {
		return err
	}

	mixer, err := newMixer(ctx)
	if err != nil {
		return err
	}

	outputs, err := mixer.CompleteMix(ctx.Context, groups)
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"outputs":   outputs,
		"leftovers": mixer.Leftovers(),
	})
}

func readGroups(path string) ([][]int64, error) {
	var buf []byte
	var err error
	if path == "-" {
		buf, err = io.ReadAll(os.Stdin)
	} else {
		buf, err = os.ReadFile(cleanAndExpandPath(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %s", err)
	}

	groups := make([][]int64, 0)
	if err := json.Unmarshal(buf, &groups); err != nil {
		return nil, fmt.Errorf("invalid input format, expected [[...],[...]]: %s", err)
	}
	return groups, nil
}
