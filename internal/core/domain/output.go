package domain

import (
	"fmt"

	"github.com/lightningnetwork/lnd/lnwallet/chainfee"
)

// OutputKey identifies interchangeable outputs. It is comparable and can be
// used as a map key.
type OutputKey struct {
	Amount     int64
	ScriptType ScriptType
	Fee        int64
}

// Output is an immutable output candidate: a denomination or a change.
type Output struct {
	amount     int64
	scriptType ScriptType
	fee        int64
	inputFee   int64
}

// NewOutputFromDenomination creates an output whose face value is amount.
func NewOutputFromDenomination(
	amount int64, scriptType ScriptType, feeRate chainfee.SatPerKVByte,
) Output {
	return Output{
		amount:     amount,
		scriptType: scriptType,
		fee:        Fee(feeRate, scriptType.EstimateOutputVsize()),
		inputFee:   Fee(feeRate, scriptType.EstimateInputVsize()),
	}
}

// NewOutputFromAmount creates an output spending exactly amount, creation
// fee included. Its face value is amount minus the output fee.
func NewOutputFromAmount(
	amount int64, scriptType ScriptType, feeRate chainfee.SatPerKVByte,
) Output {
	fee := Fee(feeRate, scriptType.EstimateOutputVsize())
	return Output{
		amount:     amount - fee,
		scriptType: scriptType,
		fee:        fee,
		inputFee:   Fee(feeRate, scriptType.EstimateInputVsize()),
	}
}

func (o Output) Amount() int64 {
	return o.amount
}

func (o Output) ScriptType() ScriptType {
	return o.scriptType
}

// Fee is the cost of creating the output.
func (o Output) Fee() int64 {
	return o.fee
}

// InputFee is the cost of spending the output later.
func (o Output) InputFee() int64 {
	return o.inputFee
}

func (o Output) EffectiveAmount() int64 {
	return o.amount - o.fee
}

func (o Output) EffectiveCost() int64 {
	return o.amount + o.fee
}

func (o Output) Vsize() int {
	return o.scriptType.EstimateOutputVsize()
}

func (o Output) Key() OutputKey {
	return OutputKey{o.amount, o.scriptType, o.fee}
}

func (o Output) Equal(other Output) bool {
	return o.Key() == other.Key()
}

func (o Output) String() string {
	return fmt.Sprintf("%d:%s", o.amount, o.scriptType)
}

// OutputsCost is the fee paid to create the outputs plus the fee needed to
// spend them again.
func OutputsCost(outputs []Output) int64 {
	cost := int64(0)
	for _, o := range outputs {
		cost += o.fee + o.inputFee
	}
	return cost
}

func OutputsEffectiveCost(outputs []Output) int64 {
	tot := int64(0)
	for _, o := range outputs {
		tot += o.EffectiveCost()
	}
	return tot
}

func OutputsVsize(outputs []Output) int {
	tot := 0
	for _, o := range outputs {
		tot += o.Vsize()
	}
	return tot
}
