package domain

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwallet/chainfee"
)

// Fee returns the fee in satoshis paid for vsize vbytes at the given rate.
func Fee(feeRate chainfee.SatPerKVByte, vsize int) int64 {
	return int64(feeRate.FeeForVSize(lntypes.VByte(vsize)).ToUnit(btcutil.AmountSatoshi))
}

// FeeRateFromSatPerVByte converts a sat/vB rate into the kvB rate used
// for fee computations.
func FeeRateFromSatPerVByte(satPerVByte float64) chainfee.SatPerKVByte {
	return chainfee.SatPerKVByte(satPerVByte * 1000)
}
