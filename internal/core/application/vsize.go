package application

import "github.com/ark-network/mixer/internal/core/domain"

const (
	DefaultMaxTransactionSize = 100_000
	DefaultMaxVsizeCredential = 255

	// version, locktime and the two 3 bytes varints are non witness data,
	// marker and flag are witness data.
	sharedOverhead = 4*(4+4+3+3) + 1 + 1
)

// MaxVsizeCredentialValue is the vsize every input of the round can claim:
// the standard tx size left after the shared overhead split evenly across
// inputs, capped by the protocol credential limit.
func MaxVsizeCredentialValue(maxTxSize, maxCredential, totalInputCount int) int {
	if totalInputCount <= 0 {
		return maxCredential
	}
	perInput := (maxTxSize - sharedOverhead) / totalInputCount
	if perInput > maxCredential {
		return maxCredential
	}
	return perInput
}

// AvailableVsize is the vsize a participant can spend on outputs once its
// own inputs are paid for.
func AvailableVsize(maxVsizeCredential, inputCount int) int {
	available := inputCount * (maxVsizeCredential - domain.P2WPKH.EstimateInputVsize())
	if available < 0 {
		return 0
	}
	return available
}
