package domain

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/lightningnetwork/lnd/input"
)

const (
	P2WPKH ScriptType = iota
	Taproot
)

// ScriptTypes lists every supported output kind.
var ScriptTypes = []ScriptType{P2WPKH, Taproot}

var (
	emptyTxVsize = (&input.TxWeightEstimator{}).VSize()

	p2wpkhOutputVsize  = (&input.TxWeightEstimator{}).AddP2WKHOutput().VSize() - emptyTxVsize
	taprootOutputVsize = (&input.TxWeightEstimator{}).AddP2TROutput().VSize() - emptyTxVsize
	p2wpkhInputVsize   = (&input.TxWeightEstimator{}).AddP2WKHInput().VSize() - emptyTxVsize
	taprootInputVsize  = (&input.TxWeightEstimator{}).AddTaprootKeySpendInput(txscript.SigHashDefault).VSize() - emptyTxVsize
)

// ScriptType is the kind of script locking an output. It determines the
// virtual size of the output and of the input spending it later.
type ScriptType int

func (s ScriptType) String() string {
	switch s {
	case P2WPKH:
		return "P2WPKH"
	case Taproot:
		return "TAPROOT"
	default:
		return "UNKNOWN"
	}
}

// EstimateOutputVsize returns the vbytes an output of this kind adds to a tx.
func (s ScriptType) EstimateOutputVsize() int {
	if s == Taproot {
		return taprootOutputVsize
	}
	return p2wpkhOutputVsize
}

// EstimateInputVsize returns the vbytes an input spending an output of this
// kind adds to a tx, witness included.
func (s ScriptType) EstimateInputVsize() int {
	if s == Taproot {
		return taprootInputVsize
	}
	return p2wpkhInputVsize
}

// ScriptClass returns the standard txscript class of outputs of this kind.
func (s ScriptType) ScriptClass() txscript.ScriptClass {
	switch s {
	case Taproot:
		return txscript.WitnessV1TaprootTy
	default:
		return txscript.WitnessV0PubKeyHashTy
	}
}

// CheapestOutputVsize is the smallest output vsize among all script kinds.
func CheapestOutputVsize() int {
	cheapest := 0
	for i, s := range ScriptTypes {
		if size := s.EstimateOutputVsize(); i == 0 || size < cheapest {
			cheapest = size
		}
	}
	return cheapest
}

// LargestInputVsize is the biggest input vsize among all script kinds.
func LargestInputVsize() int {
	largest := 0
	for _, s := range ScriptTypes {
		if size := s.EstimateInputVsize(); size > largest {
			largest = size
		}
	}
	return largest
}
