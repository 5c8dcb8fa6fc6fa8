package ports

type Metrics interface {
	ObserveDecomposition(outputs int, leftover int64)
	ObserveAbortedDecomposition(reason string)
	ObserveSearchExhausted()
	ObserveRound(participants, sharedOutputs int, failed bool)
}
