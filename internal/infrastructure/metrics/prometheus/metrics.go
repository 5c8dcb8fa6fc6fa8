package metrics

import (
	"github.com/ark-network/mixer/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mixer"

type service struct {
	decompositions        prometheus.Counter
	outputs               prometheus.Histogram
	leftovers             prometheus.Histogram
	abortedDecompositions *prometheus.CounterVec
	searchExhausted       prometheus.Counter
	rounds                *prometheus.CounterVec
	participants          prometheus.Histogram
	sharedOutputs         prometheus.Histogram
}

// NewService registers the decomposition and round metrics to reg.
func NewService(reg prometheus.Registerer) ports.Metrics {
	factory := promauto.With(reg)

	return &service{
		decompositions: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decompositions_total",
				Help:      "Number of successful participant decompositions",
			},
		),
		outputs: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "decomposition_outputs",
				Help:      "Number of outputs of a participant decomposition",
				Buckets:   prometheus.LinearBuckets(1, 1, 12),
			},
		),
		leftovers: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "decomposition_leftover_sats",
				Help:      "Amount left unallocated by a participant decomposition",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
		abortedDecompositions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "aborted_decompositions_total",
				Help:      "Number of decompositions rejected by the safety checks",
			},
			[]string{
				"reason",
			},
		),
		searchExhausted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_exhausted_total",
				Help:      "Number of combination searches that ran out of budget",
			},
		),
		rounds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rounds_total",
				Help:      "Number of rounds by outcome",
			},
			[]string{
				"status",
			},
		),
		participants: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "round_participants",
				Help:      "Number of participants of a round",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 9),
			},
		),
		sharedOutputs: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "round_shared_outputs",
				Help:      "Number of output values produced by at least two participants",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 9),
			},
		),
	}
}

func (s *service) ObserveDecomposition(outputs int, leftover int64) {
	s.decompositions.Inc()
	s.outputs.Observe(float64(outputs))
	s.leftovers.Observe(float64(leftover))
}

func (s *service) ObserveAbortedDecomposition(reason string) {
	s.abortedDecompositions.WithLabelValues(reason).Inc()
}

func (s *service) ObserveSearchExhausted() {
	s.searchExhausted.Inc()
}

func (s *service) ObserveRound(participants, sharedOutputs int, failed bool) {
	status := "finalized"
	if failed {
		status = "failed"
	}
	s.rounds.WithLabelValues(status).Inc()
	s.participants.Observe(float64(participants))
	if !failed {
		s.sharedOutputs.Observe(float64(sharedOutputs))
	}
}
