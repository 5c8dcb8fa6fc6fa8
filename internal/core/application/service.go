package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/ark-network/mixer/internal/core/domain"
	"github.com/ark-network/mixer/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

type service struct {
	cfg ServiceConfig

	feeEstimator ports.FeeEstimator
	inputSource  ports.InputSource
	scheduler    ports.SchedulerService
	search       ports.CombinationSearch
	random       ports.RandomSource
	metrics      ports.Metrics

	lock      *sync.Mutex
	lastRound *domain.Round
	leftovers *leftoverLog
}

func NewService(
	cfg ServiceConfig,
	feeEstimator ports.FeeEstimator, inputSource ports.InputSource,
	schedulerSvc ports.SchedulerService, search ports.CombinationSearch,
	random ports.RandomSource, metrics ports.Metrics,
) (Service, error) {
	if err := cfg.MixerConfig.validate(); err != nil {
		return nil, err
	}
	if cfg.RoundInterval < 2 {
		return nil, fmt.Errorf("invalid round interval, must be at least 2 seconds")
	}
	if feeEstimator == nil {
		return nil, fmt.Errorf("missing fee estimator")
	}
	if inputSource == nil {
		return nil, fmt.Errorf("missing input source")
	}
	if search == nil {
		return nil, fmt.Errorf("missing combination search")
	}
	if random == nil {
		return nil, fmt.Errorf("missing random source")
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	cfg.MixerConfig = cfg.MixerConfig.withDefaults()

	return &service{
		cfg:          cfg,
		feeEstimator: feeEstimator,
		inputSource:  inputSource,
		scheduler:    schedulerSvc,
		search:       search,
		random:       random,
		metrics:      metrics,
		lock:         &sync.Mutex{},
		leftovers:    newLeftoverLog(),
	}, nil
}

func (s *service) Start() error {
	if s.scheduler == nil {
		return fmt.Errorf("missing scheduler")
	}
	startImmediately := true
	if err := s.scheduler.ScheduleTask(
		s.cfg.RoundInterval, startImmediately, s.runScheduledRound,
	); err != nil {
		return err
	}
	s.scheduler.Start()
	return nil
}

func (s *service) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	log.Debug("stopped round scheduler")
}

// RunRound fetches the participants of a new round and decomposes their
// inputs. A failed round is returned together with the error that caused
// the failure.
func (s *service) RunRound(ctx context.Context) (*domain.Round, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	round := domain.NewRound()
	defer func() {
		s.lastRound = round
		s.metrics.ObserveRound(
			len(round.Participants), round.SharedOutputCount(), round.IsFailed(),
		)
	}()

	if _, err := round.StartRegistration(); err != nil {
		return nil, err
	}

	groups, err := s.inputSource.NextRound(ctx)
	if err != nil {
		return s.failRound(round, fmt.Errorf("failed to fetch round inputs: %w", err))
	}
	if _, err := round.RegisterParticipants(groups); err != nil {
		return s.failRound(round, err)
	}

	feeRate, err := s.feeEstimator.FeeRate(ctx)
	if err != nil {
		return s.failRound(round, fmt.Errorf("failed to estimate fee rate: %w", err))
	}

	cfg := s.cfg.MixerConfig
	cfg.FeeRate = feeRate
	mixer, err := NewMixer(cfg, s.search, s.random, s.metrics)
	if err != nil {
		return s.failRound(round, err)
	}

	if _, err := round.StartDecomposition(
		int64(feeRate), mixer.ChangeFee(),
	); err != nil {
		return s.failRound(round, err)
	}

	i := 0
	for outputs, err := range mixer.Mixes(ctx, groups) {
		if err != nil {
			return s.failRound(round, err)
		}

		leftover := mixer.Leftovers()[i]
		if _, err := round.RecordDecomposition(domain.Result{
			ParticipantIndex: i,
			Outputs:          outputs,
			Leftover:         leftover,
		}); err != nil {
			return s.failRound(round, err)
		}
		s.leftovers.push(leftover)
		i++
	}

	if _, err := round.EndDecomposition(); err != nil {
		return s.failRound(round, err)
	}

	log.WithFields(log.Fields{
		"round":          round.Id,
		"participants":   len(round.Participants),
		"shared_outputs": round.SharedOutputCount(),
		"fee_rate":       round.FeeRate,
		"input_amount":   round.TotInputAmount(),
		"output_amount":  round.TotOutputAmount(),
	}).Info("round finalized")

	return round, nil
}

func (s *service) LastRound() *domain.Round {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.lastRound
}

// Leftovers returns the unallocated amounts of every participant
// decomposed since the service was created.
func (s *service) Leftovers() []int64 {
	return s.leftovers.list()
}

func (s *service) GetInfo(ctx context.Context) (*ServiceInfo, error) {
	feeRate, err := s.feeEstimator.FeeRate(ctx)
	if err != nil {
		return nil, err
	}

	return &ServiceInfo{
		RoundInterval:          s.cfg.RoundInterval,
		FeeRate:                int64(feeRate),
		MinAllowedOutputAmount: s.cfg.MinAllowedOutputAmount,
		MaxAllowedOutputAmount: s.cfg.MaxAllowedOutputAmount,
		IsTaprootAllowed:       s.cfg.IsTaprootAllowed,
		MaxTransactionSize:     s.cfg.MaxTransactionSize,
		MaxVsizeCredential:     s.cfg.MaxVsizeCredential,
	}, nil
}

func (s *service) runScheduledRound() {
	round, err := s.RunRound(context.Background())
	if err != nil {
		log.WithError(err).Warn("round failed")
		return
	}
	log.Debugf("completed round %s", round.Id)
}

func (s *service) failRound(round *domain.Round, err error) (*domain.Round, error) {
	round.Fail(err)
	log.WithError(err).Warnf("failed round %s", round.Id)
	return round, err
}
