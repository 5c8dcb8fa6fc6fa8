package application

import (
	"context"

	"github.com/ark-network/mixer/internal/core/domain"
)

type Service interface {
	Start() error
	Stop()
	RunRound(ctx context.Context) (*domain.Round, error)
	LastRound() *domain.Round
	Leftovers() []int64
	GetInfo(ctx context.Context) (*ServiceInfo, error)
}

type ServiceInfo struct {
	RoundInterval          int64
	FeeRate                int64
	MinAllowedOutputAmount int64
	MaxAllowedOutputAmount int64
	IsTaprootAllowed       bool
	MaxTransactionSize     int
	MaxVsizeCredential     int
}

type ServiceConfig struct {
	MixerConfig
	RoundInterval int64
}
