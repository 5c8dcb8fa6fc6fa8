package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ark-network/mixer/internal/core/application"
	"github.com/ark-network/mixer/internal/core/domain"
	"github.com/ark-network/mixer/internal/core/ports"
	combinationsearch "github.com/ark-network/mixer/internal/infrastructure/combination-search"
	feeestimator "github.com/ark-network/mixer/internal/infrastructure/fee-estimator"
	filesource "github.com/ark-network/mixer/internal/infrastructure/input-source/file"
	randomsource "github.com/ark-network/mixer/internal/infrastructure/input-source/random"
	metrics "github.com/ark-network/mixer/internal/infrastructure/metrics/prometheus"
	scheduler "github.com/ark-network/mixer/internal/infrastructure/scheduler/gocron"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
)

var (
	supportedSchedulers = supportedType{
		"gocron": {},
	}
	supportedFeeEstimators = supportedType{
		"static":  {},
		"esplora": {},
	}
	supportedInputSources = supportedType{
		"random": {},
		"file":   {},
	}
)

type Config struct {
	Datadir  string
	Port     uint32
	LogLevel int

	FeeEstimatorType       string
	FeeRate                float64
	EsploraURL             string
	MinAllowedOutputAmount int64
	MaxAllowedOutputAmount int64
	IsTaprootAllowed       bool
	Seed                   int64
	MaxTransactionSize     int
	MaxVsizeCredential     int
	SearchTimeout          time.Duration
	SearchMaxAttempts      int
	SearchMaxResults       int

	RoundInterval           int64
	SchedulerType           string
	InputSourceType         string
	InputFile               string
	MinParticipants         int
	MaxParticipants         int
	MaxInputsPerParticipant int
	MinInputAmount          int64
	MaxInputAmount          int64
	NoMetrics               bool

	svc          application.Service
	feeEstimator ports.FeeEstimator
	inputSource  ports.InputSource
	scheduler    ports.SchedulerService
	search       ports.CombinationSearch
	random       ports.RandomSource
	metrics      ports.Metrics
}

func (c *Config) String() string {
	json, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	Datadir                 = "DATADIR"
	Port                    = "PORT"
	LogLevel                = "LOG_LEVEL"
	FeeEstimatorType        = "FEE_ESTIMATOR_TYPE"
	FeeRate                 = "FEE_RATE"
	EsploraURL              = "ESPLORA_URL"
	MinOutputAmount         = "MIN_OUTPUT_AMOUNT"
	MaxOutputAmount         = "MAX_OUTPUT_AMOUNT"
	TaprootAllowed          = "TAPROOT_ALLOWED"
	Seed                    = "SEED"
	MaxTxSize               = "MAX_TX_SIZE"
	MaxVsizeCredential      = "MAX_VSIZE_CREDENTIAL"
	SearchTimeout           = "SEARCH_TIMEOUT"
	SearchMaxAttempts       = "SEARCH_MAX_ATTEMPTS"
	SearchMaxResults        = "SEARCH_MAX_RESULTS"
	RoundInterval           = "ROUND_INTERVAL"
	SchedulerType           = "SCHEDULER_TYPE"
	InputSourceType         = "INPUT_SOURCE_TYPE"
	InputFile               = "INPUT_FILE"
	MinParticipants         = "MIN_PARTICIPANTS"
	MaxParticipants         = "MAX_PARTICIPANTS"
	MaxInputsPerParticipant = "MAX_INPUTS_PER_PARTICIPANT"
	MinInputAmount          = "MIN_INPUT_AMOUNT"
	MaxInputAmount          = "MAX_INPUT_AMOUNT"
	NoMetrics               = "NO_METRICS"

	defaultDatadir                 = btcutil.AppDataDir("mixerd", false)
	DefaultPort                    = 7171
	defaultLogLevel                = 4
	defaultFeeEstimatorType        = "static"
	defaultFeeRate                 = 2.0
	defaultEsploraURL              = "https://blockstream.info/api"
	defaultMinOutputAmount         = 5000
	defaultMaxOutputAmount         = 134375000000
	defaultTaprootAllowed          = true
	defaultMaxTxSize               = application.DefaultMaxTransactionSize
	defaultMaxVsizeCredential      = application.DefaultMaxVsizeCredential
	defaultSearchTimeout           = 2 * time.Second
	defaultSearchMaxAttempts       = combinationsearch.DefaultMaxAttempts
	defaultSearchMaxResults        = combinationsearch.DefaultMaxResults
	defaultRoundInterval           = 30
	defaultSchedulerType           = "gocron"
	defaultInputSourceType         = "random"
	defaultMinParticipants         = 5
	defaultMaxParticipants         = 50
	defaultMaxInputsPerParticipant = 3
	defaultMinInputAmount          = 10_000
	defaultMaxInputAmount          = 100_000_000
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("MIXER")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(Port, DefaultPort)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(FeeEstimatorType, defaultFeeEstimatorType)
	viper.SetDefault(FeeRate, defaultFeeRate)
	viper.SetDefault(EsploraURL, defaultEsploraURL)
	viper.SetDefault(MinOutputAmount, defaultMinOutputAmount)
	viper.SetDefault(MaxOutputAmount, defaultMaxOutputAmount)
	viper.SetDefault(TaprootAllowed, defaultTaprootAllowed)
	viper.SetDefault(MaxTxSize, defaultMaxTxSize)
	viper.SetDefault(MaxVsizeCredential, defaultMaxVsizeCredential)
	viper.SetDefault(SearchTimeout, defaultSearchTimeout)
	viper.SetDefault(SearchMaxAttempts, defaultSearchMaxAttempts)
	viper.SetDefault(SearchMaxResults, defaultSearchMaxResults)
	viper.SetDefault(RoundInterval, defaultRoundInterval)
	viper.SetDefault(SchedulerType, defaultSchedulerType)
	viper.SetDefault(InputSourceType, defaultInputSourceType)
	viper.SetDefault(MinParticipants, defaultMinParticipants)
	viper.SetDefault(MaxParticipants, defaultMaxParticipants)
	viper.SetDefault(MaxInputsPerParticipant, defaultMaxInputsPerParticipant)
	viper.SetDefault(MinInputAmount, defaultMinInputAmount)
	viper.SetDefault(MaxInputAmount, defaultMaxInputAmount)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	return &Config{
		Datadir:                 viper.GetString(Datadir),
		Port:                    viper.GetUint32(Port),
		LogLevel:                viper.GetInt(LogLevel),
		FeeEstimatorType:        viper.GetString(FeeEstimatorType),
		FeeRate:                 viper.GetFloat64(FeeRate),
		EsploraURL:              viper.GetString(EsploraURL),
		MinAllowedOutputAmount:  viper.GetInt64(MinOutputAmount),
		MaxAllowedOutputAmount:  viper.GetInt64(MaxOutputAmount),
		IsTaprootAllowed:        viper.GetBool(TaprootAllowed),
		Seed:                    viper.GetInt64(Seed),
		MaxTransactionSize:      viper.GetInt(MaxTxSize),
		MaxVsizeCredential:      viper.GetInt(MaxVsizeCredential),
		SearchTimeout:           viper.GetDuration(SearchTimeout),
		SearchMaxAttempts:       viper.GetInt(SearchMaxAttempts),
		SearchMaxResults:        viper.GetInt(SearchMaxResults),
		RoundInterval:           viper.GetInt64(RoundInterval),
		SchedulerType:           viper.GetString(SchedulerType),
		InputSourceType:         viper.GetString(InputSourceType),
		InputFile:               viper.GetString(InputFile),
		MinParticipants:         viper.GetInt(MinParticipants),
		MaxParticipants:         viper.GetInt(MaxParticipants),
		MaxInputsPerParticipant: viper.GetInt(MaxInputsPerParticipant),
		MinInputAmount:          viper.GetInt64(MinInputAmount),
		MaxInputAmount:          viper.GetInt64(MaxInputAmount),
		NoMetrics:               viper.GetBool(NoMetrics),
	}, nil
}

func (c *Config) Validate() error {
	if !supportedSchedulers.supports(c.SchedulerType) {
		return fmt.Errorf("scheduler type not supported, please select one of: %s", supportedSchedulers)
	}
	if !supportedFeeEstimators.supports(c.FeeEstimatorType) {
		return fmt.Errorf("fee estimator type not supported, please select one of: %s", supportedFeeEstimators)
	}
	if !supportedInputSources.supports(c.InputSourceType) {
		return fmt.Errorf("input source type not supported, please select one of: %s", supportedInputSources)
	}
	if c.RoundInterval < 2 {
		return fmt.Errorf("invalid round interval, must be at least 2 seconds")
	}
	if c.MinAllowedOutputAmount <= 0 {
		return fmt.Errorf("min output amount must be greater than 0")
	}
	if c.MaxAllowedOutputAmount < c.MinAllowedOutputAmount {
		return fmt.Errorf("max output amount must not be lower than min output amount")
	}
	if c.InputSourceType == "file" && len(c.InputFile) <= 0 {
		return fmt.Errorf("missing input file")
	}

	if err := c.feeEstimatorService(); err != nil {
		return err
	}
	if err := c.inputSourceService(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	if err := c.combinationSearchService(); err != nil {
		return err
	}
	if err := c.metricsService(); err != nil {
		return err
	}
	c.random = application.NewRandomSource(c.Seed)
	return nil
}

func (c *Config) AppService() (application.Service, error) {
	if c.svc == nil {
		if err := c.appService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

// MixerConfig returns the parameters of the decomposition engine for the
// given fee rate.
func (c *Config) MixerConfig() application.MixerConfig {
	return application.MixerConfig{
		FeeRate:                domain.FeeRateFromSatPerVByte(c.FeeRate),
		MinAllowedOutputAmount: c.MinAllowedOutputAmount,
		MaxAllowedOutputAmount: c.MaxAllowedOutputAmount,
		IsTaprootAllowed:       c.IsTaprootAllowed,
		MaxTransactionSize:     c.MaxTransactionSize,
		MaxVsizeCredential:     c.MaxVsizeCredential,
		SearchTimeout:          c.SearchTimeout,
	}
}

func (c *Config) feeEstimatorService() error {
	var svc ports.FeeEstimator
	var err error
	switch c.FeeEstimatorType {
	case "static":
		svc, err = feeestimator.NewStaticService(c.FeeRate)
	case "esplora":
		svc, err = feeestimator.NewEsploraService(c.EsploraURL)
	default:
		err = fmt.Errorf("unknown fee estimator type")
	}
	if err != nil {
		return err
	}

	c.feeEstimator = svc
	return nil
}

func (c *Config) inputSourceService() error {
	var svc ports.InputSource
	var err error
	switch c.InputSourceType {
	case "random":
		svc, err = randomsource.NewInputSource(randomsource.Config{
			MinParticipants:         c.MinParticipants,
			MaxParticipants:         c.MaxParticipants,
			MaxInputsPerParticipant: c.MaxInputsPerParticipant,
			MinInputAmount:          c.MinInputAmount,
			MaxInputAmount:          c.MaxInputAmount,
			Seed:                    c.Seed,
		})
	case "file":
		svc, err = filesource.NewInputSource(c.InputFile)
	default:
		err = fmt.Errorf("unknown input source type")
	}
	if err != nil {
		return err
	}

	c.inputSource = svc
	return nil
}

func (c *Config) schedulerService() error {
	var svc ports.SchedulerService
	var err error
	switch c.SchedulerType {
	case "gocron":
		svc = scheduler.NewScheduler()
	default:
		err = fmt.Errorf("unknown scheduler type")
	}
	if err != nil {
		return err
	}

	c.scheduler = svc
	return nil
}

func (c *Config) combinationSearchService() error {
	c.search = combinationsearch.NewService(combinationsearch.Config{
		MaxAttempts: c.SearchMaxAttempts,
		MaxResults:  c.SearchMaxResults,
	})
	return nil
}

func (c *Config) metricsService() error {
	if c.NoMetrics {
		return nil
	}
	c.metrics = metrics.NewService(prometheus.DefaultRegisterer)
	return nil
}

func (c *Config) appService() error {
	svc, err := application.NewService(
		application.ServiceConfig{
			MixerConfig:   c.MixerConfig(),
			RoundInterval: c.RoundInterval,
		},
		c.feeEstimator, c.inputSource, c.scheduler, c.search, c.random, c.metrics,
	)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
