package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	dataprep "lantern/internal/dataprep/domain"
	"lantern/internal/notify"
	"lantern/internal/observability/metrics"
)

// TableSource loads a source table by name. A missing table is reported as
// dataprep.ErrSourceNotFound. Returned tables are shared and must not be modified.
type TableSource interface {
	LoadTable(ctx context.Context, name string) (*dataprep.Table, error)
}

// Engine runs the energy-community simulation on a prepared dataset.
type Engine interface {
	Simulate(ctx context.Context, dataset *dataprep.PreparedDataset) (*dataprep.SimulationResult, error)
}

// PrepareRequest carries the raw user parameters.
type PrepareRequest struct {
	CommunitySize int
	Season        string
	PVPercentage  int
	SDPercentage  int
	WithBattery   bool
}

// SimulationRun is one completed simulation.
type SimulationRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Params     dataprep.SamplingParameters
	Dataset    *dataprep.PreparedDataset
	Result     *dataprep.SimulationResult
}

// PreparationService samples and aligns the source pool and hands it to the engine.
type PreparationService struct {
	source   TableSource
	engine   Engine
	cfg      Config
	notifier notify.Notifier
	logger   *log.Logger
	newID    func() string
}

// Option configures the service.
type Option func(*PreparationService)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *PreparationService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier sets the notifier called after each successful simulation.
func WithNotifier(notifier notify.Notifier) Option {
	return func(s *PreparationService) {
		s.notifier = notifier
	}
}

// WithRunIDs overrides run id generation.
func WithRunIDs(newID func() string) Option {
	return func(s *PreparationService) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewPreparationService constructs the service. The engine may be nil when only Prepare is used.
func NewPreparationService(source TableSource, engine Engine, cfg Config, opts ...Option) (*PreparationService, error) {
	if source == nil {
		return nil, errors.New("preparation service: nil table source")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &PreparationService{
		source: source,
		engine: engine,
		cfg:    cfg,
		logger: log.Default(),
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Prepare validates the request and builds the dataset for the simulation engine.
func (s *PreparationService) Prepare(ctx context.Context, req PrepareRequest) (*dataprep.PreparedDataset, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObservePipelineRun(result, time.Since(start))
	}()

	params, err := dataprep.NewSamplingParameters(req.CommunitySize, req.Season, req.PVPercentage, req.SDPercentage, req.WithBattery)
	if err != nil {
		result = metrics.ResultError
		metrics.IncPipelineError(ErrorReason(err))
		return nil, err
	}
	dataset, err := s.prepare(ctx, params)
	if err != nil {
		result = metrics.ResultError
		metrics.IncPipelineError(ErrorReason(err))
		return nil, err
	}
	return dataset, nil
}

// Simulate prepares the dataset and runs the engine on it.
func (s *PreparationService) Simulate(ctx context.Context, req PrepareRequest) (*SimulationRun, error) {
	if s.engine == nil {
		return nil, errors.New("preparation service: nil engine")
	}
	started := time.Now().UTC()
	dataset, err := s.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	engineStart := time.Now()
	result, err := s.engine.Simulate(ctx, dataset)
	if err != nil {
		metrics.ObserveSimulation(metrics.ResultError, time.Since(engineStart))
		return nil, fmt.Errorf("simulate: %w", err)
	}
	if result == nil {
		metrics.ObserveSimulation(metrics.ResultError, time.Since(engineStart))
		return nil, errors.New("simulate: engine returned no result")
	}
	metrics.ObserveSimulation(metrics.ResultSuccess, time.Since(engineStart))

	run := &SimulationRun{
		ID:         s.newID(),
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Params: dataprep.SamplingParameters{
			CommunitySize: dataset.CommunitySize,
			Season:        dataset.Season,
			PVPercentage:  dataset.PVPercentage,
			SDPercentage:  dataset.SDPercentage,
			WithBattery:   dataset.WithBattery,
		},
		Dataset: dataset,
		Result:  result,
	}
	s.logger.Printf("simulation run: id=%s size=%d season=%s pv=%d sd=%d battery=%t steps=%d",
		run.ID, run.Params.CommunitySize, run.Params.Season, run.Params.PVPercentage, run.Params.SDPercentage, run.Params.WithBattery, dataset.Steps())

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, runMessage(run)); err != nil {
			s.logger.Printf("simulation run: notify error: id=%s err=%v", run.ID, err)
		}
	}
	return run, nil
}

func (s *PreparationService) prepare(ctx context.Context, params dataprep.SamplingParameters) (*dataprep.PreparedDataset, error) {
	pv, err := s.source.LoadTable(ctx, s.cfg.PVFile)
	if err != nil {
		return nil, fmt.Errorf("load pv table: %w", err)
	}
	load, err := s.source.LoadTable(ctx, s.cfg.LoadFile)
	if err != nil {
		return nil, fmt.Errorf("load load table: %w", err)
	}
	buildings := pv.Rows()
	if load.Rows() != buildings*s.cfg.BlockSize {
		return nil, fmt.Errorf("%w: %d pv rows and %d load rows with block size %d",
			dataprep.ErrInvalidSourcePool, buildings, load.Rows(), s.cfg.BlockSize)
	}

	sampler := NewSampler(s.cfg.RandomSeed)

	if pv, err = NormalizeTimeAxis(pv); err != nil {
		return nil, err
	}
	if load, err = NormalizeTimeAxis(load); err != nil {
		return nil, err
	}

	draws, err := sampler.DrawMembers(buildings, s.cfg.BlockSize, params.CommunitySize)
	if err != nil {
		return nil, err
	}
	if load, err = load.SelectRows(draws.LoadRows); err != nil {
		return nil, err
	}
	if pv, err = pv.SelectRows(draws.PVRows); err != nil {
		return nil, err
	}

	if pv, err = FilterSeason(pv, params.Season); err != nil {
		return nil, fmt.Errorf("filter pv: %w", err)
	}
	if load, err = FilterSeason(load, params.Season); err != nil {
		return nil, fmt.Errorf("filter load: %w", err)
	}

	pv, nonOwners, err := AssignOwnership(pv, sampler, params.PVPercentage)
	if err != nil {
		return nil, err
	}

	pv, load, err = Reconcile(pv, load)
	if err != nil {
		return nil, err
	}

	return &dataprep.PreparedDataset{
		PV:                  pv.Transpose(),
		Load:                load.Transpose(),
		Timestamps:          load.Columns(),
		NormalizationFactor: 1,
		Season:              params.Season,
		CommunitySize:       params.CommunitySize,
		BlockSize:           s.cfg.BlockSize,
		PVPercentage:        params.PVPercentage,
		SDPercentage:        params.SDPercentage,
		WithBattery:         params.WithBattery,
		PVRows:              draws.PVRows,
		LoadRows:            draws.LoadRows,
		NonOwners:           nonOwners,
	}, nil
}

// ErrorReason maps pipeline errors to a metric label.
func ErrorReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, dataprep.ErrInvalidSeason):
		return "invalid_season"
	case errors.Is(err, dataprep.ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, dataprep.ErrSourceNotFound):
		return "source_not_found"
	case errors.Is(err, dataprep.ErrInsufficientPopulation):
		return "sampling"
	case errors.Is(err, dataprep.ErrInvalidSourcePool):
		return "invalid_source_pool"
	case errors.Is(err, dataprep.ErrEmptySeason), errors.Is(err, dataprep.ErrNoCommonTimestamps):
		return "empty_axis"
	default:
		return "other"
	}
}

func runMessage(run *SimulationRun) notify.RunMessage {
	res := run.Result
	return notify.RunMessage{
		RunID:          run.ID,
		Season:         run.Params.Season.String(),
		CommunitySize:  run.Params.CommunitySize,
		PVPercentage:   run.Params.PVPercentage,
		SDPercentage:   run.Params.SDPercentage,
		WithBattery:    run.Params.WithBattery,
		Steps:          run.Dataset.Steps(),
		CostWithLEC:    res.CostMetrics.CostWithLEC,
		CostWithoutLEC: res.CostMetrics.CostWithoutLEC,
		TradingVolume:  res.MarketMetrics.TradingVolume,
		FinishedAt:     run.FinishedAt,
	}
}
