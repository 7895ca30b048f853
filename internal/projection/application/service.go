package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/observability/metrics"
	projection "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/domain"
)

const defaultFetchConcurrency = 8

// Calculation is a projection batch together with the rows it was computed from.
type Calculation struct {
	Rows []projection.InputRow `json:"rows"`
	projection.CachedProjection
}

// Cached returns the calculation in its persisted form.
func (c Calculation) Cached() *projection.CachedProjection {
	cached := c.CachedProjection
	return &cached
}

// Service computes consumption projections from recorded history.
type Service struct {
	history     fueling.HistorySource
	airlines    fueling.AirlineDirectory
	averager    *projection.HistoricalAverager
	engine      *projection.Engine
	now         func() time.Time
	concurrency int
	logger      zerolog.Logger
}

// Option configures the projection service.
type Option func(*Service)

// WithAverager overrides the lookback window and sample cap.
func WithAverager(averager *projection.HistoricalAverager) Option {
	return func(s *Service) {
		if averager != nil {
			s.averager = averager
		}
	}
}

// WithLocale sets the collation locale used to order results.
func WithLocale(tag language.Tag) Option {
	return func(s *Service) {
		s.engine = projection.NewEngine(tag)
	}
}

// WithClock overrides the calculation time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithFetchConcurrency bounds concurrent history queries.
func WithFetchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger.With().Str("component", "projection_service").Logger()
	}
}

// NewService constructs a projection service. The airline directory is optional.
func NewService(history fueling.HistorySource, airlines fueling.AirlineDirectory, opts ...Option) (*Service, error) {
	if history == nil {
		return nil, errors.New("projection service: nil history source")
	}
	s := &Service{
		history:     history,
		airlines:    airlines,
		averager:    projection.NewHistoricalAverager(0, 0),
		engine:      projection.NewEngine(language.Und),
		now:         time.Now,
		concurrency: defaultFetchConcurrency,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type routeKey struct {
	airlineID   string
	destination string
}

type routeData struct {
	average projection.Average
	name    string
}

// Calculate validates rows, averages each route's recent history and projects consumption.
func (s *Service) Calculate(ctx context.Context, rows []projection.InputRow) (Calculation, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveProjection(result, time.Since(start))
	}()

	clean := make([]projection.InputRow, len(rows))
	for i, row := range rows {
		row = projection.ClampOperationsCount(row)
		if err := projection.ValidateRow(row); err != nil {
			result = metrics.ResultError
			return Calculation{}, fmt.Errorf("projection: row %d: %w", i+1, err)
		}
		clean[i] = row
	}

	now := s.now()
	keys := make([]routeKey, 0, len(clean))
	index := make(map[routeKey]int, len(clean))
	for _, row := range clean {
		key := routeKey{airlineID: row.AirlineID, destination: row.Destination}
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = len(keys)
		keys = append(keys, key)
	}

	data := make([]routeData, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			ops, err := s.history.ListOperations(gctx, s.averager.Query(key.airlineID, key.destination, now))
			if err != nil {
				return fmt.Errorf("projection: history %s/%s: %w: %w", key.airlineID, key.destination, fueling.ErrHistoryUnavailable, err)
			}
			data[i] = routeData{
				average: s.averager.Average(ops, key.airlineID, key.destination, now),
				name:    s.airlineName(gctx, key.airlineID, ops),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		result = metrics.ResultError
		return Calculation{}, err
	}

	inputs := make([]projection.Input, len(clean))
	for i, row := range clean {
		d := data[index[routeKey{airlineID: row.AirlineID, destination: row.Destination}]]
		inputs[i] = projection.Input{Row: row, AirlineName: d.name, Average: d.average}
	}
	results, total := s.engine.ProjectBatch(inputs)

	s.logger.Debug().Int("rows", len(clean)).Int("routes", len(keys)).Float64("monthly_total", total.Monthly).Msg("projection calculated")
	return Calculation{
		Rows: clean,
		CachedProjection: projection.CachedProjection{
			Results:      results,
			Total:        total,
			CalculatedAt: now.UTC(),
		},
	}, nil
}

// CalculateAndSave calculates and then persists rows and results through sync.
// A failed save is returned after the calculation so callers can still show results.
func (s *Service) CalculateAndSave(ctx context.Context, sync *PresetSync, rows []projection.InputRow) (Calculation, error) {
	if sync == nil {
		return Calculation{}, errors.New("projection service: nil preset sync")
	}
	calc, err := s.Calculate(ctx, rows)
	if err != nil {
		return Calculation{}, err
	}
	if err := sync.SaveNow(ctx, calc.Rows, calc.Cached()); err != nil {
		return calc, err
	}
	return calc, nil
}

func (s *Service) airlineName(ctx context.Context, airlineID string, ops []fueling.FuelOperation) string {
	for _, op := range ops {
		if op.AirlineName != "" {
			return op.AirlineName
		}
	}
	if s.airlines == nil {
		return airlineID
	}
	name, err := s.airlines.AirlineName(ctx, airlineID)
	if err != nil {
		s.logger.Warn().Err(err).Str("airline_id", airlineID).Msg("airline name lookup failed")
		return airlineID
	}
	if name == "" {
		return airlineID
	}
	return name
}
