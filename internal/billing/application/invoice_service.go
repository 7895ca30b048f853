package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	billing "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/domain"
	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/observability/metrics"
)

// Invoice is the priced document of a single operation.
type Invoice struct {
	Operation     fueling.FuelOperation     `json:"operation"`
	Breakdown     billing.MonetaryBreakdown `json:"breakdown"`
	ExchangeRate  billing.ExchangeRate      `json:"exchange_rate"`
	HomeBreakdown billing.MonetaryBreakdown `json:"home_breakdown"`
	IssuedAt      time.Time                 `json:"issued_at"`
}

// InvoiceService builds invoices and consolidated reports from recorded history.
type InvoiceService struct {
	history    fueling.HistorySource
	calculator *billing.Calculator
	normalizer *billing.CurrencyNormalizer
	aggregator *billing.Aggregator
	now        func() time.Time
	logger     zerolog.Logger
}

// Option configures the invoice service.
type Option func(*InvoiceService)

// WithClock overrides the issue time source.
func WithClock(now func() time.Time) Option {
	return func(s *InvoiceService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *InvoiceService) {
		s.logger = logger.With().Str("component", "invoice_service").Logger()
	}
}

// NewInvoiceService constructs a service.
func NewInvoiceService(history fueling.HistorySource, calculator *billing.Calculator, normalizer *billing.CurrencyNormalizer, aggregator *billing.Aggregator, opts ...Option) (*InvoiceService, error) {
	if history == nil {
		return nil, errors.New("invoice service: nil history source")
	}
	if calculator == nil {
		return nil, errors.New("invoice service: nil calculator")
	}
	if normalizer == nil {
		return nil, errors.New("invoice service: nil normalizer")
	}
	if aggregator == nil {
		return nil, errors.New("invoice service: nil aggregator")
	}
	s := &InvoiceService{
		history:    history,
		calculator: calculator,
		normalizer: normalizer,
		aggregator: aggregator,
		now:        time.Now,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// OperationInvoice prices a single operation and converts it to the home currency.
func (s *InvoiceService) OperationInvoice(ctx context.Context, operationID string) (Invoice, error) {
	if operationID == "" {
		return Invoice{}, fmt.Errorf("invoice service: operation id required: %w", fueling.ErrInvalidOperationData)
	}
	op, err := s.history.GetOperation(ctx, operationID)
	if err != nil {
		if errors.Is(err, fueling.ErrOperationNotFound) {
			return Invoice{}, err
		}
		return Invoice{}, fmt.Errorf("invoice service: %w: %w", fueling.ErrHistoryUnavailable, err)
	}
	if op == nil {
		return Invoice{}, fmt.Errorf("operation %q: %w", operationID, fueling.ErrOperationNotFound)
	}

	breakdown, err := s.calculator.Calculate(*op)
	metrics.IncBreakdown(metrics.Result(err))
	if err != nil {
		return Invoice{}, err
	}
	rate, err := s.normalizer.Resolve(breakdown.Currency, op.HomeExchangeRate)
	if err != nil {
		return Invoice{}, err
	}
	if rate.Estimated() {
		s.logger.Warn().Str("operation_id", op.ID).Str("currency", string(rate.Currency)).Float64("rate", rate.Rate).Msg("invoice uses estimated exchange rate")
	}

	return Invoice{
		Operation:     op.Normalize(),
		Breakdown:     breakdown,
		ExchangeRate:  rate,
		HomeBreakdown: billing.ConvertBreakdown(breakdown, rate),
		IssuedAt:      s.now().UTC(),
	}, nil
}

// Consolidate loads the filtered operations and aggregates them.
func (s *InvoiceService) Consolidate(ctx context.Context, filter ReportFilter) (billing.Consolidation, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveConsolidation(result, time.Since(start))
	}()

	if err := filter.Validate(); err != nil {
		result = metrics.ResultError
		return billing.Consolidation{}, err
	}
	ops, err := s.history.ListOperations(ctx, filter.Query())
	if err != nil {
		result = metrics.ResultError
		return billing.Consolidation{}, fmt.Errorf("invoice service: %w: %w", fueling.ErrHistoryUnavailable, err)
	}
	consolidation, err := s.aggregator.Consolidate(ops, filter.Describe())
	if err != nil {
		result = metrics.ResultError
		return billing.Consolidation{}, err
	}
	s.logger.Debug().Int("operations", len(ops)).Str("filter", consolidation.FilterDescription).Msg("consolidated")
	return consolidation, nil
}
