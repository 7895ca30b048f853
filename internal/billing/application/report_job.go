package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	billing "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/domain"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/observability/metrics"
)

// RenderFunc renders a consolidation into a document.
type RenderFunc func(billing.Consolidation) ([]byte, error)

// MonthlyReportJob writes the previous month's consolidated report to a directory.
type MonthlyReportJob struct {
	invoices  *InvoiceService
	render    RenderFunc
	extension string
	dir       string
	now       func() time.Time
	timeout   time.Duration
	log       zerolog.Logger
}

// MonthlyReportConfig holds the job dependencies.
type MonthlyReportConfig struct {
	Invoices  *InvoiceService
	Render    RenderFunc
	Extension string
	Dir       string
	Now       func() time.Time
	Timeout   time.Duration
	Log       zerolog.Logger
}

// NewMonthlyReportJob constructs the job.
func NewMonthlyReportJob(cfg MonthlyReportConfig) (*MonthlyReportJob, error) {
	if cfg.Invoices == nil {
		return nil, errors.New("monthly report: nil invoice service")
	}
	if cfg.Render == nil {
		return nil, errors.New("monthly report: nil renderer")
	}
	if cfg.Dir == "" {
		return nil, errors.New("monthly report: empty directory")
	}
	if cfg.Extension == "" {
		cfg.Extension = "xlsx"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &MonthlyReportJob{
		invoices:  cfg.Invoices,
		render:    cfg.Render,
		extension: cfg.Extension,
		dir:       cfg.Dir,
		now:       cfg.Now,
		timeout:   cfg.Timeout,
		log:       cfg.Log.With().Str("job", "monthly_report").Logger(),
	}, nil
}

// Name returns the job name.
func (j *MonthlyReportJob) Name() string {
	return "monthly_report"
}

// Run writes the report covering the month before now.
func (j *MonthlyReportJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	_, err := j.RunFor(ctx, j.now().UTC())
	metrics.IncReportJob(metrics.Result(err))
	return err
}

// RunFor writes the report of the month preceding now and returns its path.
func (j *MonthlyReportJob) RunFor(ctx context.Context, now time.Time) (string, error) {
	previous := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	filter := MonthFilter(previous)

	consolidation, err := j.invoices.Consolidate(ctx, filter)
	if err != nil {
		return "", err
	}
	data, err := j.render(consolidation)
	if err != nil {
		return "", fmt.Errorf("monthly report: render: %w", err)
	}
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return "", fmt.Errorf("monthly report: %w", err)
	}
	path := filepath.Join(j.dir, fmt.Sprintf("consolidated-%s.%s", previous.Format("2006-01"), j.extension))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("monthly report: %w", err)
	}
	j.log.Info().
		Str("path", path).
		Int("operations", consolidation.Summary.Operations).
		Float64("home_gross", consolidation.Summary.HomeGrossAmount).
		Msg("monthly report written")
	return path, nil
}
