package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	apihttp "github.com/emirmehmedovic/dataavioservis-sub001/internal/api/http"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/audit"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/auth"
	billingapp "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/application"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/infrastructure/rates"
	billinghttp "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/interfaces"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/config"
	fuelingrepo "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/infrastructure/postgres"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/observability/metrics"
	projectionapp "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/application"
	projection "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/domain"
	projectionrepo "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/infrastructure/postgres"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/scheduler"
	"github.com/emirmehmedovic/dataavioservis-sub001/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{})
		bootLog.Fatal().Err(err).Msg("config error")
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db open error")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db ping error")
	}

	metrics.Init(db, log)
	auditRepo := audit.NewRepository(db)

	operationRepo := fuelingrepo.NewOperationRepository(db, fuelingrepo.WithTenantID(cfg.TenantID))
	airlineDirectory := fuelingrepo.NewAirlineDirectory(db)

	rateFile, err := rates.Load(cfg.RatesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("rates file error")
	}
	calculator, normalizer, aggregator, err := rateFile.Build()
	if err != nil {
		log.Fatal().Err(err).Msg("rates error")
	}

	invoiceService, err := billingapp.NewInvoiceService(operationRepo, calculator, normalizer, aggregator,
		billingapp.WithLogger(logger.Component(log, "billing")),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("invoice service error")
	}

	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		log.Warn().Err(err).Str("locale", cfg.Locale).Msg("invalid projection locale, using bs")
		locale = language.Make("bs")
	}
	projectionService, err := projectionapp.NewService(operationRepo, airlineDirectory,
		projectionapp.WithAverager(projection.NewHistoricalAverager(cfg.LookbackMonths, cfg.SampleCap)),
		projectionapp.WithLocale(locale),
		projectionapp.WithLogger(logger.Component(log, "projection")),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("projection service error")
	}

	presetRegistry, err := projectionapp.NewSyncRegistry(func(tenantID string) (projection.PresetStore, error) {
		return projectionrepo.NewPresetStore(db, tenantID, projectionrepo.DefaultPresetKey)
	},
		projectionapp.WithDebounce(cfg.DebounceWindow),
		projectionapp.WithSyncLogger(logger.Component(log, "preset_sync")),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("preset registry error")
	}

	sched := scheduler.New(log)
	if cfg.ReportSchedule != "" {
		reportJob, err := billingapp.NewMonthlyReportJob(billingapp.MonthlyReportConfig{
			Invoices:  invoiceService,
			Render:    billinghttp.BuildSummaryXLSX,
			Extension: "xlsx",
			Dir:       cfg.ReportsDir,
			Log:       log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("monthly report job error")
		}
		if err := sched.AddJob(cfg.ReportSchedule, reportJob); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.ReportSchedule).Msg("schedule monthly report")
		}
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	router, err := apihttp.NewRouter(apihttp.Config{
		Invoices:      invoiceService,
		Projections:   projectionService,
		Presets:       presetRegistry,
		Audit:         auditLogger(auditRepo, log),
		Auth:          auth.NewMiddleware([]byte(cfg.JWTSecret), policy, log),
		CORSOrigins:   cfg.CORSOrigins,
		DefaultTenant: cfg.TenantID,
		Ready:         db.PingContext,
		Log:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router error")
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.Start()
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("tenant_id", cfg.TenantID).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	if err := presetRegistry.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("preset flush error")
	}
	sched.Stop()
}

// auditLogger falls back to log-only auditing when no repository is available.
func auditLogger(repo *audit.Repository, log zerolog.Logger) audit.Logger {
	if repo == nil {
		return audit.NewLogLogger(log)
	}
	return repo
}
