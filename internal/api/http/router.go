package apihttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/emirmehmedovic/dataavioservis-sub001/internal/audit"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/auth"
	billingapp "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/application"
	projectionapp "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/application"
)

const requestTimeout = 60 * time.Second

// Config holds router dependencies.
type Config struct {
	Invoices      *billingapp.InvoiceService
	Projections   *projectionapp.Service
	Presets       *projectionapp.SyncRegistry
	Audit         audit.Logger
	Auth          *auth.Middleware
	CORSOrigins   []string
	DefaultTenant string
	Ready         func(ctx context.Context) error
	Log           zerolog.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(cfg Config) (http.Handler, error) {
	if cfg.Invoices == nil {
		return nil, errors.New("router: nil invoice service")
	}
	if cfg.Projections == nil {
		return nil, errors.New("router: nil projection service")
	}
	if cfg.Presets == nil {
		return nil, errors.New("router: nil preset registry")
	}
	if cfg.Audit == nil {
		cfg.Audit = audit.NewLogLogger(cfg.Log)
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	log := cfg.Log.With().Str("component", "http").Logger()
	billingHandlers := &BillingHandlers{
		invoices: cfg.Invoices,
		audit:    cfg.Audit,
		tenant:   cfg.DefaultTenant,
		log:      log,
	}
	projectionHandlers := &ProjectionHandlers{
		service: cfg.Projections,
		presets: cfg.Presets,
		audit:   cfg.Audit,
		tenant:  cfg.DefaultTenant,
		log:     log,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(log))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	if cfg.Auth != nil {
		r.Use(cfg.Auth.Wrap)
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil {
			if err := cfg.Ready(r.Context()); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		billingHandlers.RegisterRoutes(r)
		projectionHandlers.RegisterRoutes(r)
	})
	return r, nil
}

func loggingMiddleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			event := log.Info()
			if ww.Status() >= http.StatusInternalServerError {
				event = log.Warn()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}
