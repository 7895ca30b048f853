package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL     string
	HTTPAddr        string
	TenantID        string
	JWTSecret       string
	LogLevel        string
	LogPretty       bool
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	DebounceWindow time.Duration
	LookbackMonths int
	SampleCap      int
	Locale         string

	RatesFile      string
	ReportsDir     string
	ReportSchedule string
}

var envBindings = map[string][]string{
	"database_url":       {"DATABASE_URL", "PG_DSN"},
	"http_addr":          {"HTTP_ADDR"},
	"tenant_id":          {"TENANT_ID"},
	"jwt_secret":         {"AUTH_JWT_SECRET", "JWT_SECRET"},
	"log_level":          {"LOG_LEVEL"},
	"log_pretty":         {"LOG_PRETTY"},
	"cors_origins":       {"CORS_ORIGINS"},
	"shutdown_timeout":   {"SHUTDOWN_TIMEOUT"},
	"preset_debounce":    {"PRESET_DEBOUNCE"},
	"lookback_months":    {"PROJECTION_LOOKBACK_MONTHS"},
	"sample_cap":         {"PROJECTION_SAMPLE_CAP"},
	"projection_locale":  {"PROJECTION_LOCALE"},
	"billing_rates_file": {"BILLING_RATES_FILE"},
	"reports_dir":        {"REPORTS_DIR"},
	"report_schedule":    {"REPORT_SCHEDULE"},
}

// Load reads configuration from defaults, an optional config file and the
// environment, in increasing precedence. A .env file in the working directory
// is loaded into the environment first.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("tenant_id", "tenant-demo")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("cors_origins", "*")
	v.SetDefault("shutdown_timeout", "15s")
	v.SetDefault("preset_debounce", "1500ms")
	v.SetDefault("lookback_months", 3)
	v.SetDefault("sample_cap", 10)
	v.SetDefault("projection_locale", "bs")
	v.SetDefault("reports_dir", "var/reports")
	v.SetDefault("report_schedule", "0 3 1 * *")

	if path := os.Getenv("AVIO_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config: %w", err)
			}
		}
	}

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return Config{}, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	cfg := Config{
		DatabaseURL:     v.GetString("database_url"),
		HTTPAddr:        v.GetString("http_addr"),
		TenantID:        v.GetString("tenant_id"),
		JWTSecret:       v.GetString("jwt_secret"),
		LogLevel:        v.GetString("log_level"),
		LogPretty:       v.GetBool("log_pretty"),
		CORSOrigins:     splitCSV(v.GetString("cors_origins")),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		DebounceWindow:  v.GetDuration("preset_debounce"),
		LookbackMonths:  v.GetInt("lookback_months"),
		SampleCap:       v.GetInt("sample_cap"),
		Locale:          v.GetString("projection_locale"),
		RatesFile:       v.GetString("billing_rates_file"),
		ReportsDir:      v.GetString("reports_dir"),
		ReportSchedule:  v.GetString("report_schedule"),
	}
	return cfg, cfg.Validate()
}

// Validate checks required values.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL or PG_DSN is required")
	}
	if c.JWTSecret == "" {
		return errors.New("config: AUTH_JWT_SECRET is required")
	}
	if c.DebounceWindow <= 0 {
		return errors.New("config: preset debounce must be positive")
	}
	if c.LookbackMonths <= 0 || c.SampleCap <= 0 {
		return errors.New("config: lookback months and sample cap must be positive")
	}
	return nil
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
