package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	billingapp "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/application"
	billing "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/domain"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/infrastructure/rates"
	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
	fuelingrepo "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/infrastructure/postgres"
)

type config struct {
	dbURL     string
	tenantID  string
	month     string
	outDir    string
	ratesFile string
	tolerance float64
}

// drift is an operation whose stored total disagrees with its priced net.
type drift struct {
	Operation   fueling.FuelOperation
	Breakdown   billing.MonetaryBreakdown
	ComputedNet float64
	StoredNet   float64
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "create out dir:", err)
		os.Exit(2)
	}

	monthStart, err := time.Parse("2006-01", cfg.month)
	if err != nil {
		fmt.Fprintln(os.Stderr, "month must be YYYY-MM")
		os.Exit(2)
	}
	filter := billingapp.MonthFilter(monthStart)

	rateFile, err := rates.Load(cfg.ratesFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rates:", err)
		os.Exit(2)
	}
	calc, _, _, err := rateFile.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "rates:", err)
		os.Exit(2)
	}

	db, err := sql.Open("pgx", cfg.dbURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "db open:", err)
		os.Exit(2)
	}
	defer db.Close()

	repo := fuelingrepo.NewOperationRepository(db, fuelingrepo.WithTenantID(cfg.tenantID))
	ops, err := repo.ListOperations(context.Background(), filter.Query())
	if err != nil {
		fmt.Fprintln(os.Stderr, "load operations:", err)
		os.Exit(2)
	}

	drifts, skipped := findDrifts(calc, ops, cfg.tolerance)
	path := filepath.Join(cfg.outDir, "reconcile-"+cfg.month+".csv")
	if err := writeDrifts(path, drifts); err != nil {
		fmt.Fprintln(os.Stderr, "write report:", err)
		os.Exit(2)
	}
	fmt.Printf("operations=%d drifts=%d skipped=%d report=%s\n", len(ops), len(drifts), skipped, path)
	if len(drifts) > 0 {
		os.Exit(1)
	}
}

func parseFlags() (config, error) {
	cfg := config{}
	flag.StringVar(&cfg.dbURL, "db", getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")), "Postgres DSN")
	flag.StringVar(&cfg.tenantID, "tenant", getenvDefault("TENANT_ID", "tenant-demo"), "tenant id")
	flag.StringVar(&cfg.month, "month", time.Now().UTC().AddDate(0, -1, 0).Format("2006-01"), "month to reconcile (YYYY-MM)")
	flag.StringVar(&cfg.outDir, "out", "reconcile_out", "output directory")
	flag.StringVar(&cfg.ratesFile, "rates", getenvDefault("BILLING_RATES_FILE", ""), "billing rates file")
	flag.Float64Var(&cfg.tolerance, "tolerance", 0.01, "allowed absolute difference")
	flag.Parse()

	if cfg.dbURL == "" {
		return cfg, fmt.Errorf("db is required")
	}
	if cfg.tolerance < 0 {
		return cfg, fmt.Errorf("tolerance must be >= 0")
	}
	return cfg, nil
}

// findDrifts compares stored totals with base minus discount. Operations
// without a stored total are not checked; invalid ones are counted as skipped.
func findDrifts(calc *billing.Calculator, ops []fueling.FuelOperation, tolerance float64) ([]drift, int) {
	var (
		out     []drift
		skipped int
	)
	for _, op := range ops {
		if op.TotalAmount == nil || *op.TotalAmount <= 0 {
			continue
		}
		breakdown, err := calc.Calculate(op)
		if err != nil {
			skipped++
			continue
		}
		computed := fueling.Round5(breakdown.BaseAmount - breakdown.DiscountAmount)
		if math.Abs(computed-*op.TotalAmount) <= tolerance {
			continue
		}
		out = append(out, drift{
			Operation:   op,
			Breakdown:   breakdown,
			ComputedNet: computed,
			StoredNet:   *op.TotalAmount,
		})
	}
	return out, skipped
}

func writeDrifts(path string, drifts []drift) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	_ = writer.Write([]string{"operation_id", "date_time", "airline_id", "destination", "currency", "computed_net", "stored_net", "difference"})
	for _, d := range drifts {
		_ = writer.Write([]string{
			d.Operation.ID,
			d.Operation.DateTime.UTC().Format(time.RFC3339),
			d.Operation.AirlineID,
			d.Operation.Destination,
			string(d.Breakdown.Currency),
			formatFloat(d.ComputedNet),
			formatFloat(d.StoredNet),
			formatFloat(fueling.Round5(d.StoredNet - d.ComputedNet)),
		})
	}
	writer.Flush()
	return writer.Error()
}

func getenvDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
