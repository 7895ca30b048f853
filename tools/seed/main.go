package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/emirmehmedovic/dataavioservis-sub001/internal/auth"
	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
	fuelingrepo "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/infrastructure/postgres"
)

type config struct {
	dsn          string
	tenantID     string
	airlines     int
	destinations string
	months       int
	perRoute     int
	randSeed     int64
	jwtSecret    string
	tokenRole    string
	tokenTTL     time.Duration
}

var currencies = []fueling.Currency{fueling.CurrencyBAM, fueling.CurrencyEUR, fueling.CurrencyUSD}

func main() {
	cfg := parseConfig()
	if cfg.dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}
	if cfg.airlines <= 0 || cfg.months <= 0 || cfg.perRoute <= 0 {
		log.Fatal("airlines, months and per-route must be > 0")
	}
	destinations := splitList(cfg.destinations)
	if len(destinations) == 0 {
		log.Fatal("destinations must not be empty")
	}

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	directory := fuelingrepo.NewAirlineDirectory(db)
	repo := fuelingrepo.NewOperationRepository(db, fuelingrepo.WithTenantID(cfg.tenantID))
	rng := rand.New(rand.NewSource(cfg.randSeed))

	log.Printf("seeding airlines=%d destinations=%d months=%d per-route=%d tenant=%s", cfg.airlines, len(destinations), cfg.months, cfg.perRoute, cfg.tenantID)
	if _, err := db.ExecContext(ctx, "DELETE FROM fuel_operations WHERE tenant_id = $1 AND id LIKE 'seed-%'", cfg.tenantID); err != nil {
		log.Fatalf("clear previous seed: %v", err)
	}
	now := time.Now().UTC()
	inserted := 0
	for a := 1; a <= cfg.airlines; a++ {
		airlineID := fmt.Sprintf("airline-%03d", a)
		if err := directory.Upsert(ctx, airlineID, fmt.Sprintf("Seed Air %03d", a)); err != nil {
			log.Fatalf("upsert airline %s: %v", airlineID, err)
		}
		for _, dest := range destinations {
			ops := buildOperations(rng, airlineID, dest, now, cfg.months, cfg.perRoute)
			for _, op := range ops {
				if err := repo.Insert(ctx, op); err != nil {
					log.Fatalf("insert operation %s: %v", op.ID, err)
				}
				inserted++
			}
		}
	}
	total, err := repo.CountOperations(ctx)
	if err != nil {
		log.Fatalf("count operations: %v", err)
	}
	log.Printf("inserted %d operations, tenant now has %d", inserted, total)

	if cfg.jwtSecret != "" {
		role, ok := auth.NormalizeRole(cfg.tokenRole)
		if !ok {
			log.Fatalf("invalid token role %q", cfg.tokenRole)
		}
		token, err := auth.SignJWT([]byte(cfg.jwtSecret), cfg.tenantID, role, "seed", cfg.tokenTTL)
		if err != nil {
			log.Fatalf("sign token: %v", err)
		}
		fmt.Println(token)
	}
	log.Printf("seed completed")
}

func buildOperations(rng *rand.Rand, airlineID, dest string, now time.Time, months, perRoute int) []fueling.FuelOperation {
	start := now.AddDate(0, -months, 0)
	span := now.Sub(start)
	ops := make([]fueling.FuelOperation, 0, perRoute)
	for i := 0; i < perRoute; i++ {
		liters := 2000 + rng.Float64()*18000
		density := 0.78 + rng.Float64()*0.04
		op := fueling.FuelOperation{
			ID:              fmt.Sprintf("seed-%s-%s-%04d", airlineID, strings.ToLower(dest), i),
			DateTime:        start.Add(time.Duration(rng.Int63n(int64(span)))).Truncate(time.Minute),
			AirlineID:       airlineID,
			Destination:     dest,
			QuantityLiters:  fueling.Round5(liters),
			QuantityKg:      fueling.Round5(liters * density),
			PricePerKg:      fueling.Round5(0.6 + rng.Float64()*0.6),
			DiscountPercent: float64(rng.Intn(4) * 5),
			Currency:        currencies[rng.Intn(len(currencies))],
			TrafficType:     fueling.TrafficExport,
		}
		if rng.Intn(3) == 0 {
			op.TrafficType = fueling.TrafficDomestic
			op.Currency = fueling.CurrencyBAM
		}
		if op.Currency == fueling.CurrencyEUR && rng.Intn(2) == 0 {
			rate := 1.95583
			op.HomeExchangeRate = &rate
		}
		op.SpecificDensity = fueling.SpecificDensity(op.QuantityKg, op.QuantityLiters)
		ops = append(ops, op)
	}
	return ops
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.dsn, "pg-dsn", envOrDefault("PG_DSN", envOrDefault("DATABASE_URL", "")), "Postgres DSN")
	flag.StringVar(&cfg.tenantID, "tenant-id", envOrDefault("TENANT_ID", "tenant-demo"), "tenant id of seeded operations")
	flag.IntVar(&cfg.airlines, "airlines", envOrInt("SEED_AIRLINES", 5), "number of airlines")
	flag.StringVar(&cfg.destinations, "destinations", envOrDefault("SEED_DESTINATIONS", "FRA,IST,VIE,ZRH"), "comma-separated destinations")
	flag.IntVar(&cfg.months, "months", envOrInt("SEED_MONTHS", 4), "months of history to spread operations over")
	flag.IntVar(&cfg.perRoute, "per-route", envOrInt("SEED_PER_ROUTE", 12), "operations per airline and destination")
	flag.Int64Var(&cfg.randSeed, "rand-seed", 42, "random seed")
	flag.StringVar(&cfg.jwtSecret, "jwt-secret", envOrDefault("AUTH_JWT_SECRET", ""), "print a token signed with this secret")
	flag.StringVar(&cfg.tokenRole, "token-role", "admin", "role of the printed token")
	flag.DurationVar(&cfg.tokenTTL, "token-ttl", 24*time.Hour, "lifetime of the printed token")
	flag.Parse()
	return cfg
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
