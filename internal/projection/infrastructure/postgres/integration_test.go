package postgres_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	projection "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/domain"
	projectionpostgres "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/infrastructure/postgres"
)

func TestPresetStore_Postgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()

	if !tableExists(db, "projection_presets") {
		t.Skip("projection_presets missing; run migrations")
	}

	ctx := context.Background()
	tenantID := "tenant-it"
	_, _ = db.ExecContext(ctx, "DELETE FROM projection_presets WHERE tenant_id = $1", tenantID)

	store, err := projectionpostgres.NewPresetStore(db, tenantID, "")
	require.NoError(t, err)

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Rows)
	assert.Nil(t, empty.Cached)

	rows := []projection.InputRow{{AirlineID: "a1", Destination: "FRA", MonthlyOperationsCount: 4}}
	cached := &projection.CachedProjection{
		Results:      []projection.Result{{AirlineName: "Air One", Destination: "FRA", MonthlyOperationsCount: 4, MonthlyConsumption: 4000}},
		Total:        projection.Total{Monthly: 4000, Quarterly: 12000, Yearly: 48000},
		CalculatedAt: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, projection.Preset{Rows: rows, Cached: cached, UpdatedAt: time.Now()}))

	edited := []projection.InputRow{{AirlineID: "a2", Destination: "IST", MonthlyOperationsCount: 1}}
	require.NoError(t, store.Save(ctx, projection.Preset{Rows: edited}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, edited, loaded.Rows)
	require.NotNil(t, loaded.Cached)
	assert.Equal(t, cached.Total, loaded.Cached.Total)
	assert.True(t, cached.CalculatedAt.Equal(loaded.Cached.CalculatedAt))
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func tableExists(db *sql.DB, table string) bool {
	var exists bool
	err := db.QueryRow(`
SELECT EXISTS (
	SELECT 1
	FROM information_schema.tables
	WHERE table_schema = 'public' AND table_name = $1
)`, table).Scan(&exists)
	if err != nil {
		return false
	}
	return exists
}
