package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	projection "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/domain"
)

func TestPresetStore_KeepsCachedOnRowSave(t *testing.T) {
	ctx := context.Background()
	store := NewPresetStore()
	t1 := store.ForTenant("t1")

	empty, err := t1.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Rows)
	assert.Nil(t, empty.Cached)

	rows := []projection.InputRow{{AirlineID: "a", Destination: "FRA", MonthlyOperationsCount: 2}}
	cached := &projection.CachedProjection{Total: projection.Total{Monthly: 2000}}
	require.NoError(t, t1.Save(ctx, projection.Preset{Rows: rows, Cached: cached}))

	edited := []projection.InputRow{{AirlineID: "a", Destination: "FRA", MonthlyOperationsCount: 3}}
	require.NoError(t, t1.Save(ctx, projection.Preset{Rows: edited}))

	got, err := t1.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, edited, got.Rows)
	assert.Equal(t, cached, got.Cached)
	assert.False(t, got.UpdatedAt.IsZero())

	other, err := store.ForTenant("t2").Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, other.Rows)
}
