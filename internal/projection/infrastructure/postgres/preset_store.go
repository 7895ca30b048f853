package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	projection "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/domain"
)

// DefaultPresetKey names the single projection workspace of a tenant.
const DefaultPresetKey = "default"

// PresetStore persists projection presets as JSONB, one row per tenant and key.
type PresetStore struct {
	db        *sql.DB
	tenantID  string
	presetKey string
}

// NewPresetStore constructs a store.
func NewPresetStore(db *sql.DB, tenantID, presetKey string) (*PresetStore, error) {
	if db == nil {
		return nil, errors.New("preset store: nil db")
	}
	if tenantID == "" {
		return nil, errors.New("preset store: empty tenant id")
	}
	if presetKey == "" {
		presetKey = DefaultPresetKey
	}
	return &PresetStore{db: db, tenantID: tenantID, presetKey: presetKey}, nil
}

// Load returns the stored preset, or an empty preset when none exists.
func (s *PresetStore) Load(ctx context.Context) (projection.Preset, error) {
	var rowsJSON []byte
	var cachedJSON []byte
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx, `
SELECT rows, cached_results, updated_at
FROM projection_presets
WHERE tenant_id = $1 AND preset_key = $2`, s.tenantID, s.presetKey).Scan(&rowsJSON, &cachedJSON, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return projection.Preset{}, nil
	}
	if err != nil {
		return projection.Preset{}, err
	}

	preset := projection.Preset{UpdatedAt: updatedAt.UTC()}
	if len(rowsJSON) > 0 {
		if err := json.Unmarshal(rowsJSON, &preset.Rows); err != nil {
			return projection.Preset{}, err
		}
	}
	if len(cachedJSON) > 0 && string(cachedJSON) != "null" {
		var cached projection.CachedProjection
		if err := json.Unmarshal(cachedJSON, &cached); err != nil {
			return projection.Preset{}, err
		}
		preset.Cached = &cached
	}
	return preset, nil
}

// Save upserts the preset. A nil Cached keeps the stored cached results.
func (s *PresetStore) Save(ctx context.Context, preset projection.Preset) error {
	rows := preset.Rows
	if rows == nil {
		rows = []projection.InputRow{}
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	var cachedJSON []byte
	if preset.Cached != nil {
		cachedJSON, err = json.Marshal(preset.Cached)
		if err != nil {
			return err
		}
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO projection_presets (tenant_id, preset_key, rows, cached_results, updated_at)
VALUES ($1, $2, $3::jsonb, $4::jsonb, $5)
ON CONFLICT (tenant_id, preset_key) DO UPDATE SET
	rows = EXCLUDED.rows,
	cached_results = COALESCE(EXCLUDED.cached_results, projection_presets.cached_results),
	updated_at = EXCLUDED.updated_at`,
		s.tenantID, s.presetKey, string(rowsJSON), nullJSON(cachedJSON), time.Now().UTC())
	return err
}

func nullJSON(raw []byte) sql.NullString {
	if raw == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}
