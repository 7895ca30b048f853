package projection

import (
	"context"
	"time"
)

// CachedProjection is the last calculated projection stored next to the rows.
type CachedProjection struct {
	Results      []Result  `json:"results"`
	Total        Total     `json:"total"`
	CalculatedAt time.Time `json:"calculated_at"`
}

// Preset is the persisted projection workspace of a tenant.
type Preset struct {
	Rows      []InputRow        `json:"rows"`
	Cached    *CachedProjection `json:"cached_results,omitempty"`
	UpdatedAt time.Time         `json:"updated_at,omitempty"`
}

// PresetStore persists presets. Save overwrites the stored rows; a nil Cached
// keeps whatever cached results are already stored.
type PresetStore interface {
	Load(ctx context.Context) (Preset, error)
	Save(ctx context.Context, preset Preset) error
}

// CloneRows returns a detached copy of rows.
func CloneRows(rows []InputRow) []InputRow {
	if rows == nil {
		return nil
	}
	out := make([]InputRow, len(rows))
	copy(out, rows)
	return out
}
