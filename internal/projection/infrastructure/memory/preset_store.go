package memory

import (
	"context"
	"sync"
	"time"

	projection "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/domain"
)

// PresetStore keeps presets in memory, one per tenant.
type PresetStore struct {
	mu      sync.RWMutex
	presets map[string]projection.Preset
}

// NewPresetStore constructs a store.
func NewPresetStore() *PresetStore {
	return &PresetStore{presets: make(map[string]projection.Preset)}
}

// ForTenant returns a projection.PresetStore bound to tenantID.
func (s *PresetStore) ForTenant(tenantID string) projection.PresetStore {
	return tenantPresets{store: s, tenantID: tenantID}
}

func (s *PresetStore) load(tenantID string) projection.Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	preset := s.presets[tenantID]
	preset.Rows = projection.CloneRows(preset.Rows)
	return preset
}

func (s *PresetStore) save(tenantID string, preset projection.Preset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.presets[tenantID]
	next := projection.Preset{
		Rows:      projection.CloneRows(preset.Rows),
		Cached:    preset.Cached,
		UpdatedAt: time.Now().UTC(),
	}
	if next.Cached == nil {
		next.Cached = existing.Cached
	}
	s.presets[tenantID] = next
}

type tenantPresets struct {
	store    *PresetStore
	tenantID string
}

func (t tenantPresets) Load(ctx context.Context) (projection.Preset, error) {
	if err := ctx.Err(); err != nil {
		return projection.Preset{}, err
	}
	return t.store.load(t.tenantID), nil
}

func (t tenantPresets) Save(ctx context.Context, preset projection.Preset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.store.save(t.tenantID, preset)
	return nil
}
