package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
	"github.com/emirmehmedovic/dataavioservis-sub001/internal/observability/metrics"
	projection "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/domain"
)

// DefaultDebounce is the quiet period before edited rows are saved.
const DefaultDebounce = 1500 * time.Millisecond

const defaultSaveTimeout = 10 * time.Second

var (
	// ErrPresetSyncNotStarted is returned for edits before Load was called.
	ErrPresetSyncNotStarted = errors.New("preset sync: not started")
	// ErrPresetSyncNotReady is returned for explicit saves before loading finished.
	ErrPresetSyncNotReady = errors.New("preset sync: not ready")
	// ErrPresetSyncClosed is returned after Close.
	ErrPresetSyncClosed = errors.New("preset sync: closed")
)

// SyncState is the load gate of a PresetSync.
type SyncState int

const (
	StateUninitialized SyncState = iota
	StateLoading
	StateReady
)

func (s SyncState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Snapshot is the local view of a preset.
type Snapshot struct {
	State  string                       `json:"state"`
	Rows   []projection.InputRow        `json:"rows"`
	Cached *projection.CachedProjection `json:"cached_results,omitempty"`
}

// PresetSync mirrors locally edited projection rows to a preset store.
// Saves are gated on the initial load and debounced on the trailing edge.
type PresetSync struct {
	store       projection.PresetStore
	debounce    time.Duration
	afterFunc   AfterFunc
	saveTimeout time.Duration
	logger      zerolog.Logger

	mu         sync.Mutex
	state      SyncState
	rows       []projection.InputRow
	cached     *projection.CachedProjection
	pending    Timer
	generation uint64
	closed     bool
}

// SyncOption configures a PresetSync.
type SyncOption func(*PresetSync)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) SyncOption {
	return func(p *PresetSync) {
		if d > 0 {
			p.debounce = d
		}
	}
}

// WithAfterFunc replaces the timer source.
func WithAfterFunc(fn AfterFunc) SyncOption {
	return func(p *PresetSync) {
		if fn != nil {
			p.afterFunc = fn
		}
	}
}

// WithSaveTimeout bounds background saves.
func WithSaveTimeout(d time.Duration) SyncOption {
	return func(p *PresetSync) {
		if d > 0 {
			p.saveTimeout = d
		}
	}
}

// WithSyncLogger sets the logger used for dropped background saves.
func WithSyncLogger(logger zerolog.Logger) SyncOption {
	return func(p *PresetSync) {
		p.logger = logger.With().Str("component", "preset_sync").Logger()
	}
}

// NewPresetSync constructs an uninitialized sync over store.
func NewPresetSync(store projection.PresetStore, opts ...SyncOption) (*PresetSync, error) {
	if store == nil {
		return nil, errors.New("preset sync: nil store")
	}
	p := &PresetSync{
		store:       store,
		debounce:    DefaultDebounce,
		afterFunc:   systemAfterFunc,
		saveTimeout: defaultSaveTimeout,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// State returns the current load state.
func (p *PresetSync) State() SyncState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Snapshot returns a copy of the local rows and cached results.
func (p *PresetSync) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// HasPendingSave reports whether a debounced save is scheduled.
func (p *PresetSync) HasPendingSave() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}

// Load fetches the stored preset. It always leaves the sync Ready; on failure
// the local rows are kept and a persistence error is returned. Calling Load
// again after the first call returns the local snapshot.
func (p *PresetSync) Load(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Snapshot{}, ErrPresetSyncClosed
	}
	if p.state != StateUninitialized {
		snap := p.snapshotLocked()
		p.mu.Unlock()
		return snap, nil
	}
	p.state = StateLoading
	p.mu.Unlock()

	preset, err := p.store.Load(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateReady
	if err != nil {
		p.logger.Warn().Err(err).Msg("preset load failed")
		return p.snapshotLocked(), fmt.Errorf("projection: load preset: %w: %w", fueling.ErrPersistenceFailure, err)
	}
	if len(preset.Rows) > 0 {
		p.rows = projection.CloneRows(preset.Rows)
	}
	if preset.Cached != nil {
		p.cached = preset.Cached
	}
	return p.snapshotLocked(), nil
}

// Edit replaces the local rows. While loading the rows are only kept locally;
// once ready a debounced save is scheduled, replacing any pending one.
func (p *PresetSync) Edit(rows []projection.InputRow) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPresetSyncClosed
	}
	switch p.state {
	case StateUninitialized:
		return ErrPresetSyncNotStarted
	case StateLoading:
		p.rows = projection.CloneRows(rows)
		return nil
	default:
		p.rows = projection.CloneRows(rows)
		p.scheduleLocked()
		return nil
	}
}

// SaveNow cancels any pending save and persists rows with cached results synchronously.
func (p *PresetSync) SaveNow(ctx context.Context, rows []projection.InputRow, cached *projection.CachedProjection) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPresetSyncClosed
	}
	if p.state != StateReady {
		p.mu.Unlock()
		return ErrPresetSyncNotReady
	}
	p.cancelLocked()
	p.rows = projection.CloneRows(rows)
	if cached != nil {
		p.cached = cached
	}
	preset := projection.Preset{Rows: projection.CloneRows(p.rows), Cached: cached}
	p.mu.Unlock()

	start := time.Now()
	err := p.store.Save(ctx, preset)
	metrics.ObservePresetSave(metrics.SaveModeExplicit, metrics.Result(err), time.Since(start))
	if err != nil {
		return fmt.Errorf("projection: save preset: %w: %w", fueling.ErrPersistenceFailure, err)
	}
	return nil
}

// Flush writes a pending debounced save immediately. It is a no-op when no
// save is pending.
func (p *PresetSync) Flush(ctx context.Context) error {
	p.mu.Lock()
	if p.closed || p.pending == nil {
		p.mu.Unlock()
		return nil
	}
	p.cancelLocked()
	preset := projection.Preset{Rows: projection.CloneRows(p.rows)}
	p.mu.Unlock()

	start := time.Now()
	err := p.store.Save(ctx, preset)
	metrics.ObservePresetSave(metrics.SaveModeAuto, metrics.Result(err), time.Since(start))
	if err != nil {
		return fmt.Errorf("projection: flush preset: %w: %w", fueling.ErrPersistenceFailure, err)
	}
	return nil
}

// Close cancels any pending save without writing it; use Flush first to keep
// it. Later calls fail with ErrPresetSyncClosed.
func (p *PresetSync) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.cancelLocked()
}

func (p *PresetSync) scheduleLocked() {
	p.cancelLocked()
	gen := p.generation
	p.pending = p.afterFunc(p.debounce, func() {
		p.fire(gen)
	})
}

// cancelLocked stops the pending timer and invalidates callbacks already in flight.
func (p *PresetSync) cancelLocked() {
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
	p.generation++
}

func (p *PresetSync) fire(gen uint64) {
	p.mu.Lock()
	if p.closed || gen != p.generation {
		p.mu.Unlock()
		return
	}
	p.pending = nil
	preset := projection.Preset{Rows: projection.CloneRows(p.rows)}
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), p.saveTimeout)
	defer cancel()

	start := time.Now()
	err := p.store.Save(ctx, preset)
	metrics.ObservePresetSave(metrics.SaveModeAuto, metrics.Result(err), time.Since(start))
	if err != nil {
		p.logger.Error().Err(err).Int("rows", len(preset.Rows)).Msg("preset auto-save failed")
	}
}

func (p *PresetSync) snapshotLocked() Snapshot {
	rows := projection.CloneRows(p.rows)
	if rows == nil {
		rows = []projection.InputRow{}
	}
	return Snapshot{State: p.state.String(), Rows: rows, Cached: p.cached}
}
