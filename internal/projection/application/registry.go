package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	projection "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/domain"
)

const defaultLoadTimeout = 10 * time.Second

// StoreFactory builds the preset store of a tenant.
type StoreFactory func(tenantID string) (projection.PresetStore, error)

// SyncRegistry keeps one PresetSync per tenant.
type SyncRegistry struct {
	factory StoreFactory
	opts    []SyncOption

	mu    sync.Mutex
	syncs map[string]*PresetSync
}

// NewSyncRegistry constructs a registry; opts are applied to every sync it creates.
func NewSyncRegistry(factory StoreFactory, opts ...SyncOption) (*SyncRegistry, error) {
	if factory == nil {
		return nil, errors.New("sync registry: nil store factory")
	}
	return &SyncRegistry{factory: factory, opts: opts, syncs: make(map[string]*PresetSync)}, nil
}

// Get returns the tenant's sync, creating and loading it on first use. The
// load is detached from ctx so an aborted request cannot leave the sync with
// unloaded rows. A sync whose load fails is closed and dropped from the
// registry; it is returned with the error and the next Get loads again.
func (r *SyncRegistry) Get(ctx context.Context, tenantID string) (*PresetSync, error) {
	if tenantID == "" {
		return nil, errors.New("sync registry: empty tenant id")
	}
	r.mu.Lock()
	if existing, ok := r.syncs[tenantID]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	store, err := r.factory(tenantID)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	ps, err := NewPresetSync(store, r.opts...)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.syncs[tenantID] = ps
	r.mu.Unlock()

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultLoadTimeout)
	defer cancel()
	if _, err := ps.Load(loadCtx); err != nil {
		r.mu.Lock()
		if r.syncs[tenantID] == ps {
			delete(r.syncs, tenantID)
		}
		r.mu.Unlock()
		ps.Close()
		return ps, err
	}
	return ps, nil
}

// Shutdown saves every pending edit within ctx, then closes all syncs.
func (r *SyncRegistry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	syncs := r.syncs
	r.syncs = make(map[string]*PresetSync)
	r.mu.Unlock()
	var errs []error
	for tenantID, ps := range syncs {
		if err := ps.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
		}
		ps.Close()
	}
	return errors.Join(errs...)
}

// Close drops every pending save without writing it.
func (r *SyncRegistry) Close() {
	r.mu.Lock()
	syncs := r.syncs
	r.syncs = make(map[string]*PresetSync)
	r.mu.Unlock()
	for _, ps := range syncs {
		ps.Close()
	}
}
