package application

import (
	"context"
	"errors"
	"sync"
	"time"

	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
	projection "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/domain"
)

type fakeHistory struct {
	mu    sync.Mutex
	ops   []fueling.FuelOperation
	err   error
	calls int
}

func (h *fakeHistory) ListOperations(_ context.Context, q fueling.HistoryQuery) ([]fueling.FuelOperation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	var out []fueling.FuelOperation
	for _, op := range h.ops {
		if q.Matches(op) {
			out = append(out, op)
		}
	}
	return out, nil
}

func (h *fakeHistory) GetOperation(_ context.Context, id string) (*fueling.FuelOperation, error) {
	for _, op := range h.ops {
		if op.ID == id {
			op := op
			return &op, nil
		}
	}
	return nil, fueling.ErrOperationNotFound
}

type fakeAirlines map[string]string

func (f fakeAirlines) AirlineName(_ context.Context, id string) (string, error) {
	name, ok := f[id]
	if !ok {
		return "", errors.New("airline not found")
	}
	return name, nil
}

type fakeStore struct {
	mu      sync.Mutex
	preset  projection.Preset
	loadErr error
	saveErr error
	saves   []projection.Preset

	loadEntered chan struct{}
	release     chan struct{}
}

func (s *fakeStore) Load(ctx context.Context) (projection.Preset, error) {
	if s.loadEntered != nil {
		close(s.loadEntered)
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return projection.Preset{}, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return projection.Preset{}, s.loadErr
	}
	return s.preset, nil
}

func (s *fakeStore) Save(_ context.Context, preset projection.Preset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves = append(s.saves, preset)
	return nil
}

func (s *fakeStore) saved() []projection.Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]projection.Preset, len(s.saves))
	copy(out, s.saves)
	return out
}

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
	delays []time.Duration
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{fn: f}
	c.timers = append(c.timers, t)
	c.delays = append(c.delays, d)
	return t
}

func (c *fakeClock) scheduled() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*fakeTimer, len(c.timers))
	copy(out, c.timers)
	return out
}

// fireActive runs every timer that has not been stopped and returns how many ran.
func (c *fakeClock) fireActive() int {
	fired := 0
	for _, t := range c.scheduled() {
		if t.stopped {
			continue
		}
		t.stopped = true
		t.fn()
		fired++
	}
	return fired
}
