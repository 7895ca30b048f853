package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
)

// OperationStore is an in-memory history source.
type OperationStore struct {
	mu       sync.RWMutex
	ops      []fueling.FuelOperation
	airlines map[string]string
}

// NewOperationStore constructs a store seeded with ops.
func NewOperationStore(ops ...fueling.FuelOperation) *OperationStore {
	s := &OperationStore{airlines: make(map[string]string)}
	for _, op := range ops {
		_ = s.Add(op)
	}
	return s
}

// Add appends an operation; ids must be unique.
func (s *OperationStore) Add(op fueling.FuelOperation) error {
	if op.ID == "" {
		return errors.New("operation store: empty id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.ops {
		if existing.ID == op.ID {
			return fmt.Errorf("operation store: duplicate id %q", op.ID)
		}
	}
	s.ops = append(s.ops, op.Normalize())
	return nil
}

// SetAirline registers an airline display name.
func (s *OperationStore) SetAirline(id, name string) {
	s.mu.Lock()
	s.airlines[id] = name
	s.mu.Unlock()
}

// ListOperations returns matching operations, oldest first.
func (s *OperationStore) ListOperations(ctx context.Context, query fueling.HistoryQuery) ([]fueling.FuelOperation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []fueling.FuelOperation
	for _, op := range s.ops {
		if query.Matches(op) {
			out = append(out, s.withName(op))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateTime.Before(out[j].DateTime)
	})
	return out, nil
}

// GetOperation returns an operation by id.
func (s *OperationStore) GetOperation(ctx context.Context, id string) (*fueling.FuelOperation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, op := range s.ops {
		if op.ID == id {
			found := s.withName(op)
			return &found, nil
		}
	}
	return nil, fmt.Errorf("operation %q: %w", id, fueling.ErrOperationNotFound)
}

// AirlineName implements fueling.AirlineDirectory.
func (s *OperationStore) AirlineName(_ context.Context, airlineID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.airlines[airlineID]
	if !ok {
		return "", fmt.Errorf("airline %q not found", airlineID)
	}
	return name, nil
}

func (s *OperationStore) withName(op fueling.FuelOperation) fueling.FuelOperation {
	if op.AirlineName == "" {
		op.AirlineName = s.airlines[op.AirlineID]
	}
	return op
}
