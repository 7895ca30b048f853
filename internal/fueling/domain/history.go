package fueling

import (
	"context"
	"time"
)

// HistoryQuery filters operations by date range and optional dimensions.
// From is inclusive, To is inclusive; zero bounds are open.
type HistoryQuery struct {
	From        time.Time
	To          time.Time
	AirlineID   string
	Destination string
	TrafficType TrafficType
}

// Matches reports whether an operation satisfies the query.
func (q HistoryQuery) Matches(op FuelOperation) bool {
	if !q.From.IsZero() && op.DateTime.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && op.DateTime.After(q.To) {
		return false
	}
	if q.AirlineID != "" && op.AirlineID != q.AirlineID {
		return false
	}
	if q.Destination != "" && op.Destination != q.Destination {
		return false
	}
	if q.TrafficType != "" && op.TrafficType != q.TrafficType {
		return false
	}
	return true
}

// HistorySource loads recorded fueling operations.
type HistorySource interface {
	ListOperations(ctx context.Context, query HistoryQuery) ([]FuelOperation, error)
	GetOperation(ctx context.Context, id string) (*FuelOperation, error)
}

// AirlineDirectory resolves airline display names.
type AirlineDirectory interface {
	AirlineName(ctx context.Context, airlineID string) (string, error)
}
