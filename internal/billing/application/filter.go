package application

import (
	"errors"
	"fmt"
	"strings"
	"time"

	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
)

// ErrInvalidFilter is returned for inverted date ranges or unknown traffic types.
var ErrInvalidFilter = errors.New("billing: invalid report filter")

const filterDateLayout = "2006-01-02"

// ReportFilter selects the operations of a consolidated report.
type ReportFilter struct {
	From        time.Time
	To          time.Time
	AirlineID   string
	Destination string
	TrafficType fueling.TrafficType
	Description string
}

// Validate checks the date range and traffic type.
func (f ReportFilter) Validate() error {
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return fmt.Errorf("%w: from after to", ErrInvalidFilter)
	}
	if f.TrafficType != "" && !f.TrafficType.IsValid() {
		return fmt.Errorf("%w: traffic type %q", ErrInvalidFilter, f.TrafficType)
	}
	return nil
}

// Query converts the filter into a history query.
func (f ReportFilter) Query() fueling.HistoryQuery {
	return fueling.HistoryQuery{
		From:        f.From,
		To:          f.To,
		AirlineID:   f.AirlineID,
		Destination: f.Destination,
		TrafficType: f.TrafficType,
	}
}

// Describe returns the caller's description or one generated from the filter.
func (f ReportFilter) Describe() string {
	if d := strings.TrimSpace(f.Description); d != "" {
		return d
	}
	var parts []string
	switch {
	case !f.From.IsZero() && !f.To.IsZero():
		parts = append(parts, fmt.Sprintf("period %s to %s", f.From.Format(filterDateLayout), f.To.Format(filterDateLayout)))
	case !f.From.IsZero():
		parts = append(parts, "from "+f.From.Format(filterDateLayout))
	case !f.To.IsZero():
		parts = append(parts, "until "+f.To.Format(filterDateLayout))
	}
	if f.AirlineID != "" {
		parts = append(parts, "airline "+f.AirlineID)
	}
	if f.Destination != "" {
		parts = append(parts, "destination "+f.Destination)
	}
	if f.TrafficType != "" {
		parts = append(parts, string(f.TrafficType)+" traffic")
	}
	if len(parts) == 0 {
		return "all operations"
	}
	return strings.Join(parts, ", ")
}

// MonthFilter covers the calendar month containing t, in t's location.
func MonthFilter(t time.Time) ReportFilter {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return ReportFilter{
		From:        start,
		To:          end,
		Description: "month " + start.Format("2006-01"),
	}
}
