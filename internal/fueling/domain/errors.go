package fueling

import "errors"

var (
	// ErrInvalidOperationData is returned for negative, NaN or infinite quantities and prices.
	ErrInvalidOperationData = errors.New("fueling: invalid operation data")
	// ErrInvalidCurrency is returned for an unrecognised currency code.
	ErrInvalidCurrency = errors.New("fueling: invalid currency")
	// ErrIncompleteInputRow is returned for projection rows missing airline, destination or count.
	ErrIncompleteInputRow = errors.New("fueling: incomplete input row")
	// ErrHistoryUnavailable is returned when the history source fails.
	ErrHistoryUnavailable = errors.New("fueling: history unavailable")
	// ErrPersistenceFailure is returned when loading or saving presets fails.
	ErrPersistenceFailure = errors.New("fueling: persistence failure")
	// ErrOperationNotFound is returned when an operation id is unknown.
	ErrOperationNotFound = errors.New("fueling: operation not found")
)
