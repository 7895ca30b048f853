package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrAirlineNotFound is returned for unknown airline ids.
var ErrAirlineNotFound = errors.New("airline directory: not found")

// AirlineDirectory resolves airline names from the airlines table.
type AirlineDirectory struct {
	db *sql.DB
}

// NewAirlineDirectory constructs a directory.
func NewAirlineDirectory(db *sql.DB) *AirlineDirectory {
	return &AirlineDirectory{db: db}
}

// AirlineName returns the display name of an airline.
func (d *AirlineDirectory) AirlineName(ctx context.Context, airlineID string) (string, error) {
	if d == nil || d.db == nil {
		return "", errors.New("airline directory: nil db")
	}
	var name string
	err := d.db.QueryRowContext(ctx, `SELECT name FROM airlines WHERE id = $1`, airlineID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("airline %q: %w", airlineID, ErrAirlineNotFound)
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

// Upsert stores an airline name.
func (d *AirlineDirectory) Upsert(ctx context.Context, airlineID, name string) error {
	if d == nil || d.db == nil {
		return errors.New("airline directory: nil db")
	}
	_, err := d.db.ExecContext(ctx, `
INSERT INTO airlines (id, name) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, airlineID, name)
	return err
}
