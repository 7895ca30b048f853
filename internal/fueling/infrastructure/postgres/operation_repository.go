package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
)

const operationColumns = `
	o.id, o.date_time, o.airline_id, COALESCE(a.name, ''), o.destination,
	o.registration, o.delivery_note, o.quantity_liters, o.quantity_kg,
	o.price_per_kg, o.discount_percent, o.currency, o.home_exchange_rate,
	o.total_amount, o.traffic_type`

// OperationRepository reads recorded fueling operations.
type OperationRepository struct {
	db       *sql.DB
	tenantID string
}

// Option configures the repository.
type Option func(*OperationRepository)

// WithTenantID scopes queries to a tenant.
func WithTenantID(tenantID string) Option {
	return func(r *OperationRepository) {
		r.tenantID = tenantID
	}
}

// NewOperationRepository constructs a repository.
func NewOperationRepository(db *sql.DB, opts ...Option) *OperationRepository {
	repo := &OperationRepository{db: db}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ListOperations returns operations matching query, oldest first.
func (r *OperationRepository) ListOperations(ctx context.Context, query fueling.HistoryQuery) ([]fueling.FuelOperation, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("operation repo: nil db")
	}

	var (
		where []string
		args  []any
	)
	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if r.tenantID != "" {
		add("o.tenant_id = $%d", r.tenantID)
	}
	if !query.From.IsZero() {
		add("o.date_time >= $%d", query.From.UTC())
	}
	if !query.To.IsZero() {
		add("o.date_time <= $%d", query.To.UTC())
	}
	if query.AirlineID != "" {
		add("o.airline_id = $%d", query.AirlineID)
	}
	if query.Destination != "" {
		add("o.destination = $%d", query.Destination)
	}
	if query.TrafficType != "" {
		add("o.traffic_type = $%d", string(query.TrafficType))
	}

	stmt := "SELECT" + operationColumns + `
FROM fuel_operations o
LEFT JOIN airlines a ON a.id = o.airline_id`
	if len(where) > 0 {
		stmt += "\nWHERE " + strings.Join(where, " AND ")
	}
	stmt += "\nORDER BY o.date_time ASC, o.id ASC"

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []fueling.FuelOperation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetOperation fetches one operation; unknown ids return ErrOperationNotFound.
func (r *OperationRepository) GetOperation(ctx context.Context, id string) (*fueling.FuelOperation, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("operation repo: nil db")
	}
	args := []any{id}
	stmt := "SELECT" + operationColumns + `
FROM fuel_operations o
LEFT JOIN airlines a ON a.id = o.airline_id
WHERE o.id = $1`
	if r.tenantID != "" {
		args = append(args, r.tenantID)
		stmt += " AND o.tenant_id = $2"
	}
	op, err := scanOperation(r.db.QueryRowContext(ctx, stmt+"\nLIMIT 1", args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("operation %q: %w", id, fueling.ErrOperationNotFound)
	}
	if err != nil {
		return nil, err
	}
	return op, nil
}

// Insert stores an operation. Density is recomputed before writing.
func (r *OperationRepository) Insert(ctx context.Context, op fueling.FuelOperation) error {
	if r == nil || r.db == nil {
		return errors.New("operation repo: nil db")
	}
	op = op.Normalize()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO fuel_operations (
	id, tenant_id, date_time, airline_id, destination, registration, delivery_note,
	quantity_liters, quantity_kg, specific_density, price_per_kg, discount_percent,
	currency, home_exchange_rate, total_amount, traffic_type
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16
)`,
		op.ID, r.tenantID, op.DateTime.UTC(), op.AirlineID, op.Destination, op.Registration, op.DeliveryNote,
		op.QuantityLiters, op.QuantityKg, op.SpecificDensity, op.PricePerKg, op.DiscountPercent,
		string(op.Currency), nullFloat(op.HomeExchangeRate), nullFloat(op.TotalAmount), string(op.TrafficType),
	)
	return err
}

// CountOperations returns the number of stored operations of the tenant.
func (r *OperationRepository) CountOperations(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("operation repo: nil db")
	}
	var count int64
	if r.tenantID != "" {
		err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fuel_operations WHERE tenant_id = $1", r.tenantID).Scan(&count)
		return count, err
	}
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fuel_operations").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperation(row rowScanner) (*fueling.FuelOperation, error) {
	var op fueling.FuelOperation
	var currency, traffic string
	var registration, deliveryNote sql.NullString
	var rate, total sql.NullFloat64
	err := row.Scan(
		&op.ID,
		&op.DateTime,
		&op.AirlineID,
		&op.AirlineName,
		&op.Destination,
		&registration,
		&deliveryNote,
		&op.QuantityLiters,
		&op.QuantityKg,
		&op.PricePerKg,
		&op.DiscountPercent,
		&currency,
		&rate,
		&total,
		&traffic,
	)
	if err != nil {
		return nil, err
	}
	op.DateTime = op.DateTime.UTC()
	op.Registration = registration.String
	op.DeliveryNote = deliveryNote.String
	op.Currency = fueling.Currency(currency)
	op.TrafficType = fueling.TrafficType(traffic)
	if rate.Valid {
		v := rate.Float64
		op.HomeExchangeRate = &v
	}
	if total.Valid {
		v := total.Float64
		op.TotalAmount = &v
	}
	normalized := op.Normalize()
	return &normalized, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
