package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
	conn
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool, conn: conn{pool: pool}}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + reservationFrom + ` WHERE r.id = $1`
	return r.getReservation(ctx, query, id)
}

// GetReservationForUpdate locks the reservation row until the surrounding
// transaction ends.
func (r *ReservationRepository) GetReservationForUpdate(ctx context.Context, id string) (domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + reservationFrom + ` WHERE r.id = $1 FOR UPDATE OF r`
	return r.getReservation(ctx, query, id)
}

func (r *ReservationRepository) getReservation(ctx context.Context, query, id string) (domain.Reservation, error) {
	res, err := scanReservation(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Reservation{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func (r *ReservationRepository) FindReservationByIdempotencyKey(ctx context.Context, key string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + reservationFrom + ` WHERE r.idempotency_key = $1`
	res, err := scanReservation(r.queryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find reservation by idempotency key: %w", err)
	}
	return &res, nil
}

// LockVehicle takes the vehicle row lock that serializes every write touching
// the vehicle's schedule.
func (r *ReservationRepository) LockVehicle(ctx context.Context, vehicleID string) error {
	var id string
	err := r.queryRow(ctx, `SELECT id FROM vehicles WHERE id = $1 FOR UPDATE`, vehicleID).Scan(&id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrVehicleNotFound
		}
		return fmt.Errorf("lock vehicle: %w", err)
	}
	return nil
}

func (r *ReservationRepository) ListBlockingReservations(ctx context.Context, vehicleID string, rng domain.DateRange) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + reservationFrom + `
WHERE r.vehicle_id = $1
	AND r.status IN ('confirmed', 'active')
	AND r.starts_at < $3
	AND r.ends_at > $2
ORDER BY r.starts_at`
	rows, err := r.query(ctx, query, vehicleID, rng.Start, rng.End)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list blocking reservations: %w", err)
	}
	return collectReservations(rows)
}

// CreateReservation inserts res. An existing row with the same idempotency key
// yields domain.ErrIdempotencyConflict.
func (r *ReservationRepository) CreateReservation(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (
	id, reservation_number, vehicle_id, customer_id, guest_name, guest_phone, guest_email,
	starts_at, ends_at, pickup_location_id, return_location_id,
	status, payment_status, total_amount_cents,
	admin_notes, approved_by, approved_at, cancel_reason, idempotency_key,
	version, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
ON CONFLICT ON CONSTRAINT reservations_idempotency_key DO NOTHING`

	var guestName, guestPhone, guestEmail *string
	if g := res.Customer.Guest; g != nil {
		guestName, guestPhone, guestEmail = nullable(g.Name), nullable(g.Phone), nullable(g.Email)
	}
	tag, err := r.exec(ctx, stmt,
		res.ID,
		res.Number,
		res.VehicleID,
		nullable(res.Customer.CustomerID),
		guestName,
		guestPhone,
		guestEmail,
		res.Range.Start,
		res.Range.End,
		res.PickupLocationID,
		res.ReturnLocationID,
		string(res.Status),
		string(res.PaymentStatus),
		res.TotalAmountCents,
		res.AdminNotes,
		res.ApprovedBy,
		res.ApprovedAt,
		res.CancelReason,
		nullable(res.IdempotencyKey),
		res.Version,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		return translateWriteError("create reservation", res.VehicleID, err)
	}
	// A concurrent request with the same key won; the transaction stays usable
	// so the caller can read it back.
	if tag.RowsAffected() == 0 {
		return domain.ErrIdempotencyConflict
	}
	return nil
}

// UpdateReservation writes res if the stored version still equals
// expectedVersion.
func (r *ReservationRepository) UpdateReservation(ctx context.Context, res domain.Reservation, expectedVersion int64) error {
	const stmt = `
UPDATE reservations SET
	starts_at = $3,
	ends_at = $4,
	status = $5,
	payment_status = $6,
	total_amount_cents = $7,
	admin_notes = $8,
	approved_by = $9,
	approved_at = $10,
	cancel_reason = $11,
	version = $12,
	updated_at = $13
WHERE id = $1 AND version = $2`

	tag, err := r.exec(ctx, stmt,
		res.ID,
		expectedVersion,
		res.Range.Start,
		res.Range.End,
		string(res.Status),
		string(res.PaymentStatus),
		res.TotalAmountCents,
		res.AdminNotes,
		res.ApprovedBy,
		res.ApprovedAt,
		res.CancelReason,
		res.Version,
		res.UpdatedAt,
	)
	if err != nil {
		return translateWriteError("update reservation", res.VehicleID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1)`, res.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check reservation: %w", err)
	}
	if !exists {
		return domain.ErrReservationNotFound
	}
	return domain.ErrConcurrencyConflict
}

func translateWriteError(op, vehicleID string, err error) error {
	switch {
	case isInvalidUUID(err):
		return domain.ErrInvalidID
	case isExclusionViolation(err):
		return &domain.SchedulingConflictError{VehicleID: vehicleID}
	case isRetryable(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConcurrencyConflict, err)
	case isUniqueViolation(err):
		if violatedConstraint(err) == "reservations_idempotency_key" {
			return domain.ErrIdempotencyConflict
		}
	case isForeignKeyViolation(err):
		switch violatedConstraint(err) {
		case "reservations_vehicle_fk":
			return domain.ErrVehicleNotFound
		case "reservations_customer_fk":
			return domain.ErrCustomerNotFound
		case "reservations_pickup_location_fk", "reservations_return_location_fk":
			return domain.ErrLocationNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

var sortColumns = map[domain.SortField]string{
	domain.SortCreatedAt: "r.created_at",
	domain.SortStart:     "r.starts_at",
	domain.SortTotal:     "r.total_amount_cents",
}

// ListReservations returns one page of reservations matching q and the total
// number of matches. q is expected to be normalized.
func (r *ReservationRepository) ListReservations(ctx context.Context, q domain.ReservationQuery) ([]domain.Reservation, int, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if len(q.Statuses) > 0 {
		add("r.status = ANY($%d)", statusStrings(q.Statuses))
	}
	if q.VehicleID != "" {
		add("r.vehicle_id = $%d", q.VehicleID)
	}
	if q.LocationID != "" {
		add("(r.pickup_location_id = $%[1]d OR r.return_location_id = $%[1]d)", q.LocationID)
	}
	if q.Window != nil {
		add("r.starts_at < $%d", q.Window.End)
		add("r.ends_at > $%d", q.Window.Start)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		add(`(r.reservation_number ILIKE $%[1]d
	OR COALESCE(c.full_name, r.guest_name, '') ILIKE $%[1]d
	OR COALESCE(r.guest_email, '') ILIKE $%[1]d)`, "%"+escapeLike(s)+"%")
	}
	where := ""
	if len(conds) > 0 {
		where = "\nWHERE " + strings.Join(conds, "\n\tAND ")
	}

	var total int
	if err := r.queryRow(ctx, `SELECT COUNT(*)`+reservationFrom+where, args...).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return nil, 0, domain.ErrInvalidID
		}
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	column, ok := sortColumns[q.Sort]
	if !ok {
		column = sortColumns[domain.SortCreatedAt]
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	query := `SELECT ` + reservationColumns + reservationFrom + where +
		fmt.Sprintf("\nORDER BY %s %s, r.id %s\nLIMIT $%d OFFSET $%d", column, dir, dir, len(args)+1, len(args)+2)
	rows, err := r.query(ctx, query, append(args, q.PerPage, q.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}
	items, err := collectReservations(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListCalendarReservations returns reservations overlapping the query window
// in the requested statuses. It takes no locks.
func (r *ReservationRepository) ListCalendarReservations(ctx context.Context, q domain.CalendarQuery) ([]domain.Reservation, error) {
	q = q.Normalize()
	args := []any{q.Window.Start, q.Window.End, statusStrings(q.Statuses)}
	query := `SELECT ` + reservationColumns + reservationFrom + `
WHERE r.starts_at < $2 AND r.ends_at > $1 AND r.status = ANY($3)`
	if q.VehicleID != "" {
		args = append(args, q.VehicleID)
		query += fmt.Sprintf(" AND r.vehicle_id = $%d", len(args))
	}
	if q.LocationID != "" {
		args = append(args, q.LocationID)
		query += fmt.Sprintf(" AND (r.pickup_location_id = $%[1]d OR r.return_location_id = $%[1]d)", len(args))
	}
	query += "\nORDER BY r.starts_at, r.reservation_number"

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list calendar reservations: %w", err)
	}
	return collectReservations(rows)
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
