package postgres

import (
	"fmt"
	"time"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
	"github.com/jackc/pgx/v5"
)

const reservationColumns = `
r.id, r.reservation_number, r.vehicle_id, r.customer_id,
r.guest_name, r.guest_phone, r.guest_email, COALESCE(c.full_name, r.guest_name, ''),
r.starts_at, r.ends_at, r.pickup_location_id, r.return_location_id,
r.status, r.payment_status, r.total_amount_cents,
r.admin_notes, r.approved_by, r.approved_at, r.cancel_reason, r.idempotency_key,
r.version, r.created_at, r.updated_at`

const reservationFrom = `
FROM reservations r
LEFT JOIN customers c ON c.id = r.customer_id`

// reservationRow mirrors reservationColumns. Nullable columns are pointers.
type reservationRow struct {
	ID               string
	Number           string
	VehicleID        string
	CustomerID       *string
	GuestName        *string
	GuestPhone       *string
	GuestEmail       *string
	CustomerName     string
	StartsAt         time.Time
	EndsAt           time.Time
	PickupLocationID string
	ReturnLocationID string
	Status           string
	PaymentStatus    string
	TotalAmountCents int64
	AdminNotes       string
	ApprovedBy       string
	ApprovedAt       *time.Time
	CancelReason     string
	IdempotencyKey   *string
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (row *reservationRow) targets() []any {
	return []any{
		&row.ID, &row.Number, &row.VehicleID, &row.CustomerID,
		&row.GuestName, &row.GuestPhone, &row.GuestEmail, &row.CustomerName,
		&row.StartsAt, &row.EndsAt, &row.PickupLocationID, &row.ReturnLocationID,
		&row.Status, &row.PaymentStatus, &row.TotalAmountCents,
		&row.AdminNotes, &row.ApprovedBy, &row.ApprovedAt, &row.CancelReason, &row.IdempotencyKey,
		&row.Version, &row.CreatedAt, &row.UpdatedAt,
	}
}

// toDomain rejects rows the schema should never have produced.
func (row *reservationRow) toDomain() (domain.Reservation, error) {
	status, err := domain.ParseStatus(row.Status)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("%w: reservation %s status %q", domain.ErrMalformedRow, row.ID, row.Status)
	}
	payment, err := domain.ParsePaymentStatus(row.PaymentStatus)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("%w: reservation %s payment status %q", domain.ErrMalformedRow, row.ID, row.PaymentStatus)
	}
	rng := domain.DateRange{Start: row.StartsAt.UTC(), End: row.EndsAt.UTC()}
	if rng.Validate() != nil {
		return domain.Reservation{}, fmt.Errorf("%w: reservation %s range %s", domain.ErrMalformedRow, row.ID, rng)
	}

	customer := domain.CustomerRef{CustomerID: deref(row.CustomerID)}
	if row.GuestName != nil || row.GuestPhone != nil || row.GuestEmail != nil {
		customer.Guest = &domain.GuestContact{
			Name:  deref(row.GuestName),
			Phone: deref(row.GuestPhone),
			Email: deref(row.GuestEmail),
		}
	}
	if customer.Validate() != nil {
		return domain.Reservation{}, fmt.Errorf("%w: reservation %s has no customer", domain.ErrMalformedRow, row.ID)
	}

	r := domain.Reservation{
		ID:               row.ID,
		Number:           row.Number,
		VehicleID:        row.VehicleID,
		Customer:         customer,
		CustomerName:     row.CustomerName,
		Range:            rng,
		PickupLocationID: row.PickupLocationID,
		ReturnLocationID: row.ReturnLocationID,
		Status:           status,
		PaymentStatus:    payment,
		TotalAmountCents: row.TotalAmountCents,
		AdminNotes:       row.AdminNotes,
		ApprovedBy:       row.ApprovedBy,
		CancelReason:     row.CancelReason,
		IdempotencyKey:   deref(row.IdempotencyKey),
		Version:          row.Version,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
	if row.ApprovedAt != nil {
		at := row.ApprovedAt.UTC()
		r.ApprovedAt = &at
	}
	return r, nil
}

func scanReservation(row pgx.Row) (domain.Reservation, error) {
	var rr reservationRow
	if err := row.Scan(rr.targets()...); err != nil {
		return domain.Reservation{}, err
	}
	return rr.toDomain()
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()
	var out []domain.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate reservations: %w", rows.Err())
	}
	return out, nil
}

type vehicleRow struct {
	ID             string
	Make           string
	Model          string
	Year           int
	Plate          string
	Status         string
	DailyRateCents int64
	HomeLocationID *string
	CreatedAt      time.Time
}

const vehicleColumns = `id, make, model, year, plate, status, daily_rate_cents, home_location_id, created_at`

func (row *vehicleRow) targets() []any {
	return []any{&row.ID, &row.Make, &row.Model, &row.Year, &row.Plate, &row.Status, &row.DailyRateCents, &row.HomeLocationID, &row.CreatedAt}
}

func (row *vehicleRow) toDomain() (domain.Vehicle, error) {
	status, err := domain.ParseVehicleStatus(row.Status)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("%w: vehicle %s status %q", domain.ErrMalformedRow, row.ID, row.Status)
	}
	return domain.Vehicle{
		ID:             row.ID,
		Make:           row.Make,
		Model:          row.Model,
		Year:           row.Year,
		Plate:          row.Plate,
		Status:         status,
		DailyRateCents: row.DailyRateCents,
		HomeLocationID: deref(row.HomeLocationID),
		CreatedAt:      row.CreatedAt.UTC(),
	}, nil
}

func scanVehicle(row pgx.Row) (domain.Vehicle, error) {
	var vr vehicleRow
	if err := row.Scan(vr.targets()...); err != nil {
		return domain.Vehicle{}, err
	}
	return vr.toDomain()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
