package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepository stores the vehicle inventory and branch locations.
type AdminRepository struct {
	conn
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{conn: conn{pool: pool}}
}

func (r *AdminRepository) CreateVehicle(ctx context.Context, v domain.Vehicle) error {
	const stmt = `
INSERT INTO vehicles (id, make, model, year, plate, status, daily_rate_cents, home_location_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.exec(ctx, stmt,
		v.ID, v.Make, v.Model, v.Year, v.Plate, string(v.Status), v.DailyRateCents, nullable(v.HomeLocationID), v.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isUniqueViolation(err) {
			return domain.ErrPlateTaken
		}
		if isForeignKeyViolation(err) {
			return domain.ErrLocationNotFound
		}
		return fmt.Errorf("create vehicle: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := r.query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY plate ASC`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", rows.Err())
	}
	return vehicles, nil
}

func (r *AdminRepository) GetVehicle(ctx context.Context, id string) (domain.Vehicle, error) {
	v, err := scanVehicle(r.queryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Vehicle{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Vehicle{}, domain.ErrVehicleNotFound
		}
		return domain.Vehicle{}, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

func (r *AdminRepository) UpdateVehicleStatus(ctx context.Context, id string, status domain.VehicleStatus) error {
	tag, err := r.exec(ctx, `UPDATE vehicles SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update vehicle status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVehicleNotFound
	}
	return nil
}

func (r *AdminRepository) CreateLocation(ctx context.Context, l domain.Location) error {
	const stmt = `
INSERT INTO locations (id, name, address, created_at)
VALUES ($1, $2, $3, $4)`
	_, err := r.exec(ctx, stmt, l.ID, l.Name, l.Address, l.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListLocations(ctx context.Context) ([]domain.Location, error) {
	const query = `
SELECT id, name, address, created_at
FROM locations
ORDER BY name ASC`
	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []domain.Location
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		l.CreatedAt = l.CreatedAt.UTC()
		locations = append(locations, l)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate locations: %w", rows.Err())
	}
	return locations, nil
}

func (r *AdminRepository) GetLocation(ctx context.Context, id string) (domain.Location, error) {
	var l domain.Location
	err := r.queryRow(ctx, `SELECT id, name, address, created_at FROM locations WHERE id = $1`, id).
		Scan(&l.ID, &l.Name, &l.Address, &l.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Location{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Location{}, domain.ErrLocationNotFound
		}
		return domain.Location{}, fmt.Errorf("get location: %w", err)
	}
	l.CreatedAt = l.CreatedAt.UTC()
	return l, nil
}

// CalendarReader joins the reservation and directory reads the calendar needs.
type CalendarReader struct {
	*ReservationRepository
	*AdminRepository
}

func NewCalendarReader(pool *pgxpool.Pool) CalendarReader {
	return CalendarReader{
		ReservationRepository: NewReservationRepository(pool),
		AdminRepository:       NewAdminRepository(pool),
	}
}
