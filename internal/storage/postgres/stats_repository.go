package postgres

import (
	"context"
	"fmt"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepository struct {
	conn
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{conn: conn{pool: pool}}
}

func (r *StatsRepository) CountReservationsByStatus(ctx context.Context) (map[domain.Status]int, error) {
	rows, err := r.query(ctx, `SELECT status, COUNT(*) FROM reservations GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int, len(domain.AllStatuses))
	for rows.Next() {
		var (
			raw string
			n   int
		)
		if err := rows.Scan(&raw, &n); err != nil {
			return nil, fmt.Errorf("scan reservation count: %w", err)
		}
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: reservation status %q", domain.ErrMalformedRow, raw)
		}
		counts[status] = n
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate reservation counts: %w", rows.Err())
	}
	return counts, nil
}

func (r *StatsRepository) SumPaidRevenue(ctx context.Context) (int64, error) {
	var total int64
	err := r.queryRow(ctx, `SELECT COALESCE(SUM(total_amount_cents), 0) FROM reservations WHERE payment_status = 'paid'`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum paid revenue: %w", err)
	}
	return total, nil
}

func (r *StatsRepository) CountVehiclesByStatus(ctx context.Context) (map[domain.VehicleStatus]int, error) {
	rows, err := r.query(ctx, `SELECT status, COUNT(*) FROM vehicles GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count vehicles: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.VehicleStatus]int)
	for rows.Next() {
		var (
			raw string
			n   int
		)
		if err := rows.Scan(&raw, &n); err != nil {
			return nil, fmt.Errorf("scan vehicle count: %w", err)
		}
		status, err := domain.ParseVehicleStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: vehicle status %q", domain.ErrMalformedRow, raw)
		}
		counts[status] = n
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate vehicle counts: %w", rows.Err())
	}
	return counts, nil
}

func (r *StatsRepository) CountPickupsAndReturns(ctx context.Context, day domain.DateRange) (pickups, returns int, err error) {
	const query = `
SELECT
	COUNT(*) FILTER (WHERE starts_at >= $1 AND starts_at < $2),
	COUNT(*) FILTER (WHERE ends_at >= $1 AND ends_at < $2)
FROM reservations
WHERE status <> 'cancelled'`
	if err := r.queryRow(ctx, query, day.Start, day.End).Scan(&pickups, &returns); err != nil {
		return 0, 0, fmt.Errorf("count pickups and returns: %w", err)
	}
	return pickups, returns, nil
}
