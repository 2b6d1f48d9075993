package app

import (
	"context"
	"errors"

	"github.com/aronareadev/rentcar-admin-sub001/internal/clock"
	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

// reservationWriter is the storage needed to change one reservation under a
// row lock.
type reservationWriter interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetReservationForUpdate(ctx context.Context, id string) (domain.Reservation, error)
	UpdateReservation(ctx context.Context, r domain.Reservation, expectedVersion int64) error
}

// mutation edits r in place inside the transaction and names the event to
// publish once committed.
type mutation func(ctx context.Context, r *domain.Reservation) (domain.ReservationEventType, error)

// updateReservation loads id for update, applies fn and writes the result with
// a version compare-and-swap. A concurrent modification restarts the whole
// operation up to retries times.
func updateReservation(ctx context.Context, repo reservationWriter, clk clock.Clock, retries int, id string, fn mutation) (domain.Reservation, domain.ReservationEventType, error) {
	if id == "" {
		return domain.Reservation{}, "", domain.ErrInvalidID
	}
	for attempt := 0; ; attempt++ {
		var (
			result domain.Reservation
			evType domain.ReservationEventType
		)
		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			r, err := repo.GetReservationForUpdate(txCtx, id)
			if err != nil {
				return err
			}
			expected := r.Version
			t, err := fn(txCtx, &r)
			if err != nil {
				return err
			}
			r.Version = expected + 1
			r.UpdatedAt = clk.Now()
			if err := repo.UpdateReservation(txCtx, r, expected); err != nil {
				return err
			}
			result, evType = r, t
			return nil
		})
		if err != nil {
			if errors.Is(err, domain.ErrConcurrencyConflict) && attempt < retries {
				continue
			}
			return domain.Reservation{}, "", err
		}
		return result, evType, nil
	}
}
