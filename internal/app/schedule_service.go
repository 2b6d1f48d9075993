package app

import (
	"context"

	"github.com/aronareadev/rentcar-admin-sub001/internal/clock"
	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

type ScheduleRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetReservationForUpdate(ctx context.Context, id string) (domain.Reservation, error)
	ListBlockingReservations(ctx context.Context, vehicleID string, rng domain.DateRange) ([]domain.Reservation, error)
	LockVehicle(ctx context.Context, vehicleID string) error
	UpdateReservation(ctx context.Context, r domain.Reservation, expectedVersion int64) error
}

// ScheduleService changes reservation ranges, typically from a calendar
// drag-and-drop. The price is not recomputed.
type ScheduleService struct {
	repo    ScheduleRepository
	checker *ConflictChecker
	clock   clock.Clock
	opts    options
}

func NewScheduleService(repo ScheduleRepository, clk clock.Clock, opts ...Option) *ScheduleService {
	return &ScheduleService{
		repo:    repo,
		checker: NewConflictChecker(repo),
		clock:   clk,
		opts:    buildOptions(opts),
	}
}

type MoveReservationInput struct {
	ReservationID string
	Range         domain.DateRange
	AdminID       string
}

// MoveReservation writes the new range only if no confirmed or active
// reservation of the same vehicle overlaps it. On a *domain.SchedulingConflictError
// nothing has been written and the caller should revert its optimistic change.
func (s *ScheduleService) MoveReservation(ctx context.Context, in MoveReservationInput) (domain.Reservation, error) {
	if err := in.Range.Validate(); err != nil {
		return domain.Reservation{}, err
	}
	r, evType, err := updateReservation(ctx, s.repo, s.clock, s.opts.retries, in.ReservationID,
		func(txCtx context.Context, r *domain.Reservation) (domain.ReservationEventType, error) {
			if _, err := r.Status.Apply(domain.ActionMove); err != nil {
				return "", err
			}
			if err := ensureVehicleFree(txCtx, s.repo, s.checker, r.VehicleID, in.Range, r.ID); err != nil {
				return "", err
			}
			r.Range = in.Range
			return domain.EventMoved, nil
		})
	if err != nil {
		return domain.Reservation{}, err
	}
	s.opts.notifier.notify(ctx, domain.NewReservationEvent(evType, r, actorOrSystem(in.AdminID), r.UpdatedAt))
	return r, nil
}
