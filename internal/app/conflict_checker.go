package app

import (
	"context"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

// ConflictReader lists confirmed and active reservations of a vehicle that
// overlap rng. Implementations may return extra rows; they are filtered again.
type ConflictReader interface {
	ListBlockingReservations(ctx context.Context, vehicleID string, rng domain.DateRange) ([]domain.Reservation, error)
}

// ConflictChecker answers whether a vehicle is already held for a range.
// It never writes.
type ConflictChecker struct {
	repo ConflictReader
}

func NewConflictChecker(repo ConflictReader) *ConflictChecker {
	return &ConflictChecker{repo: repo}
}

// Conflicts returns every confirmed or active reservation of vehicleID that
// overlaps rng, except excludeID. An unknown vehicle has no conflicts.
func (c *ConflictChecker) Conflicts(ctx context.Context, vehicleID string, rng domain.DateRange, excludeID string) ([]domain.Reservation, error) {
	if vehicleID == "" {
		return nil, domain.ErrInvalidID
	}
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	existing, err := c.repo.ListBlockingReservations(ctx, vehicleID, rng)
	if err != nil {
		return nil, err
	}
	return domain.FindConflicts(existing, vehicleID, rng, excludeID), nil
}

func (c *ConflictChecker) HasConflict(ctx context.Context, vehicleID string, rng domain.DateRange, excludeID string) (bool, error) {
	conflicts, err := c.Conflicts(ctx, vehicleID, rng, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}

// vehicleLocker serializes writers per vehicle for the rest of the transaction.
type vehicleLocker interface {
	LockVehicle(ctx context.Context, vehicleID string) error
}

// ensureVehicleFree must run inside a transaction. It takes the vehicle lock
// before reading so that two writers cannot both pass the check.
func ensureVehicleFree(ctx context.Context, locker vehicleLocker, checker *ConflictChecker, vehicleID string, rng domain.DateRange, excludeID string) error {
	if err := locker.LockVehicle(ctx, vehicleID); err != nil {
		return err
	}
	conflicts, err := checker.Conflicts(ctx, vehicleID, rng, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return domain.NewSchedulingConflict(vehicleID, conflicts)
	}
	return nil
}
