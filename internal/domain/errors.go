package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by the services unwraps to one of these
// unless it is an unexpected store failure.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrValidation          = errors.New("validation failed")
	ErrSchedulingConflict  = errors.New("scheduling conflict")
	ErrConcurrencyConflict = errors.New("concurrent modification")
)

// Specific errors. Each unwraps to one of the kinds above.
var (
	ErrReservationNotFound = newKindError(ErrNotFound, "reservation not found")
	ErrVehicleNotFound     = newKindError(ErrNotFound, "vehicle not found")
	ErrLocationNotFound    = newKindError(ErrNotFound, "location not found")
	ErrCustomerNotFound    = newKindError(ErrNotFound, "customer not found")

	ErrInvalidID              = newKindError(ErrValidation, "invalid id")
	ErrInvalidDateRange       = newKindError(ErrValidation, "start must be before end")
	ErrReasonRequired         = newKindError(ErrValidation, "a reason is required")
	ErrCustomerRequired       = newKindError(ErrValidation, "customer id or guest contact is required")
	ErrInvalidAmount          = newKindError(ErrValidation, "total amount must not be negative")
	ErrInvalidStatus          = newKindError(ErrValidation, "invalid status")
	ErrInvalidPaymentStatus   = newKindError(ErrValidation, "invalid payment status")
	ErrPlateRequired          = newKindError(ErrValidation, "plate is required")
	ErrLocationNameRequired   = newKindError(ErrValidation, "location name is required")
	ErrIdempotencyKeyRequired = newKindError(ErrValidation, "idempotency key required")
	ErrNoIDs                  = newKindError(ErrValidation, "at least one id is required")

	ErrIdempotencyConflict = errors.New("idempotency conflict")
	ErrPlateTaken          = errors.New("plate already registered")
	ErrMalformedRow        = errors.New("malformed row")
)

type kindError struct {
	kind error
	msg  string
}

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// TransitionError reports an action that is not legal from the current status.
type TransitionError struct {
	From   Status
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a %s reservation", e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// PaymentTransitionError reports a payment status change that the reservation
// lifecycle does not allow yet.
type PaymentTransitionError struct {
	Status PaymentStatus
	From   PaymentStatus
	State  Status
}

func (e *PaymentTransitionError) Error() string {
	return fmt.Sprintf("cannot mark payment %s (payment %s, reservation %s)", e.Status, e.From, e.State)
}

func (e *PaymentTransitionError) Unwrap() error { return ErrInvalidTransition }

// ConflictRef identifies a reservation that already holds a vehicle.
type ConflictRef struct {
	ReservationID string
	Number        string
	Range         DateRange
}

// SchedulingConflictError is returned when the vehicle is already booked by a
// confirmed or active reservation over an overlapping range.
type SchedulingConflictError struct {
	VehicleID string
	Conflicts []ConflictRef
}

func (e *SchedulingConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return "vehicle already booked for that range"
	}
	numbers := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		ref := c.Number
		if ref == "" {
			ref = c.ReservationID
		}
		numbers = append(numbers, ref)
	}
	return "vehicle already booked for that range (" + strings.Join(numbers, ", ") + ")"
}

func (e *SchedulingConflictError) Unwrap() error { return ErrSchedulingConflict }

// NewSchedulingConflict builds the error from the reservations found to overlap.
func NewSchedulingConflict(vehicleID string, conflicts []Reservation) *SchedulingConflictError {
	refs := make([]ConflictRef, 0, len(conflicts))
	for _, r := range conflicts {
		refs = append(refs, ConflictRef{ReservationID: r.ID, Number: r.Number, Range: r.Range})
	}
	return &SchedulingConflictError{VehicleID: vehicleID, Conflicts: refs}
}
