package app

import (
	"context"
	"errors"
	"strings"

	"github.com/aronareadev/rentcar-admin-sub001/internal/clock"
	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

const (
	systemActor         = "system"
	defaultApprovalNote = "Approved via admin dashboard"
)

type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetReservation(ctx context.Context, id string) (domain.Reservation, error)
	GetReservationForUpdate(ctx context.Context, id string) (domain.Reservation, error)
	FindReservationByIdempotencyKey(ctx context.Context, key string) (*domain.Reservation, error)
	ListReservations(ctx context.Context, q domain.ReservationQuery) ([]domain.Reservation, int, error)
	ListBlockingReservations(ctx context.Context, vehicleID string, rng domain.DateRange) ([]domain.Reservation, error)
	LockVehicle(ctx context.Context, vehicleID string) error
	CreateReservation(ctx context.Context, r domain.Reservation) error
	UpdateReservation(ctx context.Context, r domain.Reservation, expectedVersion int64) error
}

// LocationDirectory resolves pickup and return branches.
type LocationDirectory interface {
	GetLocation(ctx context.Context, id string) (domain.Location, error)
}

// ReservationService owns the reservation lifecycle: intake, approval,
// rejection, rental start and return, cancellation and payment state.
type ReservationService struct {
	repo      ReservationRepository
	locations LocationDirectory
	checker   *ConflictChecker
	clock     clock.Clock
	opts      options
}

func NewReservationService(repo ReservationRepository, locations LocationDirectory, clk clock.Clock, opts ...Option) *ReservationService {
	return &ReservationService{
		repo:      repo,
		locations: locations,
		checker:   NewConflictChecker(repo),
		clock:     clk,
		opts:      buildOptions(opts),
	}
}

type CreateReservationInput struct {
	VehicleID        string
	Customer         domain.CustomerRef
	Range            domain.DateRange
	PickupLocationID string
	// ReturnLocationID defaults to the pickup location.
	ReturnLocationID string
	TotalAmountCents int64
	IdempotencyKey   string
}

type CreateReservationResult struct {
	Reservation domain.Reservation
	Created     bool
}

// CreateReservation records a rental request in pending. Retrying with the
// same idempotency key returns the original reservation.
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (CreateReservationResult, error) {
	if in.IdempotencyKey == "" {
		return CreateReservationResult{}, domain.ErrIdempotencyKeyRequired
	}
	if in.VehicleID == "" || in.PickupLocationID == "" {
		return CreateReservationResult{}, domain.ErrInvalidID
	}
	if err := in.Customer.Validate(); err != nil {
		return CreateReservationResult{}, err
	}
	if err := in.Range.Validate(); err != nil {
		return CreateReservationResult{}, err
	}
	if in.TotalAmountCents < 0 {
		return CreateReservationResult{}, domain.ErrInvalidAmount
	}
	if in.ReturnLocationID == "" {
		in.ReturnLocationID = in.PickupLocationID
	}
	for _, id := range []string{in.PickupLocationID, in.ReturnLocationID} {
		if _, err := s.locations.GetLocation(ctx, id); err != nil {
			return CreateReservationResult{}, err
		}
	}

	now := s.clock.Now()
	var result CreateReservationResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if existing, err := s.repo.FindReservationByIdempotencyKey(txCtx, in.IdempotencyKey); err != nil {
			return err
		} else if existing != nil {
			if !sameRequest(*existing, in) {
				return domain.ErrIdempotencyConflict
			}
			result = CreateReservationResult{Reservation: *existing}
			return nil
		}

		// Pending requests do not block each other, but a slot that is
		// already confirmed cannot be requested.
		if err := ensureVehicleFree(txCtx, s.repo, s.checker, in.VehicleID, in.Range, ""); err != nil {
			return err
		}

		r := domain.Reservation{
			ID:               newUUID(),
			Number:           newReservationNumber(now),
			VehicleID:        in.VehicleID,
			Customer:         in.Customer,
			Range:            in.Range,
			PickupLocationID: in.PickupLocationID,
			ReturnLocationID: in.ReturnLocationID,
			Status:           domain.StatusPending,
			PaymentStatus:    domain.PaymentPending,
			TotalAmountCents: in.TotalAmountCents,
			IdempotencyKey:   in.IdempotencyKey,
			Version:          1,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.repo.CreateReservation(txCtx, r); err != nil {
			// Re-read on conflict to keep idempotent retries consistent under concurrency.
			if errors.Is(err, domain.ErrIdempotencyConflict) {
				existing, ferr := s.repo.FindReservationByIdempotencyKey(txCtx, in.IdempotencyKey)
				if ferr != nil {
					return ferr
				}
				if existing != nil && sameRequest(*existing, in) {
					result = CreateReservationResult{Reservation: *existing}
					return nil
				}
			}
			return err
		}
		// Read back for the customer name joined from the customer record.
		stored, err := s.repo.GetReservation(txCtx, r.ID)
		if err != nil {
			return err
		}
		result = CreateReservationResult{Reservation: stored, Created: true}
		return nil
	})
	if err != nil {
		return CreateReservationResult{}, err
	}
	if result.Created {
		s.opts.notifier.notify(ctx, domain.NewReservationEvent(domain.EventCreated, result.Reservation, "", now))
	}
	return result, nil
}

// sameRequest compares every field the caller supplied, so a reused key
// never hands back someone else's reservation.
func sameRequest(r domain.Reservation, in CreateReservationInput) bool {
	return r.VehicleID == in.VehicleID &&
		r.Customer.Equal(in.Customer) &&
		r.PickupLocationID == in.PickupLocationID &&
		r.ReturnLocationID == in.ReturnLocationID &&
		r.Range.Start.Equal(in.Range.Start) &&
		r.Range.End.Equal(in.Range.End) &&
		r.TotalAmountCents == in.TotalAmountCents
}

func (s *ReservationService) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	if id == "" {
		return domain.Reservation{}, domain.ErrInvalidID
	}
	return s.repo.GetReservation(ctx, id)
}

func (s *ReservationService) ListReservations(ctx context.Context, q domain.ReservationQuery) (domain.ReservationPage, error) {
	q = q.Normalize()
	if q.Window != nil {
		if err := q.Window.Validate(); err != nil {
			return domain.ReservationPage{}, err
		}
	}
	items, total, err := s.repo.ListReservations(ctx, q)
	if err != nil {
		return domain.ReservationPage{}, err
	}
	return domain.ReservationPage{Items: items, Total: total, Page: q.Page, PerPage: q.PerPage}, nil
}

// TransitionInput drives a single lifecycle change. Notes is the admin note
// for approve/reject and the reason for cancel.
type TransitionInput struct {
	ReservationID string
	AdminID       string
	Notes         string
}

// Approve confirms a pending reservation after re-checking that the vehicle
// is still free for its range.
func (s *ReservationService) Approve(ctx context.Context, in TransitionInput) (domain.Reservation, error) {
	return s.transition(ctx, in.ReservationID, in.AdminID, func(txCtx context.Context, r *domain.Reservation) (domain.ReservationEventType, error) {
		next, err := r.Status.Apply(domain.ActionApprove)
		if err != nil {
			return "", err
		}
		if err := ensureVehicleFree(txCtx, s.repo, s.checker, r.VehicleID, r.Range, r.ID); err != nil {
			return "", err
		}
		notes := strings.TrimSpace(in.Notes)
		if notes == "" {
			notes = defaultApprovalNote
		}
		s.stampDecision(r, in.AdminID, notes)
		r.Status = next
		return domain.EventConfirmed, nil
	})
}

// Reject cancels a pending reservation. A reason is mandatory.
func (s *ReservationService) Reject(ctx context.Context, in TransitionInput) (domain.Reservation, error) {
	notes := strings.TrimSpace(in.Notes)
	if notes == "" {
		return domain.Reservation{}, domain.ErrReasonRequired
	}
	return s.transition(ctx, in.ReservationID, in.AdminID, func(_ context.Context, r *domain.Reservation) (domain.ReservationEventType, error) {
		next, err := r.Status.Apply(domain.ActionReject)
		if err != nil {
			return "", err
		}
		s.stampDecision(r, in.AdminID, notes)
		r.Status = next
		return domain.EventRejected, nil
	})
}

// StartRental marks a confirmed reservation as picked up.
func (s *ReservationService) StartRental(ctx context.Context, in TransitionInput) (domain.Reservation, error) {
	return s.simpleTransition(ctx, in, domain.ActionStartRental, domain.EventStarted)
}

// Return marks an active rental as completed.
func (s *ReservationService) Return(ctx context.Context, in TransitionInput) (domain.Reservation, error) {
	return s.simpleTransition(ctx, in, domain.ActionReturn, domain.EventReturned)
}

// Cancel terminates any non-terminal reservation.
func (s *ReservationService) Cancel(ctx context.Context, in TransitionInput) (domain.Reservation, error) {
	return s.transition(ctx, in.ReservationID, in.AdminID, func(_ context.Context, r *domain.Reservation) (domain.ReservationEventType, error) {
		next, err := r.Status.Apply(domain.ActionCancel)
		if err != nil {
			return "", err
		}
		r.Status = next
		r.CancelReason = strings.TrimSpace(in.Notes)
		return domain.EventCancelled, nil
	})
}

func (s *ReservationService) simpleTransition(ctx context.Context, in TransitionInput, action domain.Action, ev domain.ReservationEventType) (domain.Reservation, error) {
	return s.transition(ctx, in.ReservationID, in.AdminID, func(_ context.Context, r *domain.Reservation) (domain.ReservationEventType, error) {
		next, err := r.Status.Apply(action)
		if err != nil {
			return "", err
		}
		r.Status = next
		return ev, nil
	})
}

type UpdatePaymentInput struct {
	ReservationID string
	AdminID       string
	Status        domain.PaymentStatus
}

// UpdatePaymentStatus records payment state. Paid is only reachable once the
// reservation has been confirmed; refunds require a prior payment.
func (s *ReservationService) UpdatePaymentStatus(ctx context.Context, in UpdatePaymentInput) (domain.Reservation, error) {
	if _, err := domain.ParsePaymentStatus(string(in.Status)); err != nil {
		return domain.Reservation{}, err
	}
	return s.transition(ctx, in.ReservationID, in.AdminID, func(_ context.Context, r *domain.Reservation) (domain.ReservationEventType, error) {
		if err := domain.CanApplyPayment(r.Status, r.PaymentStatus, in.Status); err != nil {
			return "", err
		}
		r.PaymentStatus = in.Status
		return domain.EventPaymentUpdated, nil
	})
}

func (s *ReservationService) transition(ctx context.Context, id, adminID string, fn mutation) (domain.Reservation, error) {
	r, evType, err := updateReservation(ctx, s.repo, s.clock, s.opts.retries, id, fn)
	if err != nil {
		return domain.Reservation{}, err
	}
	s.opts.notifier.notify(ctx, domain.NewReservationEvent(evType, r, actorOrSystem(adminID), r.UpdatedAt))
	return r, nil
}

func (s *ReservationService) stampDecision(r *domain.Reservation, adminID, notes string) {
	at := s.clock.Now()
	r.AdminNotes = notes
	r.ApprovedBy = actorOrSystem(adminID)
	r.ApprovedAt = &at
}

func actorOrSystem(adminID string) string {
	if strings.TrimSpace(adminID) == "" {
		return systemActor
	}
	return adminID
}

type BulkInput struct {
	ReservationIDs []string
	AdminID        string
	Notes          string
}

// BulkResult reports the outcome for one id of a bulk operation.
type BulkResult struct {
	ReservationID string
	Reservation   domain.Reservation
	Err           error
}

// BulkApprove approves each id in its own transaction. A failure on one id
// does not affect the others.
func (s *ReservationService) BulkApprove(ctx context.Context, in BulkInput) ([]BulkResult, error) {
	return s.bulk(ctx, in, s.Approve)
}

// BulkReject rejects each id in its own transaction with the shared reason.
func (s *ReservationService) BulkReject(ctx context.Context, in BulkInput) ([]BulkResult, error) {
	if strings.TrimSpace(in.Notes) == "" {
		return nil, domain.ErrReasonRequired
	}
	return s.bulk(ctx, in, s.Reject)
}

func (s *ReservationService) bulk(ctx context.Context, in BulkInput, op func(context.Context, TransitionInput) (domain.Reservation, error)) ([]BulkResult, error) {
	ids := dedupe(in.ReservationIDs)
	if len(ids) == 0 {
		return nil, domain.ErrNoIDs
	}
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			results = append(results, BulkResult{ReservationID: id, Err: err})
			continue
		}
		r, err := op(ctx, TransitionInput{ReservationID: id, AdminID: in.AdminID, Notes: in.Notes})
		results = append(results, BulkResult{ReservationID: id, Reservation: r, Err: err})
	}
	return results, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
