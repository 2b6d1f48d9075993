package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aronareadev/rentcar-admin-sub001/internal/app"
	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

// ReservationCreator is the minimal interface needed to take a rental request.
type ReservationCreator interface {
	CreateReservation(ctx context.Context, in app.CreateReservationInput) (app.CreateReservationResult, error)
}

// HandleCreateReservation accepts a rental request. Dates are civil dates in
// loc with optional HH:MM times. A replayed Idempotency-Key returns the
// original reservation with 200 instead of 201.
func HandleCreateReservation(svc ReservationCreator, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		key := r.Header.Get(idempotencyHeader)
		if key == "" {
			writeError(w, http.StatusBadRequest, codeIdempotencyRequired, domain.ErrIdempotencyKeyRequired.Error())
			return
		}

		var req createReservationRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		rng, err := domain.ParseDateRange(req.StartDate, req.EndDate, req.StartTime, req.EndTime, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDateRange, err.Error())
			return
		}

		in := app.CreateReservationInput{
			VehicleID:        req.VehicleID,
			Customer:         domain.CustomerRef{CustomerID: req.CustomerID},
			Range:            rng,
			PickupLocationID: req.PickupLocationID,
			ReturnLocationID: req.ReturnLocationID,
			TotalAmountCents: req.TotalAmountCents,
			IdempotencyKey:   key,
		}
		if req.Guest != nil {
			in.Customer.Guest = &domain.GuestContact{Name: req.Guest.Name, Phone: req.Guest.Phone, Email: req.Guest.Email}
		}

		res, err := svc.CreateReservation(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		writeJSON(w, status, reservationFrom(res.Reservation))
	}
}

type guestRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type createReservationRequest struct {
	VehicleID        string        `json:"vehicle_id" validate:"required"`
	CustomerID       string        `json:"customer_id,omitempty" validate:"required_without=Guest"`
	Guest            *guestRequest `json:"guest,omitempty"`
	StartDate        string        `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string        `json:"end_date" validate:"required,datetime=2006-01-02"`
	StartTime        string        `json:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime          string        `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	PickupLocationID string        `json:"pickup_location_id" validate:"required"`
	ReturnLocationID string        `json:"return_location_id,omitempty"`
	TotalAmountCents int64         `json:"total_amount_cents" validate:"gte=0"`
}
