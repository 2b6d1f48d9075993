package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aronareadev/rentcar-admin-sub001/internal/app"
	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

// AdminReservationService is the minimal interface needed for the admin
// reservation endpoints.
type AdminReservationService interface {
	GetReservation(ctx context.Context, id string) (domain.Reservation, error)
	ListReservations(ctx context.Context, q domain.ReservationQuery) (domain.ReservationPage, error)
	Approve(ctx context.Context, in app.TransitionInput) (domain.Reservation, error)
	Reject(ctx context.Context, in app.TransitionInput) (domain.Reservation, error)
	StartRental(ctx context.Context, in app.TransitionInput) (domain.Reservation, error)
	Return(ctx context.Context, in app.TransitionInput) (domain.Reservation, error)
	Cancel(ctx context.Context, in app.TransitionInput) (domain.Reservation, error)
	UpdatePaymentStatus(ctx context.Context, in app.UpdatePaymentInput) (domain.Reservation, error)
	BulkApprove(ctx context.Context, in app.BulkInput) ([]app.BulkResult, error)
	BulkReject(ctx context.Context, in app.BulkInput) ([]app.BulkResult, error)
}

// ReservationMover changes a reservation's range.
type ReservationMover interface {
	MoveReservation(ctx context.Context, in app.MoveReservationInput) (domain.Reservation, error)
}

const adminReservationsPath = "/admin/reservations"

// HandleAdminReservations serves the paged reservation list.
func HandleAdminReservations(svc AdminReservationService, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		q, err := parseReservationQuery(r, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidQuery, err.Error())
			return
		}
		page, err := svc.ListReservations(r.Context(), q)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp := reservationPageResponse{
			Items:   make([]reservationResponse, 0, len(page.Items)),
			Total:   page.Total,
			Page:    page.Page,
			PerPage: page.PerPage,
		}
		for _, item := range page.Items {
			resp.Items = append(resp.Items, reservationFrom(item))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleAdminReservation serves /admin/reservations/{id}, its lifecycle
// actions and the bulk endpoints.
func HandleAdminReservation(svc AdminReservationService, mover ReservationMover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := pathParts(r.URL.Path, adminReservationsPath)
		switch len(parts) {
		case 1:
			switch parts[0] {
			case "bulk-approve":
				handleBulk(w, r, svc.BulkApprove)
				return
			case "bulk-reject":
				handleBulk(w, r, svc.BulkReject)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w)
				return
			}
			res, err := svc.GetReservation(r.Context(), parts[0])
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, reservationFrom(res))
		case 2:
			if r.Method != http.MethodPost {
				methodNotAllowed(w)
				return
			}
			handleAction(w, r, svc, mover, parts[0], parts[1])
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleAction(w http.ResponseWriter, r *http.Request, svc AdminReservationService, mover ReservationMover, id, action string) {
	var (
		res domain.Reservation
		err error
	)
	switch action {
	case "approve", "reject", "start", "return":
		var req notesRequest
		if !decodeJSON(w, r, &req, true) {
			return
		}
		in := app.TransitionInput{ReservationID: id, AdminID: adminID(r), Notes: req.Notes}
		switch action {
		case "approve":
			res, err = svc.Approve(r.Context(), in)
		case "reject":
			res, err = svc.Reject(r.Context(), in)
		case "start":
			res, err = svc.StartRental(r.Context(), in)
		default:
			res, err = svc.Return(r.Context(), in)
		}
	case "cancel":
		var req cancelRequest
		if !decodeJSON(w, r, &req, true) {
			return
		}
		res, err = svc.Cancel(r.Context(), app.TransitionInput{ReservationID: id, AdminID: adminID(r), Notes: req.Reason})
	case "move":
		var req moveRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		rng := domain.DateRange{Start: req.Start.UTC(), End: req.End.UTC()}
		res, err = mover.MoveReservation(r.Context(), app.MoveReservationInput{ReservationID: id, Range: rng, AdminID: adminID(r)})
	case "payment":
		var req paymentRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		res, err = svc.UpdatePaymentStatus(r.Context(), app.UpdatePaymentInput{
			ReservationID: id,
			AdminID:       adminID(r),
			Status:        domain.PaymentStatus(req.PaymentStatus),
		})
	default:
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reservationFrom(res))
}

func handleBulk(w http.ResponseWriter, r *http.Request, op func(context.Context, app.BulkInput) ([]app.BulkResult, error)) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req bulkRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	results, err := op(r.Context(), app.BulkInput{ReservationIDs: req.IDs, AdminID: adminID(r), Notes: req.Notes})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := bulkResponse{Results: make([]bulkResultResponse, 0, len(results))}
	for _, res := range results {
		item := bulkResultResponse{ID: res.ReservationID}
		if res.Err != nil {
			_, code := errorStatus(res.Err)
			item.Error = res.Err.Error()
			item.Code = code
			resp.Failed++
		} else {
			rr := reservationFrom(res.Reservation)
			item.Reservation = &rr
			resp.Succeeded++
		}
		resp.Results = append(resp.Results, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseReservationQuery(r *http.Request, loc *time.Location) (domain.ReservationQuery, error) {
	v := r.URL.Query()
	q := domain.ReservationQuery{
		VehicleID:  v.Get("vehicle_id"),
		LocationID: v.Get("location_id"),
		Search:     strings.TrimSpace(v.Get("q")),
		Sort:       domain.SortField(v.Get("sort")),
		Desc:       strings.EqualFold(v.Get("order"), "desc"),
	}
	statuses, err := parseStatuses(v.Get("status"))
	if err != nil {
		return q, err
	}
	q.Statuses = statuses

	from, to := v.Get("from"), v.Get("to")
	if from != "" || to != "" {
		window, err := parseWindow(from, to, loc)
		if err != nil {
			return q, err
		}
		q.Window = &window
	}
	for name, dst := range map[string]*int{"page": &q.Page, "per_page": &q.PerPage} {
		raw := v.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("invalid %s %q", name, raw)
		}
		*dst = n
	}
	return q, nil
}

type notesRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=1000"`
}

type cancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=1000"`
}

type moveRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}

type paymentRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=pending paid refunded"`
}

type bulkRequest struct {
	IDs   []string `json:"ids" validate:"required,min=1,max=100"`
	Notes string   `json:"notes,omitempty" validate:"max=1000"`
}

type reservationPageResponse struct {
	Items   []reservationResponse `json:"items"`
	Total   int                   `json:"total"`
	Page    int                   `json:"page"`
	PerPage int                   `json:"per_page"`
}

type bulkResultResponse struct {
	ID          string               `json:"id"`
	Reservation *reservationResponse `json:"reservation,omitempty"`
	Error       string               `json:"error,omitempty"`
	Code        string               `json:"code,omitempty"`
}

type bulkResponse struct {
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Results   []bulkResultResponse `json:"results"`
}
