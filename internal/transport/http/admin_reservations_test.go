package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aronareadev/rentcar-admin-sub001/internal/app"
	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

func TestHandleAdminReservation_Actions(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedCall   string
		expectedCode   string
	}{
		{name: "get", method: http.MethodGet, path: "/admin/reservations/res-1", expectedStatus: http.StatusOK, expectedCall: "get"},
		{name: "get missing", method: http.MethodGet, path: "/admin/reservations/res-9", serviceErr: domain.ErrReservationNotFound, expectedStatus: http.StatusNotFound, expectedCall: "get", expectedCode: codeReservationNotFound},
		{name: "approve without body", method: http.MethodPost, path: "/admin/reservations/res-1/approve", expectedStatus: http.StatusOK, expectedCall: "approve"},
		{name: "approve with notes", method: http.MethodPost, path: "/admin/reservations/res-1/approve", body: `{"notes":"looks fine"}`, expectedStatus: http.StatusOK, expectedCall: "approve"},
		{name: "approve conflict", method: http.MethodPost, path: "/admin/reservations/res-1/approve", serviceErr: domain.NewSchedulingConflict("veh-1", nil), expectedStatus: http.StatusConflict, expectedCall: "approve", expectedCode: codeSchedulingConflict},
		{name: "reject without reason", method: http.MethodPost, path: "/admin/reservations/res-1/reject", serviceErr: domain.ErrReasonRequired, expectedStatus: http.StatusBadRequest, expectedCall: "reject", expectedCode: codeReasonRequired},
		{name: "start from pending", method: http.MethodPost, path: "/admin/reservations/res-1/start", serviceErr: &domain.TransitionError{From: domain.StatusPending, Action: domain.ActionStartRental}, expectedStatus: http.StatusConflict, expectedCall: "start", expectedCode: codeInvalidTransition},
		{name: "return", method: http.MethodPost, path: "/admin/reservations/res-1/return", expectedStatus: http.StatusOK, expectedCall: "return"},
		{name: "cancel", method: http.MethodPost, path: "/admin/reservations/res-1/cancel", body: `{"reason":"customer called"}`, expectedStatus: http.StatusOK, expectedCall: "cancel"},
		{name: "move", method: http.MethodPost, path: "/admin/reservations/res-1/move", body: `{"start":"2025-06-11T10:00:00+02:00","end":"2025-06-13T10:00:00+02:00"}`, expectedStatus: http.StatusOK, expectedCall: "move"},
		{name: "move missing end", method: http.MethodPost, path: "/admin/reservations/res-1/move", body: `{"start":"2025-06-11T10:00:00Z"}`, expectedStatus: http.StatusBadRequest, expectedCode: codeInvalidField},
		{name: "move lost race", method: http.MethodPost, path: "/admin/reservations/res-1/move", body: `{"start":"2025-06-11T10:00:00Z","end":"2025-06-12T10:00:00Z"}`, serviceErr: domain.ErrConcurrencyConflict, expectedStatus: http.StatusConflict, expectedCall: "move", expectedCode: codeConcurrencyConflict},
		{name: "payment", method: http.MethodPost, path: "/admin/reservations/res-1/payment", body: `{"payment_status":"paid"}`, expectedStatus: http.StatusOK, expectedCall: "payment"},
		{name: "payment unknown status", method: http.MethodPost, path: "/admin/reservations/res-1/payment", body: `{"payment_status":"wired"}`, expectedStatus: http.StatusBadRequest, expectedCode: codeInvalidField},
		{name: "unknown action", method: http.MethodPost, path: "/admin/reservations/res-1/archive", expectedStatus: http.StatusNotFound, expectedCode: codeNotFound},
		{name: "action needs post", method: http.MethodGet, path: "/admin/reservations/res-1/approve", expectedStatus: http.StatusMethodNotAllowed, expectedCode: codeMethodNotAllowed},
		{name: "store failure", method: http.MethodPost, path: "/admin/reservations/res-1/return", serviceErr: errors.New("connection reset"), expectedStatus: http.StatusInternalServerError, expectedCall: "return", expectedCode: codeInternalError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubReservationService{res: sampleReservation(), err: tt.serviceErr}
			rec := serve(HandleAdminReservation(svc, svc), tt.method, tt.path, tt.body, map[string]string{adminHeader: "admin-1"})

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body)
			}
			if svc.lastCall != tt.expectedCall {
				t.Fatalf("expected call %q, got %q", tt.expectedCall, svc.lastCall)
			}
			if tt.expectedCode != "" {
				var resp errorResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if resp.Code != tt.expectedCode {
					t.Fatalf("expected code %s, got %s", tt.expectedCode, resp.Code)
				}
			}
		})
	}
}

func TestHandleAdminReservation_PassesAdminAndPayload(t *testing.T) {
	svc := &stubReservationService{res: sampleReservation()}
	h := HandleAdminReservation(svc, svc)
	admin := map[string]string{adminHeader: " admin-7 "}

	serve(h, http.MethodPost, "/admin/reservations/res-1/reject", `{"notes":"no licence"}`, admin)
	if svc.transition != (app.TransitionInput{ReservationID: "res-1", AdminID: "admin-7", Notes: "no licence"}) {
		t.Fatalf("unexpected reject input: %+v", svc.transition)
	}

	serve(h, http.MethodPost, "/admin/reservations/res-1/cancel", `{"reason":"duplicate"}`, admin)
	if svc.transition.Notes != "duplicate" {
		t.Fatalf("expected cancel reason, got %+v", svc.transition)
	}

	serve(h, http.MethodPost, "/admin/reservations/res-1/move", `{"start":"2025-06-11T12:00:00+02:00","end":"2025-06-13T12:00:00+02:00"}`, admin)
	want := domain.DateRange{
		Start: time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 13, 10, 0, 0, 0, time.UTC),
	}
	if svc.move.ReservationID != "res-1" || svc.move.AdminID != "admin-7" || svc.move.Range != want {
		t.Fatalf("unexpected move input: %+v", svc.move)
	}

	serve(h, http.MethodPost, "/admin/reservations/res-1/payment", `{"payment_status":"refunded"}`, admin)
	if svc.payment.Status != domain.PaymentRefunded {
		t.Fatalf("unexpected payment input: %+v", svc.payment)
	}
}

func TestHandleAdminReservation_Bulk(t *testing.T) {
	approved := sampleReservation()
	approved.Status = domain.StatusConfirmed
	svc := &stubReservationService{bulk: []app.BulkResult{
		{ReservationID: "res-1", Reservation: approved},
		{ReservationID: "res-2", Err: domain.NewSchedulingConflict("veh-1", nil)},
		{ReservationID: "res-3", Err: domain.ErrReservationNotFound},
	}}

	rec := serve(HandleAdminReservation(svc, svc), http.MethodPost, "/admin/reservations/bulk-approve", `{"ids":["res-1","res-2","res-3"]}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body)
	}
	if svc.lastCall != "bulk-approve" || len(svc.bulkIn.ReservationIDs) != 3 {
		t.Fatalf("unexpected bulk call %s %+v", svc.lastCall, svc.bulkIn)
	}
	var resp bulkResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Succeeded != 1 || resp.Failed != 2 {
		t.Fatalf("expected 1 success and 2 failures, got %+v", resp)
	}
	if resp.Results[0].Reservation == nil || resp.Results[0].Reservation.Status != "confirmed" {
		t.Fatalf("unexpected first result: %+v", resp.Results[0])
	}
	if resp.Results[1].Code != codeSchedulingConflict || resp.Results[2].Code != codeReservationNotFound {
		t.Fatalf("unexpected failure codes: %+v", resp.Results)
	}

	rec = serve(HandleAdminReservation(svc, svc), http.MethodPost, "/admin/reservations/bulk-reject", `{"ids":[]}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for empty ids, got %d", rec.Code)
	}

	svc.err = domain.ErrReasonRequired
	rec = serve(HandleAdminReservation(svc, svc), http.MethodPost, "/admin/reservations/bulk-reject", `{"ids":["res-1"]}`, nil)
	if rec.Code != http.StatusBadRequest || svc.lastCall != "bulk-reject" {
		t.Fatalf("expected reason error from bulk reject, got %d (%s)", rec.Code, svc.lastCall)
	}
}

func TestHandleAdminReservations_List(t *testing.T) {
	svc := &stubReservationService{page: domain.ReservationPage{
		Items:   []domain.Reservation{sampleReservation()},
		Total:   31,
		Page:    2,
		PerPage: 10,
	}}
	h := HandleAdminReservations(svc, time.UTC)

	rec := serve(h, http.MethodGet, "/admin/reservations?status=pending,confirmed&vehicle_id=veh-1&from=2025-06-01&to=2025-07-01&q=ana&sort=start&order=desc&page=2&per_page=10", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body)
	}
	q := svc.query
	if len(q.Statuses) != 2 || q.VehicleID != "veh-1" || q.Search != "ana" || q.Sort != domain.SortStart || !q.Desc || q.Page != 2 || q.PerPage != 10 {
		t.Fatalf("unexpected query: %+v", q)
	}
	if q.Window == nil || !q.Window.Start.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected window: %+v", q.Window)
	}
	var resp reservationPageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 31 || len(resp.Items) != 1 || resp.Items[0].CustomerName != "Ana" {
		t.Fatalf("unexpected page: %+v", resp)
	}

	for _, bad := range []string{"?status=booked", "?page=two", "?from=2025-06-01", "?from=2025-07-01&to=2025-06-01"} {
		rec := serve(h, http.MethodGet, "/admin/reservations"+bad, "", nil)
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), codeInvalidQuery) {
			t.Fatalf("%s: expected 400 invalid_query, got %d: %s", bad, rec.Code, rec.Body)
		}
	}
}
