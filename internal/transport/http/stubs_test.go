package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/aronareadev/rentcar-admin-sub001/internal/app"
	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

func sampleReservation() domain.Reservation {
	return domain.Reservation{
		ID:        "res-1",
		Number:    "RSV-20250601-ABC123",
		VehicleID: "veh-1",
		Customer:  domain.CustomerRef{Guest: &domain.GuestContact{Name: "Ana"}},
		Range: domain.DateRange{
			Start: time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC),
		},
		PickupLocationID: "loc-1",
		ReturnLocationID: "loc-1",
		Status:           domain.StatusPending,
		PaymentStatus:    domain.PaymentPending,
		TotalAmountCents: 9000,
		Version:          1,
	}
}

// stubReservationService records the last call and answers with res/err.
type stubReservationService struct {
	res     domain.Reservation
	created bool
	page    domain.ReservationPage
	bulk    []app.BulkResult
	err     error

	lastCall   string
	create     app.CreateReservationInput
	transition app.TransitionInput
	move       app.MoveReservationInput
	payment    app.UpdatePaymentInput
	bulkIn     app.BulkInput
	query      domain.ReservationQuery
}

func (s *stubReservationService) CreateReservation(_ context.Context, in app.CreateReservationInput) (app.CreateReservationResult, error) {
	s.lastCall, s.create = "create", in
	return app.CreateReservationResult{Reservation: s.res, Created: s.created}, s.err
}

func (s *stubReservationService) GetReservation(_ context.Context, id string) (domain.Reservation, error) {
	s.lastCall = "get"
	s.transition = app.TransitionInput{ReservationID: id}
	return s.res, s.err
}

func (s *stubReservationService) ListReservations(_ context.Context, q domain.ReservationQuery) (domain.ReservationPage, error) {
	s.lastCall, s.query = "list", q
	return s.page, s.err
}

func (s *stubReservationService) record(call string, in app.TransitionInput) (domain.Reservation, error) {
	s.lastCall, s.transition = call, in
	return s.res, s.err
}

func (s *stubReservationService) Approve(_ context.Context, in app.TransitionInput) (domain.Reservation, error) {
	return s.record("approve", in)
}

func (s *stubReservationService) Reject(_ context.Context, in app.TransitionInput) (domain.Reservation, error) {
	return s.record("reject", in)
}

func (s *stubReservationService) StartRental(_ context.Context, in app.TransitionInput) (domain.Reservation, error) {
	return s.record("start", in)
}

func (s *stubReservationService) Return(_ context.Context, in app.TransitionInput) (domain.Reservation, error) {
	return s.record("return", in)
}

func (s *stubReservationService) Cancel(_ context.Context, in app.TransitionInput) (domain.Reservation, error) {
	return s.record("cancel", in)
}

func (s *stubReservationService) UpdatePaymentStatus(_ context.Context, in app.UpdatePaymentInput) (domain.Reservation, error) {
	s.lastCall, s.payment = "payment", in
	return s.res, s.err
}

func (s *stubReservationService) BulkApprove(_ context.Context, in app.BulkInput) ([]app.BulkResult, error) {
	s.lastCall, s.bulkIn = "bulk-approve", in
	return s.bulk, s.err
}

func (s *stubReservationService) BulkReject(_ context.Context, in app.BulkInput) ([]app.BulkResult, error) {
	s.lastCall, s.bulkIn = "bulk-reject", in
	return s.bulk, s.err
}

func (s *stubReservationService) MoveReservation(_ context.Context, in app.MoveReservationInput) (domain.Reservation, error) {
	s.lastCall, s.move = "move", in
	return s.res, s.err
}

func serve(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
