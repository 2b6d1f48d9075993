package http

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

func TestHandleCreateReservation(t *testing.T) {
	const validBody = `{"vehicle_id":"veh-1","guest":{"name":"Ana","email":"ana@example.com"},"start_date":"2025-06-10","end_date":"2025-06-12","start_time":"10:00","end_time":"10:00","pickup_location_id":"loc-1","total_amount_cents":9000}`

	tests := []struct {
		name           string
		body           string
		key            string
		created        bool
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           validBody,
			key:            "k1",
			created:        true,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"reservation_number":"RSV-20250601-ABC123"`,
		},
		{
			name:           "replayed key",
			body:           validBody,
			key:            "k1",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing idempotency key",
			body:           validBody,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeIdempotencyRequired,
		},
		{
			name:           "invalid json",
			body:           `{"vehicle_id":`,
			key:            "k1",
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidRequestBody,
		},
		{
			name:           "unknown field",
			body:           `{"vehicle_id":"veh-1","color":"red"}`,
			key:            "k1",
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidRequestBody,
		},
		{
			name:           "missing customer",
			body:           `{"vehicle_id":"veh-1","start_date":"2025-06-10","end_date":"2025-06-12","pickup_location_id":"loc-1"}`,
			key:            "k1",
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: "customer_id is required",
		},
		{
			name:           "bad date format",
			body:           `{"vehicle_id":"veh-1","customer_id":"c1","start_date":"10/06/2025","end_date":"2025-06-12","pickup_location_id":"loc-1"}`,
			key:            "k1",
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: "start_date must match",
		},
		{
			name:           "inverted range",
			body:           `{"vehicle_id":"veh-1","customer_id":"c1","start_date":"2025-06-12","end_date":"2025-06-10","pickup_location_id":"loc-1"}`,
			key:            "k1",
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidDateRange,
		},
		{
			name:           "vehicle already booked",
			body:           validBody,
			key:            "k1",
			serviceErr:     domain.NewSchedulingConflict("veh-1", []domain.Reservation{sampleReservation()}),
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"conflicts":[{"reservation_id":"res-1"`,
		},
		{
			name:           "key reused for another request",
			body:           validBody,
			key:            "k1",
			serviceErr:     domain.ErrIdempotencyConflict,
			expectedStatus: http.StatusConflict,
			expectedSubstr: codeIdempotencyConflict,
		},
		{
			name:           "unknown location",
			body:           validBody,
			key:            "k1",
			serviceErr:     domain.ErrLocationNotFound,
			expectedStatus: http.StatusNotFound,
			expectedSubstr: codeLocationNotFound,
		},
		{
			name:           "internal error",
			body:           validBody,
			key:            "k1",
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedSubstr: `"error":"internal error"`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubReservationService{res: sampleReservation(), created: tt.created, err: tt.serviceErr}
			headers := map[string]string{}
			if tt.key != "" {
				headers[idempotencyHeader] = tt.key
			}

			rec := serve(HandleCreateReservation(svc, time.UTC), http.MethodPost, "/reservations", tt.body, headers)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body)
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestHandleCreateReservation_ReadsDatesInLocation(t *testing.T) {
	svc := &stubReservationService{res: sampleReservation(), created: true}
	madrid := time.FixedZone("CEST", 2*60*60)
	body := `{"vehicle_id":"veh-1","customer_id":"cust-1","start_date":"2025-06-10","end_date":"2025-06-12","start_time":"10:00","pickup_location_id":"loc-1","return_location_id":"loc-2"}`

	rec := serve(HandleCreateReservation(svc, madrid), http.MethodPost, "/reservations", body, map[string]string{idempotencyHeader: "k9"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body)
	}
	in := svc.create
	if !in.Range.Start.Equal(time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected 08:00 UTC start, got %v", in.Range.Start)
	}
	if !in.Range.End.Equal(time.Date(2025, 6, 11, 22, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected midnight local end, got %v", in.Range.End)
	}
	if in.Customer.CustomerID != "cust-1" || in.Customer.Guest != nil || in.ReturnLocationID != "loc-2" || in.IdempotencyKey != "k9" {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestHandleCreateReservation_MethodNotAllowed(t *testing.T) {
	rec := serve(HandleCreateReservation(&stubReservationService{}, time.UTC), http.MethodGet, "/reservations", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}
