package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidField        = "invalid_field"
	codeInvalidQuery        = "invalid_query"
	codeValidationFailed    = "validation_failed"
	codeInvalidID           = "invalid_id"
	codeInvalidDateRange    = "invalid_date_range"
	codeReasonRequired      = "reason_required"
	codeIdempotencyRequired = "idempotency_key_required"
	codeIdempotencyConflict = "idempotency_conflict"
	codeSchedulingConflict  = "scheduling_conflict"
	codeInvalidTransition   = "invalid_transition"
	codeConcurrencyConflict = "concurrency_conflict"
	codePlateTaken          = "plate_taken"
	codeReservationNotFound = "reservation_not_found"
	codeVehicleNotFound     = "vehicle_not_found"
	codeLocationNotFound    = "location_not_found"
	codeCustomerNotFound    = "customer_not_found"
	codeForbidden           = "forbidden"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error     string             `json:"error"`
	Code      string             `json:"code"`
	Conflicts []conflictResponse `json:"conflicts,omitempty"`
}

type conflictResponse struct {
	ReservationID string    `json:"reservation_id"`
	Number        string    `json:"reservation_number,omitempty"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeErrorResponse(w, status, errorResponse{Error: msg, Code: code})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(resp)
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

var specificCodes = []struct {
	err  error
	code string
}{
	{domain.ErrReservationNotFound, codeReservationNotFound},
	{domain.ErrVehicleNotFound, codeVehicleNotFound},
	{domain.ErrLocationNotFound, codeLocationNotFound},
	{domain.ErrCustomerNotFound, codeCustomerNotFound},
	{domain.ErrInvalidID, codeInvalidID},
	{domain.ErrInvalidDateRange, codeInvalidDateRange},
	{domain.ErrReasonRequired, codeReasonRequired},
	{domain.ErrIdempotencyKeyRequired, codeIdempotencyRequired},
	{domain.ErrIdempotencyConflict, codeIdempotencyConflict},
	{domain.ErrPlateTaken, codePlateTaken},
}

// errorStatus maps a service error to its HTTP status and response code.
func errorStatus(err error) (int, string) {
	code := ""
	for _, c := range specificCodes {
		if errors.Is(err, c.err) {
			code = c.code
			break
		}
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, orCode(code, codeNotFound)
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, orCode(code, codeValidationFailed)
	case errors.Is(err, domain.ErrSchedulingConflict):
		return http.StatusConflict, codeSchedulingConflict
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, codeInvalidTransition
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict, codeConcurrencyConflict
	case errors.Is(err, domain.ErrIdempotencyConflict), errors.Is(err, domain.ErrPlateTaken):
		return http.StatusConflict, code
	}
	return http.StatusInternalServerError, codeInternalError
}

func orCode(code, fallback string) string {
	if code == "" {
		return fallback
	}
	return code
}

// writeServiceError renders err. Unexpected failures are logged and hidden
// behind a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, status, code, "internal error")
		return
	}
	resp := errorResponse{Error: err.Error(), Code: code}
	var conflict *domain.SchedulingConflictError
	if errors.As(err, &conflict) {
		resp.Conflicts = conflictsFrom(conflict)
	}
	writeErrorResponse(w, status, resp)
}

func conflictsFrom(e *domain.SchedulingConflictError) []conflictResponse {
	out := make([]conflictResponse, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		out = append(out, conflictResponse{
			ReservationID: c.ReservationID,
			Number:        c.Number,
			Start:         c.Range.Start,
			End:           c.Range.End,
		})
	}
	return out
}
