package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

const (
	idempotencyHeader = "Idempotency-Key"
	adminHeader       = "X-Admin-ID"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
}

func adminID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(adminHeader))
}

// pathParts splits a URL path below prefix into its segments.
func pathParts(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// parseInstant accepts RFC 3339 timestamps or civil dates, which are read as
// midnight in loc.
func parseInstant(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(domain.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDateRange
	}
	return t.UTC(), nil
}

func parseWindow(from, to string, loc *time.Location) (domain.DateRange, error) {
	start, err := parseInstant(from, loc)
	if err != nil {
		return domain.DateRange{}, err
	}
	end, err := parseInstant(to, loc)
	if err != nil {
		return domain.DateRange{}, err
	}
	rng := domain.DateRange{Start: start, End: end}
	if err := rng.Validate(); err != nil {
		return domain.DateRange{}, err
	}
	return rng, nil
}

func parseStatuses(raw string) ([]domain.Status, error) {
	var out []domain.Status
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		st, err := domain.ParseStatus(part)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

type guestResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type reservationResponse struct {
	ID               string         `json:"id"`
	Number           string         `json:"reservation_number"`
	VehicleID        string         `json:"vehicle_id"`
	CustomerID       string         `json:"customer_id,omitempty"`
	CustomerName     string         `json:"customer_name"`
	Guest            *guestResponse `json:"guest,omitempty"`
	Start            time.Time      `json:"start"`
	End              time.Time      `json:"end"`
	PickupLocationID string         `json:"pickup_location_id"`
	ReturnLocationID string         `json:"return_location_id"`
	Status           string         `json:"status"`
	PaymentStatus    string         `json:"payment_status"`
	TotalAmountCents int64          `json:"total_amount_cents"`
	AdminNotes       string         `json:"admin_notes,omitempty"`
	ApprovedBy       string         `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time     `json:"approved_at,omitempty"`
	CancelReason     string         `json:"cancel_reason,omitempty"`
	Version          int64          `json:"version"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func reservationFrom(r domain.Reservation) reservationResponse {
	resp := reservationResponse{
		ID:               r.ID,
		Number:           r.Number,
		VehicleID:        r.VehicleID,
		CustomerID:       r.Customer.CustomerID,
		CustomerName:     r.DisplayName(),
		Start:            r.Range.Start,
		End:              r.Range.End,
		PickupLocationID: r.PickupLocationID,
		ReturnLocationID: r.ReturnLocationID,
		Status:           string(r.Status),
		PaymentStatus:    string(r.PaymentStatus),
		TotalAmountCents: r.TotalAmountCents,
		AdminNotes:       r.AdminNotes,
		ApprovedBy:       r.ApprovedBy,
		ApprovedAt:       r.ApprovedAt,
		CancelReason:     r.CancelReason,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if g := r.Customer.Guest; g != nil {
		resp.Guest = &guestResponse{Name: g.Name, Phone: g.Phone, Email: g.Email}
	}
	return resp
}
