package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

// CalendarProjector is the minimal interface needed to draw the calendar.
type CalendarProjector interface {
	Project(ctx context.Context, q domain.CalendarQuery) ([]domain.DisplayEvent, error)
}

// HandleCalendar serves the calendar for ?from=&to= with optional location,
// vehicle and status filters.
func HandleCalendar(svc CalendarProjector, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		v := r.URL.Query()
		window, err := parseWindow(v.Get("from"), v.Get("to"), loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDateRange, "from and to must be dates or RFC 3339 timestamps with from before to")
			return
		}
		statuses, err := parseStatuses(v.Get("status"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidQuery, err.Error())
			return
		}

		events, err := svc.Project(r.Context(), domain.CalendarQuery{
			Window:     window,
			LocationID: v.Get("location_id"),
			VehicleID:  v.Get("vehicle_id"),
			Statuses:   statuses,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp := make([]calendarEventResponse, 0, len(events))
		for _, ev := range events {
			resp = append(resp, calendarEventResponse{
				ID:     ev.ID,
				Title:  ev.Title,
				Start:  ev.Start,
				End:    ev.End,
				Status: string(ev.Status),
				Color:  ev.Color,
				Details: calendarDetailsResponse{
					Number:           ev.Details.Number,
					VehiclePlate:     ev.Details.VehiclePlate,
					PickupLocation:   ev.Details.PickupLocation,
					ReturnLocation:   ev.Details.ReturnLocation,
					TotalAmountCents: ev.Details.TotalAmountCents,
					PaymentStatus:    string(ev.Details.PaymentStatus),
				},
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type calendarDetailsResponse struct {
	Number           string `json:"reservation_number"`
	VehiclePlate     string `json:"vehicle_plate"`
	PickupLocation   string `json:"pickup_location"`
	ReturnLocation   string `json:"return_location"`
	TotalAmountCents int64  `json:"total_amount_cents"`
	PaymentStatus    string `json:"payment_status"`
}

type calendarEventResponse struct {
	ID      string                  `json:"id"`
	Title   string                  `json:"title"`
	Start   time.Time               `json:"start"`
	End     time.Time               `json:"end"`
	Status  string                  `json:"status"`
	Color   string                  `json:"color"`
	Details calendarDetailsResponse `json:"details"`
}
