package domain

import (
	"sort"
	"time"
)

// DefaultCalendarStatuses hides completed and cancelled reservations.
var DefaultCalendarStatuses = []Status{StatusPending, StatusConfirmed, StatusActive}

var statusColors = map[Status]string{
	StatusPending:   "#f59e0b",
	StatusConfirmed: "#3b82f6",
	StatusActive:    "#10b981",
	StatusCompleted: "#6b7280",
	StatusCancelled: "#ef4444",
}

// StatusColor is the calendar color for a reservation status.
func StatusColor(s Status) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return "#9ca3af"
}

// CalendarQuery selects the reservations drawn on the calendar.
type CalendarQuery struct {
	Window     DateRange
	LocationID string
	VehicleID  string
	Statuses   []Status
}

// Normalize applies the default status set.
func (q CalendarQuery) Normalize() CalendarQuery {
	if len(q.Statuses) == 0 {
		q.Statuses = append([]Status(nil), DefaultCalendarStatuses...)
	}
	return q
}

func (q CalendarQuery) matches(r Reservation) bool {
	if !r.Range.Overlaps(q.Window) {
		return false
	}
	if q.VehicleID != "" && r.VehicleID != q.VehicleID {
		return false
	}
	if q.LocationID != "" && r.PickupLocationID != q.LocationID && r.ReturnLocationID != q.LocationID {
		return false
	}
	for _, s := range q.Statuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

// EventDetails carries what the calendar shows for a selected booking.
type EventDetails struct {
	Number           string
	VehiclePlate     string
	PickupLocation   string
	ReturnLocation   string
	TotalAmountCents int64
	PaymentStatus    PaymentStatus
}

// DisplayEvent is one reservation as drawn on the calendar.
type DisplayEvent struct {
	ID      string
	Title   string
	Start   time.Time
	End     time.Time
	Status  Status
	Color   string
	Details EventDetails
}

// Project maps reservations into calendar events. Reservations outside the
// query are dropped; output is ordered by start, then reservation number.
func Project(reservations []Reservation, vehicles map[string]Vehicle, locations map[string]Location, q CalendarQuery) []DisplayEvent {
	q = q.Normalize()
	events := make([]DisplayEvent, 0, len(reservations))
	for _, r := range reservations {
		if !q.matches(r) {
			continue
		}
		events = append(events, DisplayEvent{
			ID:     r.ID,
			Title:  r.DisplayName(),
			Start:  r.Range.Start,
			End:    r.Range.End,
			Status: r.Status,
			Color:  StatusColor(r.Status),
			Details: EventDetails{
				Number:           r.Number,
				VehiclePlate:     vehicles[r.VehicleID].Plate,
				PickupLocation:   locations[r.PickupLocationID].Name,
				ReturnLocation:   locations[r.ReturnLocationID].Name,
				TotalAmountCents: r.TotalAmountCents,
				PaymentStatus:    r.PaymentStatus,
			},
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].Details.Number < events[j].Details.Number
	})
	return events
}
