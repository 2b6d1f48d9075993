package domain

// SortField is a column admin lists can be ordered by.
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortStart     SortField = "start"
	SortTotal     SortField = "total"
)

// Page size used when none or an out-of-range one is requested.
const (
	DefaultPerPage = 25
	MaxPerPage     = 100
)

// ReservationQuery selects, orders and pages reservations for admin lists.
// The zero value lists everything, newest first.
type ReservationQuery struct {
	Statuses   []Status
	VehicleID  string
	LocationID string
	// Window keeps reservations whose range overlaps it.
	Window  *DateRange
	Search  string
	Sort    SortField
	Desc    bool
	Page    int
	PerPage int
}

// Normalize fills defaults and clamps paging.
func (q ReservationQuery) Normalize() ReservationQuery {
	switch q.Sort {
	case SortCreatedAt, SortStart, SortTotal:
	default:
		q.Sort = SortCreatedAt
		q.Desc = true
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 || q.PerPage > MaxPerPage {
		q.PerPage = DefaultPerPage
	}
	return q
}

// Offset is the number of rows skipped for a normalized query.
func (q ReservationQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// ReservationPage is one page of a list plus the unpaged total.
type ReservationPage struct {
	Items   []Reservation
	Total   int
	Page    int
	PerPage int
}
