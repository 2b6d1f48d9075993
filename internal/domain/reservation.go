package domain

import (
	"strings"
	"time"
)

// Status is the lifecycle position of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// AllStatuses lists every reservation status in lifecycle order.
var AllStatuses = []Status{StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled}

// ParseStatus returns ErrInvalidStatus for unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Blocking reports whether a reservation in this status holds its vehicle
// exclusively.
func (s Status) Blocking() bool {
	return s == StatusConfirmed || s == StatusActive
}

// PaymentStatus is tracked apart from Status; see CanApplyPayment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// ParsePaymentStatus returns ErrInvalidPaymentStatus for unknown values.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch p := PaymentStatus(strings.ToLower(strings.TrimSpace(s))); p {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return p, nil
	}
	return "", ErrInvalidPaymentStatus
}

// GuestContact is used when the renter has no customer account.
type GuestContact struct {
	Name  string
	Phone string
	Email string
}

// CustomerRef points at a registered customer or carries guest contact details.
type CustomerRef struct {
	CustomerID string
	Guest      *GuestContact
}

// Validate requires a customer id or a guest name.
func (c CustomerRef) Validate() error {
	if strings.TrimSpace(c.CustomerID) != "" {
		return nil
	}
	if c.Guest != nil && strings.TrimSpace(c.Guest.Name) != "" {
		return nil
	}
	return ErrCustomerRequired
}

// Equal reports whether c and o name the same customer. A nil guest and an
// empty one are the same, matching how contacts are stored.
func (c CustomerRef) Equal(o CustomerRef) bool {
	return c.CustomerID == o.CustomerID && c.contact() == o.contact()
}

func (c CustomerRef) contact() GuestContact {
	if c.Guest == nil {
		return GuestContact{}
	}
	return *c.Guest
}

// Reservation is a booking of one vehicle for a contiguous range.
type Reservation struct {
	ID               string
	Number           string
	VehicleID        string
	Customer         CustomerRef
	CustomerName     string
	Range            DateRange
	PickupLocationID string
	ReturnLocationID string
	Status           Status
	PaymentStatus    PaymentStatus
	TotalAmountCents int64
	AdminNotes       string
	ApprovedBy       string
	ApprovedAt       *time.Time
	CancelReason     string
	IdempotencyKey   string
	// Version is bumped on every write and used for compare-and-swap updates.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName is the renter name shown on calendars and lists.
func (r Reservation) DisplayName() string {
	if r.CustomerName != "" {
		return r.CustomerName
	}
	if r.Customer.Guest != nil && r.Customer.Guest.Name != "" {
		return r.Customer.Guest.Name
	}
	if r.Customer.CustomerID != "" {
		return "Customer " + r.Customer.CustomerID
	}
	return r.Number
}

// ReservationEventType names a committed lifecycle change.
type ReservationEventType string

const (
	EventCreated        ReservationEventType = "created"
	EventConfirmed      ReservationEventType = "confirmed"
	EventRejected       ReservationEventType = "rejected"
	EventStarted        ReservationEventType = "started"
	EventReturned       ReservationEventType = "returned"
	EventCancelled      ReservationEventType = "cancelled"
	EventMoved          ReservationEventType = "moved"
	EventPaymentUpdated ReservationEventType = "payment_updated"
)

// ReservationEvent is emitted after a reservation change has been committed.
type ReservationEvent struct {
	Type          ReservationEventType
	ReservationID string
	Number        string
	VehicleID     string
	Status        Status
	PaymentStatus PaymentStatus
	Range         DateRange
	Actor         string
	OccurredAt    time.Time
}

// NewReservationEvent snapshots r for publishing.
func NewReservationEvent(t ReservationEventType, r Reservation, actor string, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          t,
		ReservationID: r.ID,
		Number:        r.Number,
		VehicleID:     r.VehicleID,
		Status:        r.Status,
		PaymentStatus: r.PaymentStatus,
		Range:         r.Range,
		Actor:         actor,
		OccurredAt:    at,
	}
}
