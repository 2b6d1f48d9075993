package domain

import (
	"strings"
	"time"
)

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleRented      VehicleStatus = "rented"
	VehicleMaintenance VehicleStatus = "maintenance"
	VehicleInactive    VehicleStatus = "inactive"
)

// ParseVehicleStatus returns ErrInvalidStatus for unknown values.
func ParseVehicleStatus(s string) (VehicleStatus, error) {
	switch v := VehicleStatus(strings.ToLower(strings.TrimSpace(s))); v {
	case VehicleAvailable, VehicleRented, VehicleMaintenance, VehicleInactive:
		return v, nil
	}
	return "", ErrInvalidStatus
}

// Vehicle is a rentable car. Its status is set by admins and is not derived
// from reservations.
type Vehicle struct {
	ID             string
	Make           string
	Model          string
	Year           int
	Plate          string
	Status         VehicleStatus
	DailyRateCents int64
	HomeLocationID string
	CreatedAt      time.Time
}

// Location is a pickup or return branch.
type Location struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
}
