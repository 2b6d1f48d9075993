package domain

// Overview feeds the dashboard counters.
type Overview struct {
	ReservationsByStatus map[Status]int
	PendingApprovals     int
	PaidRevenueCents     int64
	VehiclesByStatus     map[VehicleStatus]int
	TotalVehicles        int
	PickupsToday         int
	ReturnsToday         int
}
