package domain

// FindConflicts returns the reservations in existing that hold vehicleID
// exclusively over any part of rng. Pending, completed and cancelled
// reservations never conflict. excludeID skips the reservation being checked
// against everything else.
func FindConflicts(existing []Reservation, vehicleID string, rng DateRange, excludeID string) []Reservation {
	var out []Reservation
	for _, r := range existing {
		if r.VehicleID != vehicleID {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if !r.Status.Blocking() {
			continue
		}
		if r.Range.Overlaps(rng) {
			out = append(out, r)
		}
	}
	return out
}
