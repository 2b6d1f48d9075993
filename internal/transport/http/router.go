package http

import (
	"net/http"
	"time"
)

// Routes collects the services behind the HTTP API.
type Routes struct {
	Creator      ReservationCreator
	Reservations AdminReservationService
	Mover        ReservationMover
	Calendar     CalendarProjector
	Vehicles     AdminVehicleService
	Locations    AdminLocationService
	Stats        StatsProvider
	Health       []HealthCheck
	// Location interprets civil dates in requests. Defaults to UTC.
	Location *time.Location
}

func NewMux(rt Routes) *http.ServeMux {
	loc := rt.Location
	if loc == nil {
		loc = time.UTC
	}
	mux := http.NewServeMux()
	mux.Handle("/health", HandleHealth(rt.Health...))
	mux.Handle("/reservations", HandleCreateReservation(rt.Creator, loc))
	mux.Handle(adminReservationsPath, HandleAdminReservations(rt.Reservations, loc))
	mux.Handle(adminReservationsPath+"/", HandleAdminReservation(rt.Reservations, rt.Mover))
	mux.Handle("/admin/calendar", HandleCalendar(rt.Calendar, loc))
	mux.Handle(adminVehiclesPath, HandleAdminVehicles(rt.Vehicles))
	mux.Handle(adminVehiclesPath+"/", HandleAdminVehicleStatus(rt.Vehicles))
	mux.Handle("/admin/locations", HandleAdminLocations(rt.Locations))
	mux.Handle("/admin/stats", HandleStats(rt.Stats))
	mux.Handle("/", NotFoundHandler())
	return mux
}
