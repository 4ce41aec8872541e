// internal/domain/entity/logbook_entry.go
package entity

import (
	"time"
)

// LogbookEntry is one reconstructed flight in the shared logbook.
// Entries are visible to all viewers of the device; mapping a pilot name
// to a user account is resolved downstream, so UserID stays nil for
// flights with an unknown pilot.
type LogbookEntry struct {
	ID                   uint
	TakeoffAt            time.Time
	LandingAt            time.Time
	AircraftType         string
	AircraftRegistration string
	DepartureAirport     string
	ArrivalAirport       string
	FlightTime           float64 // total flight time in hours
	PilotName            string
	Remarks              string
	UserID               *uint
	DeviceID             *uint
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Date returns the calendar date of the flight, taken from the takeoff.
func (e *LogbookEntry) Date() time.Time {
	y, m, d := e.TakeoffAt.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, e.TakeoffAt.Location())
}

// Duration returns the flight duration derived from the takeoff and
// landing times.
func (e *LogbookEntry) Duration() time.Duration {
	return e.LandingAt.Sub(e.TakeoffAt)
}

// CalculatedFlightTime returns the flight time in hours rounded to two
// decimals, falling back to the stored FlightTime when the datetimes are
// not set.
func (e *LogbookEntry) CalculatedFlightTime() float64 {
	if e.TakeoffAt.IsZero() || e.LandingAt.IsZero() {
		return e.FlightTime
	}
	hours := e.Duration().Hours()
	return float64(int(hours*100+0.5)) / 100
}
