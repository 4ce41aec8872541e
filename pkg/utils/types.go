package utils

import "time"

// LegacyFlightRecord represents a flight from the older gateway payload
// shape that predates event pages. Kept for backward compatibility with
// devices that still report whole flights instead of logger events.
type LegacyFlightRecord struct {
	Date                 time.Time
	AircraftRegistration string
	AircraftType         string
	DepartureAirport     string
	ArrivalAirport       string
	PilotName            string
	TakeoffTime          *time.Time // clock time on Date, nil when absent
	LandingTime          *time.Time // clock time, may be before takeoff on crossover
	FlightTime           float64    // decimal hours, legacy single field
	Remarks              string
}

// HasDiscreteTimes reports whether the record carries explicit takeoff
// and landing clock times.
func (r *LegacyFlightRecord) HasDiscreteTimes() bool {
	return r.TakeoffTime != nil && r.LandingTime != nil
}

// Constants
const (
	// UNKNOWN_VALUE fills required logbook fields the device cannot provide
	UNKNOWN_VALUE = "UNKNOWN"
)
