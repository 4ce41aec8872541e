// internal/domain/entity/flight_segment.go
package entity

// FlightSegment pairs a takeoff-bearing event with the landing-bearing
// event that closed it. Segments are reconstructed in memory from the
// event stream and never persisted directly.
type FlightSegment struct {
	Takeoff *Event
	Landing *Event
}
