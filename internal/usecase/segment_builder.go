package usecase

import (
	"logsync-service/internal/domain/entity"
	"logsync-service/pkg/logger"
)

// flightState tracks where the aircraft is in the takeoff/landing cycle
// while replaying an event window.
type flightState int

const (
	stateGround flightState = iota
	stateEngineRunning
	stateAirborne
)

// SegmentBuilder replays an ordered window of device events through the
// flight state machine and collects completed takeoff/landing segments.
// The same builder serves both the incremental lookback window and the
// full-history rebuild; only the window passed in differs.
type SegmentBuilder struct {
	logger logger.Logger
}

// NewSegmentBuilder creates a new segment builder
func NewSegmentBuilder(logger logger.Logger) *SegmentBuilder {
	return &SegmentBuilder{
		logger: logger,
	}
}

// Replay walks the events, ascending by page address, and returns every
// completed segment. A takeoff without a landing by the end of the
// window stays pending; a later window with the landing event completes
// it.
func (b *SegmentBuilder) Replay(events []*entity.Event) []*entity.FlightSegment {
	var (
		segments []*entity.FlightSegment
		state    = stateGround
		takeoff  *entity.Event
	)

	for _, event := range events {
		// One logger page can combine several transitions (engine start
		// and takeoff often arrive on the same page), so the bits are
		// checked in the order the aircraft goes through them.
		if event.Has(entity.BitAnyEngStart) && state == stateGround {
			state = stateEngineRunning
		}

		if event.Has(entity.BitTakeoff) {
			if state == stateAirborne {
				// Duplicate takeoff signal while already flying.
				b.logger.Debug("Ignoring takeoff while airborne",
					"pageAddress", event.PageAddress)
			} else {
				// The window may start mid-sequence, so a takeoff is
				// accepted from the ground state as well.
				state = stateAirborne
				takeoff = event
			}
		}

		if event.Has(entity.BitLanding) {
			if state == stateAirborne && takeoff != nil {
				segments = append(segments, &entity.FlightSegment{
					Takeoff: takeoff,
					Landing: event,
				})
				state = stateGround
				takeoff = nil
			} else {
				// Landing noise without a takeoff in sight.
				b.logger.Debug("Ignoring landing without takeoff",
					"pageAddress", event.PageAddress)
			}
		}

		// Engine stop on the ground ends an aborted start; it never
		// produces a segment on its own.
		if event.Has(entity.BitLastEngStop) && state != stateAirborne {
			state = stateGround
			takeoff = nil
		}
	}

	return segments
}
