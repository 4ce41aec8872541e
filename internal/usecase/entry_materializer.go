package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"logsync-service/internal/domain/entity"
	"logsync-service/internal/domain/repository"
	"logsync-service/pkg/logger"
	"logsync-service/pkg/utils"
)

// EntryMaterializer turns reconstructed flight segments and legacy
// flight records into deduplicated logbook entries. Entries are not
// bound to a pilot account here; that mapping happens downstream.
type EntryMaterializer struct {
	defaultTakeoff time.Duration // clock offset into the day for legacy records
	logger         logger.Logger
}

// NewEntryMaterializer creates a new entry materializer
func NewEntryMaterializer(defaultTakeoff time.Duration, logger logger.Logger) *EntryMaterializer {
	return &EntryMaterializer{
		defaultTakeoff: defaultTakeoff,
		logger:         logger,
	}
}

// FromSegment converts a completed segment into a logbook entry. The
// flight date comes from the takeoff timestamp; a landing clock earlier
// than the takeoff means the flight crossed midnight.
func (m *EntryMaterializer) FromSegment(device *entity.Device, segment *entity.FlightSegment) (*entity.LogbookEntry, error) {
	if segment.Takeoff == nil || segment.Landing == nil {
		return nil, &entity.MaterializeError{Reason: "segment is missing its takeoff or landing event"}
	}
	if segment.Takeoff.DateTime == nil || segment.Landing.DateTime == nil {
		return nil, &entity.MaterializeError{
			Reason: fmt.Sprintf("events %d and %d carry no timestamps",
				segment.Takeoff.PageAddress, segment.Landing.PageAddress),
		}
	}

	takeoffAt := segment.Takeoff.DateTime.UTC()
	landingAt := segment.Landing.DateTime.UTC()
	if landingAt.Before(takeoffAt) {
		// Midnight crossover: the landing happened on the next day.
		landingAt = landingAt.Add(24 * time.Hour)
	}

	deviceID := device.ID
	return &entity.LogbookEntry{
		TakeoffAt:            takeoffAt,
		LandingAt:            landingAt,
		AircraftType:         deviceField(device.Model),
		AircraftRegistration: deviceField(device.Registration),
		DepartureAirport:     utils.UNKNOWN_VALUE,
		ArrivalAirport:       utils.UNKNOWN_VALUE,
		FlightTime:           roundHours(landingAt.Sub(takeoffAt)),
		Remarks: fmt.Sprintf("Synced from device %s (pages %d-%d)",
			device.ExternalDeviceID, segment.Takeoff.PageAddress, segment.Landing.PageAddress),
		DeviceID: &deviceID,
	}, nil
}

// FromLegacyRecord converts a legacy flight record into a logbook entry.
// This path exists purely for backward compatibility with devices that
// report whole flights instead of logger events.
func (m *EntryMaterializer) FromLegacyRecord(device *entity.Device, record *utils.LegacyFlightRecord) (*entity.LogbookEntry, error) {
	var takeoffAt, landingAt time.Time

	if record.HasDiscreteTimes() {
		takeoffAt = *record.TakeoffTime
		landingAt = *record.LandingTime
		if landingAt.Before(takeoffAt) {
			landingAt = landingAt.Add(24 * time.Hour)
		}
	} else {
		// Backward compatibility: the old payload carries only a total
		// duration, so the takeoff is pinned to the configured default
		// clock time and the landing derived by adding the duration.
		takeoffAt = record.Date.Add(m.defaultTakeoff)
		landingAt = takeoffAt.Add(time.Duration(record.FlightTime * float64(time.Hour)))
	}

	registration := record.AircraftRegistration
	if registration == "" {
		registration = deviceField(device.Registration)
	}
	aircraftType := record.AircraftType
	if aircraftType == "" {
		aircraftType = deviceField(device.Model)
	}
	remarks := record.Remarks
	if remarks == "" {
		remarks = fmt.Sprintf("Synced from device %s", device.ExternalDeviceID)
	}

	deviceID := device.ID
	return &entity.LogbookEntry{
		TakeoffAt:            takeoffAt,
		LandingAt:            landingAt,
		AircraftType:         aircraftType,
		AircraftRegistration: registration,
		DepartureAirport:     record.DepartureAirport,
		ArrivalAirport:       record.ArrivalAirport,
		FlightTime:           roundHours(landingAt.Sub(takeoffAt)),
		PilotName:            record.PilotName,
		Remarks:              remarks,
		DeviceID:             &deviceID,
	}, nil
}

// Persist inserts the entry unless a flight with the same device,
// takeoff and landing is already stored. Returns true when a new entry
// was written.
func (m *EntryMaterializer) Persist(ctx context.Context, entries repository.LogbookRepository, entry *entity.LogbookEntry) (bool, error) {
	var deviceID uint
	if entry.DeviceID != nil {
		deviceID = *entry.DeviceID
	}

	exists, err := entries.ExistsForFlight(ctx, deviceID, entry.TakeoffAt, entry.LandingAt)
	if err != nil {
		return false, err
	}
	if exists {
		m.logger.Debug("Logbook entry already exists",
			"deviceId", deviceID,
			"takeoffAt", entry.TakeoffAt)
		return false, nil
	}

	if err := entries.Insert(ctx, entry); err != nil {
		return false, err
	}
	return true, nil
}

func deviceField(value string) string {
	if value == "" {
		return utils.UNKNOWN_VALUE
	}
	return value
}

func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}
