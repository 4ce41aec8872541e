package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"logsync-service/internal/domain/entity"
	"logsync-service/pkg/logger"
)

// Accepted clock time layouts for legacy flight records. Dot-separated
// and 12-hour variants come from older device firmware exports.
var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"15.04.05",
	"15.04",
	"3:04:05 PM",
	"3:04 PM",
}

// Accepted date layouts for legacy flight records.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// RecordParser converts raw gateway records into domain types
type RecordParser struct {
	logger logger.Logger
}

// NewRecordParser creates a new record parser
func NewRecordParser(logger logger.Logger) *RecordParser {
	return &RecordParser{
		logger: logger,
	}
}

// IsEventRecord reports whether the raw record is an event page record
// rather than a legacy flight record.
func (p *RecordParser) IsEventRecord(rec entity.RawRecord) bool {
	_, ok := rec["page_address"]
	return ok
}

// ParseEvent validates one raw record and converts it into an Event.
// page_address and total_time are required; bitfield and the timestamp
// are optional.
func (p *RecordParser) ParseEvent(rec entity.RawRecord) (*entity.Event, error) {
	pageAddress, ok := intValue(rec["page_address"])
	if !ok {
		return nil, &entity.DecodeError{Field: "page_address", Reason: "missing or not an integer"}
	}

	totalTime, ok := intValue(rec["total_time"])
	if !ok {
		return nil, &entity.DecodeError{Field: "total_time", Reason: "missing or not an integer"}
	}
	if totalTime < 0 {
		return nil, &entity.DecodeError{Field: "total_time", Reason: "must not be negative"}
	}

	event := &entity.Event{
		PageAddress: pageAddress,
		TotalTime:   totalTime,
	}

	// Unset or unknown bits default to false.
	if raw, ok := rec["bitfield"]; ok {
		bits, ok := intValue(raw)
		if !ok {
			return nil, &entity.DecodeError{Field: "bitfield", Reason: "not an integer"}
		}
		event.Bitfield = entity.Bitfield(bits)
	}

	if ts, ok := p.parseTimestamp(rec); ok {
		event.DateTime = &ts
	}

	if msg, ok := rec["message"].(string); ok {
		event.Message = msg
	}

	return event, nil
}

// ParseLegacyFlight validates one raw record in the legacy flight shape.
// It requires a date plus either discrete takeoff/landing clock times or
// a positive flight_time in decimal hours.
func (p *RecordParser) ParseLegacyFlight(rec entity.RawRecord) (*LegacyFlightRecord, error) {
	dateStr, ok := rec["date"].(string)
	if !ok || dateStr == "" {
		return nil, &entity.DecodeError{Field: "date", Reason: "missing"}
	}

	date, err := p.ParseDate(dateStr)
	if err != nil {
		return nil, &entity.DecodeError{Field: "date", Reason: err.Error()}
	}

	record := &LegacyFlightRecord{
		Date:                 date,
		AircraftRegistration: stringValue(rec, "aircraft_registration"),
		AircraftType:         stringValue(rec, "aircraft_type"),
		DepartureAirport:     stringValue(rec, "departure_airport"),
		ArrivalAirport:       stringValue(rec, "arrival_airport"),
		PilotName:            stringValue(rec, "pilot_name"),
		Remarks:              stringValue(rec, "remarks"),
	}
	if record.DepartureAirport == "" {
		record.DepartureAirport = UNKNOWN_VALUE
	}
	if record.ArrivalAirport == "" {
		record.ArrivalAirport = UNKNOWN_VALUE
	}

	if takeoffStr := stringValue(rec, "takeoff_time"); takeoffStr != "" {
		takeoff, err := p.ParseClockTime(takeoffStr, date)
		if err != nil {
			return nil, &entity.DecodeError{Field: "takeoff_time", Reason: err.Error()}
		}
		record.TakeoffTime = &takeoff
	}

	if landingStr := stringValue(rec, "landing_time"); landingStr != "" {
		landing, err := p.ParseClockTime(landingStr, date)
		if err != nil {
			return nil, &entity.DecodeError{Field: "landing_time", Reason: err.Error()}
		}
		record.LandingTime = &landing
	}

	if raw, ok := rec["flight_time"]; ok {
		hours, ok := floatValue(raw)
		if !ok {
			return nil, &entity.DecodeError{Field: "flight_time", Reason: "not a number"}
		}
		record.FlightTime = hours
	}

	if !record.HasDiscreteTimes() && record.FlightTime <= 0 {
		return nil, &entity.DecodeError{Field: "flight_time", Reason: "must be a positive number when clock times are absent"}
	}

	return record, nil
}

// ParseClockTime parses a clock time string in any accepted layout and
// anchors it on the given date.
func (p *RecordParser) ParseClockTime(value string, date time.Time) (time.Time, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(value))
	for _, layout := range clockLayouts {
		parsed, err := time.Parse(layout, cleaned)
		if err != nil {
			continue
		}
		return time.Date(date.Year(), date.Month(), date.Day(),
			parsed.Hour(), parsed.Minute(), parsed.Second(), 0, date.Location()), nil
	}
	return time.Time{}, fmt.Errorf("unable to parse clock time %q", value)
}

// ParseDate parses a date string in any accepted layout.
func (p *RecordParser) ParseDate(value string) (time.Time, error) {
	cleaned := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, cleaned)
		if err != nil {
			continue
		}
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	if parsed, err := time.Parse(time.RFC3339, strings.ReplaceAll(cleaned, "Z", "+00:00")); err == nil {
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unable to parse date %q", value)
}

// parseTimestamp extracts the optional event timestamp, accepting both a
// datetime string and an epoch value in milliseconds.
func (p *RecordParser) parseTimestamp(rec entity.RawRecord) (time.Time, bool) {
	raw, ok := rec["date_time"]
	if !ok {
		raw, ok = rec["timestamp"]
	}
	if !ok || raw == nil {
		return time.Time{}, false
	}

	switch v := raw.(type) {
	case string:
		for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", time.RFC3339} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed.UTC(), true
			}
		}
		p.logger.Warn("Unparseable event timestamp", "value", v)
		return time.Time{}, false
	default:
		if millis, ok := intValue(raw); ok && millis > 0 {
			return time.UnixMilli(millis).UTC(), true
		}
		return time.Time{}, false
	}
}

// intValue coerces the loosely-typed wire value into an int64. JSON
// decoding yields float64 for numbers, so fractional values are rejected.
func intValue(raw interface{}) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func floatValue(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func stringValue(rec entity.RawRecord, key string) string {
	if v, ok := rec[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
