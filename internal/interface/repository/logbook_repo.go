package repository

import (
	"context"
	"time"

	"logsync-service/internal/domain/entity"
	"logsync-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormLogbookRepository implements the LogbookRepository interface
type GormLogbookRepository struct {
	db *gorm.DB
}

// NewGormLogbookRepository creates a new GORM logbook repository
func NewGormLogbookRepository(db *gorm.DB) repository.LogbookRepository {
	return &GormLogbookRepository{
		db: db,
	}
}

// LogbookEntries GORM model for database mapping
type LogbookEntries struct {
	ID                   uint      `gorm:"primaryKey"`
	TakeoffAt            time.Time `gorm:"column:takeoff_at;index:idx_logbook_flight"`
	LandingAt            time.Time `gorm:"column:landing_at;index:idx_logbook_flight"`
	AircraftType         string    `gorm:"column:aircraft_type;size:50"`
	AircraftRegistration string    `gorm:"column:aircraft_registration;size:20"`
	DepartureAirport     string    `gorm:"column:departure_airport;size:10"`
	ArrivalAirport       string    `gorm:"column:arrival_airport;size:10"`
	FlightTime           float64   `gorm:"column:flight_time"`
	PilotName            string    `gorm:"column:pilot_name;size:100"`
	Remarks              string    `gorm:"column:remarks"`
	UserID               *uint     `gorm:"column:user_id"`
	DeviceID             *uint     `gorm:"column:device_id;index:idx_logbook_flight"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName overrides the default table name
func (LogbookEntries) TableName() string {
	return "logbook_entries"
}

// ExistsForFlight checks whether the (device, takeoff, landing) flight is
// already materialized. This is the dedupe key that makes re-runs no-ops.
func (r *GormLogbookRepository) ExistsForFlight(ctx context.Context, deviceID uint, takeoffAt, landingAt time.Time) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&LogbookEntries{}).
		Where("device_id = ? AND takeoff_at = ? AND landing_at = ?", deviceID, takeoffAt, landingAt).
		Count(&count)

	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// Insert stores a new logbook entry
func (r *GormLogbookRepository) Insert(ctx context.Context, entry *entity.LogbookEntry) error {
	model := LogbookEntries{
		TakeoffAt:            entry.TakeoffAt,
		LandingAt:            entry.LandingAt,
		AircraftType:         entry.AircraftType,
		AircraftRegistration: entry.AircraftRegistration,
		DepartureAirport:     entry.DepartureAirport,
		ArrivalAirport:       entry.ArrivalAirport,
		FlightTime:           entry.FlightTime,
		PilotName:            entry.PilotName,
		Remarks:              entry.Remarks,
		UserID:               entry.UserID,
		DeviceID:             entry.DeviceID,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}

	entry.ID = model.ID
	return nil
}
