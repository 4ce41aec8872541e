package repository

import (
	"context"
	"errors"
	"time"

	"logsync-service/internal/domain/entity"
	"logsync-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormEventRepository implements the EventRepository interface
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GORM event repository
func NewGormEventRepository(db *gorm.DB) repository.EventRepository {
	return &GormEventRepository{
		db: db,
	}
}

// Events GORM model for database mapping
type Events struct {
	ID          uint       `gorm:"primaryKey"`
	DeviceID    uint       `gorm:"column:device_id;uniqueIndex:uq_events_device_page"`
	PageAddress int64      `gorm:"column:page_address;uniqueIndex:uq_events_device_page"`
	TotalTime   int64      `gorm:"column:total_time"`
	Bitfield    uint32     `gorm:"column:bitfield;default:0"`
	DateTime    *time.Time `gorm:"column:date_time"`
	Message     string     `gorm:"column:message;size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (Events) TableName() string {
	return "events"
}

// InsertIfNew stores the event unless the (device, page address) pair is
// already present. The store is append-only.
func (r *GormEventRepository) InsertIfNew(ctx context.Context, event *entity.Event) (bool, error) {
	var existing Events
	result := r.db.WithContext(ctx).
		Where("device_id = ? AND page_address = ?", event.DeviceID, event.PageAddress).
		First(&existing)

	if result.Error == nil {
		return false, nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return false, result.Error
	}

	model := Events{
		DeviceID:    event.DeviceID,
		PageAddress: event.PageAddress,
		TotalTime:   event.TotalTime,
		Bitfield:    uint32(event.Bitfield),
		DateTime:    event.DateTime,
		Message:     event.Message,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return false, err
	}

	event.ID = model.ID
	return true, nil
}

// NewestForDevice returns the event with the highest page address for a device
func (r *GormEventRepository) NewestForDevice(ctx context.Context, deviceID uint) (*entity.Event, error) {
	var event Events
	result := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("page_address DESC").
		First(&event)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return toEventEntity(&event), nil
}

// RecentForDevice returns the most recent limit events for a device,
// ascending by page address so they replay in logger order.
func (r *GormEventRepository) RecentForDevice(ctx context.Context, deviceID uint, limit int) ([]*entity.Event, error) {
	var events []Events
	result := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("page_address DESC").
		Limit(limit).
		Find(&events)

	if result.Error != nil {
		return nil, result.Error
	}

	// Reverse into ascending page order.
	entities := make([]*entity.Event, len(events))
	for i := range events {
		entities[len(events)-1-i] = toEventEntity(&events[i])
	}
	return entities, nil
}

// AllForDevice returns every stored event for a device ascending by page address
func (r *GormEventRepository) AllForDevice(ctx context.Context, deviceID uint) ([]*entity.Event, error) {
	var events []Events
	result := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("page_address ASC").
		Find(&events)

	if result.Error != nil {
		return nil, result.Error
	}

	entities := make([]*entity.Event, 0, len(events))
	for i := range events {
		entities = append(entities, toEventEntity(&events[i]))
	}
	return entities, nil
}

// toEventEntity converts the GORM model to the domain entity
func toEventEntity(event *Events) *entity.Event {
	return &entity.Event{
		ID:          event.ID,
		DeviceID:    event.DeviceID,
		PageAddress: event.PageAddress,
		TotalTime:   event.TotalTime,
		Bitfield:    entity.Bitfield(event.Bitfield),
		DateTime:    event.DateTime,
		Message:     event.Message,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}
