package repository

import (
	"context"

	"logsync-service/internal/domain/entity"
)

// EventRepository defines the append-only event store. Events are unique
// per (device, page address); nothing here updates or deletes rows.
type EventRepository interface {
	// InsertIfNew stores the event unless one with the same device and
	// page address already exists. Returns true when a row was inserted.
	InsertIfNew(ctx context.Context, event *entity.Event) (bool, error)

	// NewestForDevice returns the event with the highest page address for
	// the device, or nil when the device has no events.
	NewestForDevice(ctx context.Context, deviceID uint) (*entity.Event, error)

	// RecentForDevice returns up to limit of the most recent events for
	// the device, ordered ascending by page address.
	RecentForDevice(ctx context.Context, deviceID uint, limit int) ([]*entity.Event, error)

	// AllForDevice returns every stored event for the device, ordered
	// ascending by page address.
	AllForDevice(ctx context.Context, deviceID uint) ([]*entity.Event, error)
}
