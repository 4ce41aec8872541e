package repository

import (
	"context"
	"time"

	"logsync-service/internal/domain/entity"
)

// LogbookRepository defines the sink for materialized logbook entries.
type LogbookRepository interface {
	// ExistsForFlight reports whether an entry with the same device,
	// takeoff and landing datetimes is already stored.
	ExistsForFlight(ctx context.Context, deviceID uint, takeoffAt, landingAt time.Time) (bool, error)

	Insert(ctx context.Context, entry *entity.LogbookEntry) error
}
