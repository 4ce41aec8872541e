package usecase

import (
	"context"

	"logsync-service/internal/domain/entity"
	"logsync-service/internal/domain/repository"
)

// BatchHandler defines the interface for payload batch handlers. One
// handler understands the event-page shape, another the legacy flight
// shape; both run inside the device's sync transaction.
type BatchHandler interface {
	// CanHandle determines if this handler understands the batch shape
	CanHandle(batch []entity.RawRecord) bool

	// Handle processes the batch for the device and reports what changed
	Handle(ctx context.Context, repos repository.TxRepos, device *entity.Device, batch []entity.RawRecord) (*BatchResult, error)
}

// BatchRouter routes fetched batches to the appropriate handler
type BatchRouter interface {
	// Register registers a handler for a payload shape
	Register(handler BatchHandler)

	// GetHandler returns the appropriate handler for the given batch
	GetHandler(batch []entity.RawRecord) BatchHandler
}

// BatchResult summarizes what one batch changed in storage
type BatchResult struct {
	NewEvents      int
	SkippedRecords int
	NewEntries     int
}
