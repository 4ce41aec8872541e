package repository

import (
	"context"

	"logsync-service/internal/domain/entity"
)

// DeviceRepository defines the interface for device operations. The sync
// engine only reads device descriptors and advances the page watermark;
// device CRUD belongs to the surrounding application.
type DeviceRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.Device, error)
	FindSyncable(ctx context.Context) ([]*entity.Device, error)
	UpdateWatermark(ctx context.Context, deviceID uint, pageAddress int64) error
}
