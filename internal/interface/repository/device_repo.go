package repository

import (
	"context"
	"time"

	"logsync-service/internal/domain/entity"
	"logsync-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormDeviceRepository implements the DeviceRepository interface
type GormDeviceRepository struct {
	db *gorm.DB
}

// NewGormDeviceRepository creates a new GORM device repository
func NewGormDeviceRepository(db *gorm.DB) repository.DeviceRepository {
	return &GormDeviceRepository{
		db: db,
	}
}

// Devices GORM model for database mapping
type Devices struct {
	ID               uint   `gorm:"primaryKey"`
	Name             string `gorm:"column:name"`
	DeviceType       string `gorm:"column:device_type"`
	Model            string `gorm:"column:model"`
	SerialNumber     string `gorm:"column:serial_number"`
	Registration     string `gorm:"column:registration"`
	ExternalDeviceID string `gorm:"column:external_device_id;index"`
	LastPageAddress  *int64 `gorm:"column:last_page_address"`
	IsActive         bool   `gorm:"column:is_active;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName overrides the default table name
func (Devices) TableName() string {
	return "devices"
}

// FindByID finds a device by its primary key
func (r *GormDeviceRepository) FindByID(ctx context.Context, id uint) (*entity.Device, error) {
	var device Devices
	result := r.db.WithContext(ctx).First(&device, id)

	if result.Error != nil {
		return nil, result.Error
	}

	return toDeviceEntity(&device), nil
}

// FindSyncable returns all active devices that carry an external gateway id
func (r *GormDeviceRepository) FindSyncable(ctx context.Context) ([]*entity.Device, error) {
	var devices []Devices
	result := r.db.WithContext(ctx).
		Where("is_active = ? AND external_device_id IS NOT NULL AND external_device_id <> ''", true).
		Find(&devices)

	if result.Error != nil {
		return nil, result.Error
	}

	entities := make([]*entity.Device, 0, len(devices))
	for i := range devices {
		entities = append(entities, toDeviceEntity(&devices[i]))
	}
	return entities, nil
}

// UpdateWatermark advances the device's last known page address. The
// watermark is written here only, once per successful sync transaction.
func (r *GormDeviceRepository) UpdateWatermark(ctx context.Context, deviceID uint, pageAddress int64) error {
	result := r.db.WithContext(ctx).
		Model(&Devices{}).
		Where("id = ?", deviceID).
		Update("last_page_address", pageAddress)
	return result.Error
}

// toDeviceEntity converts the GORM model to the domain entity
func toDeviceEntity(device *Devices) *entity.Device {
	return &entity.Device{
		ID:               device.ID,
		Name:             device.Name,
		DeviceType:       device.DeviceType,
		Model:            device.Model,
		SerialNumber:     device.SerialNumber,
		Registration:     device.Registration,
		ExternalDeviceID: device.ExternalDeviceID,
		LastPageAddress:  device.LastPageAddress,
		IsActive:         device.IsActive,
		CreatedAt:        device.CreatedAt,
		UpdatedAt:        device.UpdatedAt,
	}
}
