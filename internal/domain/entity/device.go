// internal/domain/entity/device.go
package entity

import (
	"time"
)

// Device represents an aircraft device whose onboard logger is synced
// from the remote gateway.
type Device struct {
	ID               uint
	Name             string
	DeviceType       string
	Model            string
	SerialNumber     string
	Registration     string
	ExternalDeviceID string
	LastPageAddress  *int64
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Watermark returns the highest page address already ingested for this
// device, or -1 when nothing has been stored yet.
func (d *Device) Watermark() int64 {
	if d.LastPageAddress == nil {
		return -1
	}
	return *d.LastPageAddress
}

// Syncable reports whether the device participates in gateway sync.
func (d *Device) Syncable() bool {
	return d.IsActive && d.ExternalDeviceID != ""
}
