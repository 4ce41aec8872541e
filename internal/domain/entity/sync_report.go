// internal/domain/entity/sync_report.go
package entity

import (
	"time"
)

// RawRecord is one loosely-typed record as returned by the gateway RPC.
type RawRecord map[string]interface{}

// DeviceSyncResult captures the outcome of one device's sync cycle.
type DeviceSyncResult struct {
	DeviceID         uint        `bson:"deviceId"`
	ExternalDeviceID string      `bson:"externalDeviceId"`
	FetchedRecords   int         `bson:"fetchedRecords"`
	NewEvents        int         `bson:"newEvents"`
	SkippedRecords   int         `bson:"skippedRecords"`
	NewEntries       int         `bson:"newEntries"`
	Errors           []string    `bson:"errors,omitempty"`
	RawRecords       []RawRecord `bson:"rawRecords,omitempty"`
}

// Failed reports whether the device cycle recorded any error.
func (r *DeviceSyncResult) Failed() bool {
	return len(r.Errors) > 0
}

// SyncReport is the archived outcome of one full sync cycle across all
// devices, kept for troubleshooting.
type SyncReport struct {
	ID            string             `bson:"_id,omitempty"`
	StartedAt     time.Time          `bson:"startedAt"`
	FinishedAt    time.Time          `bson:"finishedAt"`
	TotalDevices  int                `bson:"totalDevices"`
	SyncedDevices int                `bson:"syncedDevices"`
	NewEvents     int                `bson:"newEvents"`
	NewEntries    int                `bson:"newEntries"`
	Devices       []DeviceSyncResult `bson:"devices,omitempty"`
	Errors        []string           `bson:"errors,omitempty"`
}

// Add folds one device result into the report totals.
func (r *SyncReport) Add(res *DeviceSyncResult) {
	r.Devices = append(r.Devices, *res)
	if !res.Failed() {
		r.SyncedDevices++
	}
	r.NewEvents += res.NewEvents
	r.NewEntries += res.NewEntries
	r.Errors = append(r.Errors, res.Errors...)
}
