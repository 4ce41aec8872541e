package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBitfield(t *testing.T) {
	var b Bitfield
	b = b.With(BitAnyEngStart).With(BitTakeoff)

	assert.True(t, b.Has(BitAnyEngStart))
	assert.True(t, b.Has(BitTakeoff))
	assert.False(t, b.Has(BitLanding))
	assert.Equal(t, []string{"AnyEngStart", "Takeoff"}, b.ActiveNames())
}

func TestBitfieldControlMarker(t *testing.T) {
	b := Bitfield(0).With(BitFlushAndLink)

	assert.True(t, b.Has(BitFlushAndLink))
	assert.Equal(t, []string{"FlushAndLink"}, b.ActiveNames())
}

func TestFormatLogTime(t *testing.T) {
	cases := map[int64]string{
		0:        "0:00:00",
		61000:    "0:01:01",
		3600000:  "1:00:00",
		45296000: "12:34:56",
	}

	for millis, want := range cases {
		e := &Event{TotalTime: millis}
		assert.Equal(t, want, e.FormatLogTime())
	}
}

func TestDeviceWatermark(t *testing.T) {
	d := &Device{}
	assert.Equal(t, int64(-1), d.Watermark())

	page := int64(128)
	d.LastPageAddress = &page
	assert.Equal(t, int64(128), d.Watermark())
}

func TestDeviceSyncable(t *testing.T) {
	assert.True(t, (&Device{IsActive: true, ExternalDeviceID: "abc"}).Syncable())
	assert.False(t, (&Device{IsActive: false, ExternalDeviceID: "abc"}).Syncable())
	assert.False(t, (&Device{IsActive: true}).Syncable())
}

func TestLogbookEntryDerivedFields(t *testing.T) {
	takeoff := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	e := &LogbookEntry{
		TakeoffAt: takeoff,
		LandingAt: takeoff.Add(90 * time.Minute),
	}

	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), e.Date())
	assert.Equal(t, 90*time.Minute, e.Duration())
	assert.Equal(t, 1.5, e.CalculatedFlightTime())
}

func TestSyncReportAdd(t *testing.T) {
	report := &SyncReport{}

	report.Add(&DeviceSyncResult{DeviceID: 1, NewEvents: 4, NewEntries: 1})
	report.Add(&DeviceSyncResult{DeviceID: 2, Errors: []string{"fetch failed"}})

	assert.Equal(t, 1, report.SyncedDevices)
	assert.Equal(t, 4, report.NewEvents)
	assert.Equal(t, 1, report.NewEntries)
	assert.Len(t, report.Devices, 2)
	assert.Len(t, report.Errors, 1)
}
