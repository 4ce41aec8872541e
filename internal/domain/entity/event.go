// internal/domain/entity/event.go
package entity

import (
	"fmt"
	"time"
)

// Bitfield packs the logger state flags of one event into a single integer.
type Bitfield uint32

// Logger event bit positions. Bit 31 is a control marker written by the
// device during a flush-and-link operation and is not a flight state.
const (
	BitAnyEngStart  uint = 0
	BitTakeoff      uint = 1
	BitLanding      uint = 2
	BitLastEngStop  uint = 3
	BitFlying       uint = 4
	BitEngRun1      uint = 5
	BitEngRun2      uint = 6
	BitAlarm        uint = 7
	BitFlushAndLink uint = 31
)

var bitNames = map[uint]string{
	BitAnyEngStart:  "AnyEngStart",
	BitTakeoff:      "Takeoff",
	BitLanding:      "Landing",
	BitLastEngStop:  "LastEngStop",
	BitFlying:       "Flying",
	BitEngRun1:      "EngRun1",
	BitEngRun2:      "EngRun2",
	BitAlarm:        "Alarm",
	BitFlushAndLink: "FlushAndLink",
}

// Has reports whether the given bit position is set.
func (b Bitfield) Has(bit uint) bool {
	return b&(1<<bit) != 0
}

// With returns a copy of the bitfield with the given bit set.
func (b Bitfield) With(bit uint) Bitfield {
	return b | (1 << bit)
}

// ActiveNames returns the names of all set bits in position order.
func (b Bitfield) ActiveNames() []string {
	var names []string
	for bit := uint(0); bit < 32; bit++ {
		if !b.Has(bit) {
			continue
		}
		if name, ok := bitNames[bit]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Event is one immutable telemetry record from a device logger page.
// PageAddress increases monotonically per device and never repeats.
type Event struct {
	ID          uint
	DeviceID    uint
	PageAddress int64
	TotalTime   int64 // elapsed time in this logger page, milliseconds
	Bitfield    Bitfield
	DateTime    *time.Time
	Message     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Has reports whether the given logger bit is set on this event.
func (e *Event) Has(bit uint) bool {
	return e.Bitfield.Has(bit)
}

// FormatLogTime renders TotalTime (milliseconds) as an H:MM:SS string.
func (e *Event) FormatLogTime() string {
	totalSeconds := e.TotalTime / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}
