package integra

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
)

// EventIndex identifies a record of the panel event log.
type EventIndex [3]byte

// LatestEvent asks the panel for the most recent event.
var LatestEvent = EventIndex{0xff, 0xff, 0xff}

// ParseEventIndex parses a 6 hex digits index, e.g. "FFFFFF".
func ParseEventIndex(s string) (EventIndex, error) {
	var idx EventIndex
	b, err := hex.DecodeString(s)
	if err != nil {
		return idx, fmt.Errorf("invalid event index %q: %w", s, err)
	}
	if len(b) != len(idx) {
		return idx, fmt.Errorf("invalid event index %q: must have %d bytes", s, len(idx))
	}
	copy(idx[:], b)
	return idx, nil
}

func (i EventIndex) String() string {
	return strings.ToUpper(hex.EncodeToString(i[:]))
}

// MonitoringStatus is the state of an event regarding the monitoring
// station.
type MonitoringStatus byte

const (
	MonitoringNew MonitoringStatus = iota
	MonitoringSent
	MonitoringReserved
	MonitoringNotMonitored
)

func (s MonitoringStatus) String() string {
	switch s {
	case MonitoringNew:
		return "new event, not processed by monitoring service"
	case MonitoringSent:
		return "event sent"
	case MonitoringReserved:
		return "should not occur"
	case MonitoringNotMonitored:
		return "event not monitored"
	default:
		return "wrong code"
	}
}

type EventClass byte

const (
	ClassZoneTamperAlarms EventClass = iota
	ClassPartitionExpanderAlarms
	ClassArming
	ClassBypasses
	ClassAccessControl
	ClassTroubles
	ClassUserFunctions
	ClassSystemEvents
)

func (c EventClass) String() string {
	switch c {
	case ClassZoneTamperAlarms:
		return "zone and tamper alarms"
	case ClassPartitionExpanderAlarms:
		return "partition and expander alarms"
	case ClassArming:
		return "arming, disarming, alarm clearing"
	case ClassBypasses:
		return "zone bypasses and unbypasses"
	case ClassAccessControl:
		return "access control"
	case ClassTroubles:
		return "troubles"
	case ClassUserFunctions:
		return "user functions"
	case ClassSystemEvents:
		return "system events"
	default:
		return "wrong event code"
	}
}

// EventRecord is one entry of the panel event log.
type EventRecord struct {
	// Year is the year of the event modulo 4.
	Year         int
	NotEmpty     bool
	Present      bool
	S1, S2       MonitoringStatus
	Class        EventClass
	Day, Month   int
	Hour, Minute int
	Partition    int
	Restore      bool
	Code         int
	// Description is nil when the catalog does not know the event.
	Description *EventDescription
	Source      int
	Object      int
	UserControl int
	Index       EventIndex
}

// Date renders the event day as "DD/MM".
func (e EventRecord) Date() string {
	return fmt.Sprintf("%02d/%02d", e.Day, e.Month)
}

// Time renders the event time as "hh:mm".
func (e EventRecord) Time() string {
	return fmt.Sprintf("%02d:%02d", e.Hour, e.Minute)
}

// Text is the catalog description, or an empty string.
func (e EventRecord) Text() string {
	if e.Description == nil {
		return ""
	}
	return e.Description.Text
}

// ZoneOrOutput returns the source number of a zone or output event on an
// INTEGRA 256 PLUS, where user control 1 selects the upper 128.
func (e EventRecord) ZoneOrOutput() int {
	if e.UserControl == 1 {
		return e.Source + 128
	}
	return e.Source
}

const eventRecordSize = 8

// reply layout: 8 record bytes, then the 3 bytes index of the record.
func decodeEvent(_ context.Context, env decodeEnv, resp Response) (Result, error) {
	data := resp.Data
	if len(data) < eventRecordSize+len(EventIndex{}) {
		return nil, shortPayload(resp, eventRecordSize+len(EventIndex{}))
	}

	b1, b2, b3, b4, b5, b6, b7, b8 := data[0], data[1], data[2], data[3], data[4], data[5], data[6], data[7]

	// the lowest minute bit is read from the month byte.
	minutes := int(b3&0x0f)<<8 | int(b4&0xfe) | int(b3&0x01)

	ev := EventRecord{
		Year:        int(b1 >> 6),
		NotEmpty:    b1&0x20 > 0,
		Present:     b1&0x10 > 0,
		S2:          MonitoringStatus(b1 >> 2 & 0x03),
		S1:          MonitoringStatus(b1 & 0x03),
		Class:       EventClass(b2 >> 5),
		Day:         int(b2 & 0x1f),
		Month:       int(b3 >> 4),
		Hour:        minutes / 60,
		Minute:      minutes % 60,
		Partition:   int(b5 >> 3),
		Restore:     b5&0x04 > 0,
		Code:        int(b5&0x03)<<8 | int(b6),
		Source:      int(b7),
		Object:      int(b8 >> 5),
		UserControl: int(b8 & 0x1f),
	}
	copy(ev.Index[:], data[eventRecordSize:])

	if env.catalog != nil {
		if d, ok := env.catalog.Lookup(ev.Code, ev.Restore); ok {
			ev.Description = &d
		}
	}

	env.log.Debug(
		"event",
		"index", ev.Index,
		"class", ev.Class,
		"date", ev.Date(),
		"time", ev.Time(),
		"partition", ev.Partition,
		"code", ev.Code,
		"restore", ev.Restore,
		"text", ev.Text(),
		"source", ev.Source,
	)
	return ev, nil
}
