package integra

import (
	"fmt"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Opcodes with a known decoder.
const (
	OpZonesViolation            byte = 0x00
	OpZonesTamper               byte = 0x01
	OpZonesAlarm                byte = 0x02
	OpZonesTamperAlarm          byte = 0x03
	OpZonesAlarmMemory          byte = 0x04
	OpZonesTamperAlarmMemory    byte = 0x05
	OpZonesBypass               byte = 0x06
	OpZonesNoViolationTrouble   byte = 0x07
	OpZonesLongViolationTrouble byte = 0x08
	OpDoorsOpened               byte = 0x18
	OpDoorsOpenedLong           byte = 0x19
	OpSystemStatus              byte = 0x1a
	OpModuleVersion             byte = 0x7c
	OpPanelVersion              byte = 0x7e
	OpReadEvent                 byte = 0x8c
	OpObjectName                byte = 0xee
	OpCommandResult             byte = 0xef
)

// ObjectType selects what kind of object a name is read for.
type ObjectType byte

const (
	ObjectPartition         ObjectType = 0x00
	ObjectZone              ObjectType = 0x01
	ObjectUser              ObjectType = 0x02
	ObjectExpander          ObjectType = 0x03
	ObjectOutput            ObjectType = 0x04
	ObjectZoneWithPartition ObjectType = 0x05
)

func (t ObjectType) String() string {
	switch t {
	case ObjectPartition:
		return "partition"
	case ObjectZone:
		return "zone"
	case ObjectUser:
		return "user"
	case ObjectExpander:
		return "expander"
	case ObjectOutput:
		return "output"
	case ObjectZoneWithPartition:
		return "zone+partition"
	default:
		return fmt.Sprintf("object(%d)", byte(t))
	}
}

// ZoneState is one of the zone bitmaps the panel can report.
type ZoneState byte

const (
	ZonesViolation            = ZoneState(OpZonesViolation)
	ZonesTamper               = ZoneState(OpZonesTamper)
	ZonesAlarm                = ZoneState(OpZonesAlarm)
	ZonesTamperAlarm          = ZoneState(OpZonesTamperAlarm)
	ZonesAlarmMemory          = ZoneState(OpZonesAlarmMemory)
	ZonesTamperAlarmMemory    = ZoneState(OpZonesTamperAlarmMemory)
	ZonesBypass               = ZoneState(OpZonesBypass)
	ZonesNoViolationTrouble   = ZoneState(OpZonesNoViolationTrouble)
	ZonesLongViolationTrouble = ZoneState(OpZonesLongViolationTrouble)
)

func (s ZoneState) String() string {
	switch s {
	case ZonesViolation:
		return "violation"
	case ZonesTamper:
		return "tamper"
	case ZonesAlarm:
		return "alarm"
	case ZonesTamperAlarm:
		return "tamper alarm"
	case ZonesAlarmMemory:
		return "alarm memory"
	case ZonesTamperAlarmMemory:
		return "tamper alarm memory"
	case ZonesBypass:
		return "bypass"
	case ZonesNoViolationTrouble:
		return "no violation trouble"
	case ZonesLongViolationTrouble:
		return "long violation trouble"
	default:
		return "unknown"
	}
}

// Result is the decoded value of a response.
type Result interface {
	result()
}

type ObjectName struct {
	Type     ObjectType
	Number   int
	Function byte
	Name     string
	// Partition is only set for ObjectZoneWithPartition replies.
	Partition int
}

// ZoneSet maps zone numbers to their names.
type ZoneSet map[int]string

// Numbers returns the zone numbers in ascending order.
func (z ZoneSet) Numbers() []int {
	numbers := maps.Keys(z)
	slices.Sort(numbers)
	return numbers
}

// Doors is the opened doors report. Its layout is not decoded.
type Doors struct {
	Long bool
	Hex  string
}

type SystemStatus struct {
	Type string
	// Time is zero when the panel clock could not be parsed, Clock keeps
	// the digits as sent.
	Time           time.Time
	Clock          string
	Weekday        string
	ServiceMode    bool
	Troubles       bool
	ACU100         bool
	INTRX          bool
	TroublesMemory bool
	Grade3         bool
}

// DateTime renders the panel clock as "2006-01-02 Monday 15:04:05".
func (s SystemStatus) DateTime() string {
	if s.Time.IsZero() {
		return fmt.Sprintf("%s %s", s.Clock, s.Weekday)
	}
	return fmt.Sprintf(
		"%s %s %s",
		s.Time.Format(time.DateOnly),
		s.Weekday,
		s.Time.Format(time.TimeOnly),
	)
}

type ModuleVersion struct {
	Version string
	// Serves32Bytes is set when the module can answer with 32 bytes long
	// zone and output bitmaps.
	Serves32Bytes bool
}

type PanelVersion struct {
	TypeID   byte
	Type     string
	Zones    int // 0 when the type is unknown
	Outputs  int // 0 when the type is unknown
	Version  string
	Language byte
	Flashed  bool
}

func (p PanelVersion) ZoneCount() string   { return countString(p.Zones) }
func (p PanelVersion) OutputCount() string { return countString(p.Outputs) }

func countString(n int) string {
	if n == 0 {
		return "?"
	}
	return fmt.Sprint(n)
}

type ResultCode byte

const (
	ResultOK                  ResultCode = 0x00
	ResultUserCodeNotFound    ResultCode = 0x01
	ResultNoAccess            ResultCode = 0x02
	ResultUserNotExist        ResultCode = 0x03
	ResultUserAlreadyExists   ResultCode = 0x04
	ResultCodeConflict        ResultCode = 0x05
	ResultPhoneCodeExists     ResultCode = 0x06
	ResultCodeUnchanged       ResultCode = 0x07
	ResultOtherError          ResultCode = 0x08
	ResultCannotArmForceAvail ResultCode = 0x11
	ResultCannotArm           ResultCode = 0x12
	ResultAccepted            ResultCode = 0xff
)

var resultCodes = map[ResultCode]string{
	ResultOK:                  "ok",
	ResultUserCodeNotFound:    "requested user code not found",
	ResultNoAccess:            "no access",
	ResultUserNotExist:        "selected user does not exist",
	ResultUserAlreadyExists:   "selected user already exists",
	ResultCodeConflict:        "wrong code or code already exists",
	ResultPhoneCodeExists:     "telephone code already exists",
	ResultCodeUnchanged:       "changed code is the same",
	ResultOtherError:          "other error",
	ResultCannotArmForceAvail: "can not arm, but can use force arm",
	ResultCannotArm:           "can not arm",
	ResultAccepted:            "command accepted, will be processed",
}

func (c ResultCode) String() string {
	if s, ok := resultCodes[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown result code %02X", byte(c))
}

type CommandResult struct {
	OK   bool
	Code ResultCode
}

func (r CommandResult) String() string {
	return r.Code.String()
}

func (ObjectName) result()    {}
func (ZoneSet) result()       {}
func (Doors) result()         {}
func (SystemStatus) result()  {}
func (ModuleVersion) result() {}
func (PanelVersion) result()  {}
func (CommandResult) result() {}
func (EventRecord) result()   {}
