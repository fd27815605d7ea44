package integra

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
)

// nameSize is the length of object names as stored in the panel.
const nameSize = 16

type nameResolver interface {
	ObjectName(ctx context.Context, typ ObjectType, number int) (ObjectName, error)
}

// decodeEnv is what decoders may use besides the response itself.
type decodeEnv struct {
	names   nameResolver
	catalog EventCatalog
	log     *log.Logger
}

type decoder func(ctx context.Context, env decodeEnv, resp Response) (Result, error)

// dispatcher routes responses to decoders by opcode. It is built once and
// never changed afterwards.
type dispatcher map[byte]decoder

func newDispatcher() dispatcher {
	d := dispatcher{
		OpDoorsOpened:     decodeDoors,
		OpDoorsOpenedLong: decodeDoors,
		OpSystemStatus:    decodeSystemStatus,
		OpModuleVersion:   decodeModuleVersion,
		OpPanelVersion:    decodePanelVersion,
		OpReadEvent:       decodeEvent,
		OpObjectName:      decodeObjectName,
		OpCommandResult:   decodeCommandResult,
	}
	for op := OpZonesViolation; op <= OpZonesLongViolationTrouble; op++ {
		d[op] = decodeZones
	}
	return d
}

func (d dispatcher) dispatch(ctx context.Context, env decodeEnv, resp Response) (Result, error) {
	dec, ok := d[resp.Opcode]
	if !ok {
		return nil, fmt.Errorf("%w: %02X", ErrUnknownOpcode, resp.Opcode)
	}
	return dec(ctx, env, resp)
}

func shortPayload(resp Response, want int) error {
	return fmt.Errorf(
		"%w: %02X needs %d data bytes, got %d",
		ErrInvalidPayload,
		resp.Opcode,
		want,
		len(resp.Data),
	)
}

// reply layout: type, number, function, name.
func decodeObjectName(_ context.Context, _ decodeEnv, resp Response) (Result, error) {
	data := resp.Data
	if len(data) < 3 {
		return nil, shortPayload(resp, 3)
	}

	name := ObjectName{
		Type:     ObjectType(data[0]),
		Number:   int(data[1]),
		Function: data[2],
	}
	// 256 is sent as 0 by INTEGRA 256 PLUS.
	if name.Number == 0 && name.Type != ObjectPartition {
		name.Number = 256
	}

	raw := data[3:]
	if name.Type == ObjectZoneWithPartition && len(raw) > nameSize {
		name.Partition = int(raw[nameSize])
		raw = raw[:nameSize]
	}
	name.Name = strings.TrimRightFunc(string(raw), unicode.IsSpace)
	return name, nil
}

func decodeZones(ctx context.Context, env decodeEnv, resp Response) (Result, error) {
	numbers, err := zoneBitmap(resp)
	if err != nil {
		return nil, err
	}

	zones := make(ZoneSet, len(numbers))
	for _, number := range numbers {
		name, err := env.names.ObjectName(ctx, ObjectZoneWithPartition, number)
		if err != nil {
			return nil, fmt.Errorf("could not read name of zone %d: %w", number, err)
		}
		zones[number] = name.Name
	}
	env.log.Debug("zones", "state", ZoneState(resp.Opcode), "zones", numbers)
	return zones, nil
}

// zoneBitmap returns the numbers of the zones whose bit is set.
func zoneBitmap(resp Response) ([]int, error) {
	if len(resp.Data) != 16 && len(resp.Data) != 32 {
		return nil, fmt.Errorf(
			"%w: zone bitmap must have 16 or 32 bytes, got %d",
			ErrInvalidPayload,
			len(resp.Data),
		)
	}

	var zones []int
	for i, octet := range resp.Data {
		for j := 0; j < 8; j++ {
			if octet&(1<<j) > 0 {
				zones = append(zones, 8*i+j+1)
			}
		}
	}
	return zones, nil
}

func decodeDoors(_ context.Context, _ decodeEnv, resp Response) (Result, error) {
	return Doors{
		Long: resp.Opcode == OpDoorsOpenedLong,
		Hex:  hex.EncodeToString(resp.Data),
	}, nil
}

var weekdays = [...]string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

var systemTypes = map[byte]string{
	0: "INTEGRA 24",
	1: "INTEGRA 32",
	2: "INTEGRA 64 or 64 PLUS",
	3: "INTEGRA 128 or 128 PLUS",
	4: "INTEGRA 128-WRL",
	8: "INTEGRA 256 PLUS",
}

// reply layout: 7 BCD bytes YYYYMMDDhhmmss, then two flag bytes.
func decodeSystemStatus(_ context.Context, env decodeEnv, resp Response) (Result, error) {
	data := resp.Data
	if len(data) < 9 {
		return nil, shortPayload(resp, 9)
	}

	clock := hex.EncodeToString(data[:7])
	t, err := time.ParseInLocation("20060102150405", clock, time.Local)
	if err != nil {
		env.log.Warn("invalid panel clock", "clock", clock, "err", err)
		t = time.Time{}
	}

	data1, data2 := data[7], data[8]
	status := SystemStatus{
		Type:           unknownType(systemTypes, data2&0x0f),
		Time:           t,
		Clock:          clock,
		Weekday:        weekday(data1 & 0x07),
		ServiceMode:    data1&0x80 > 0,
		Troubles:       data1&0x40 > 0,
		ACU100:         data2&0x80 > 0,
		INTRX:          data2&0x40 > 0,
		TroublesMemory: data2&0x20 > 0,
		Grade3:         data2&0x10 > 0,
	}
	env.log.Debug("system status", "type", status.Type, "time", status.DateTime())
	return status, nil
}

func weekday(b byte) string {
	if int(b) >= len(weekdays) {
		return "unknown"
	}
	return weekdays[b]
}

func unknownType(names map[byte]string, id byte) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("unknown (id %d)", id)
}

// version formats 11 ASCII digits, e.g. "12320120527", as "1.23 2012-05-27".
func version(b []byte) string {
	s := string(b)
	return fmt.Sprintf("%s.%s %s-%s-%s", s[0:1], s[1:3], s[3:7], s[7:9], s[9:11])
}

func decodeModuleVersion(_ context.Context, env decodeEnv, resp Response) (Result, error) {
	data := resp.Data
	if len(data) < 12 {
		return nil, shortPayload(resp, 12)
	}
	v := ModuleVersion{
		Version:       version(data[:11]),
		Serves32Bytes: data[11]&0x01 > 0,
	}
	env.log.Debug("module version", "version", v.Version, "32 bytes", v.Serves32Bytes)
	return v, nil
}

type panelType struct {
	name    string
	zones   int
	outputs int
}

var panelTypes = map[byte]panelType{
	0:   {"INTEGRA 24", 24, 20},
	1:   {"INTEGRA 32", 32, 32},
	2:   {"INTEGRA 64", 64, 64},
	3:   {"INTEGRA 128", 128, 128},
	4:   {"INTEGRA 128-WRL SIM300", 128, 128},
	132: {"INTEGRA 128-WRL LEON", 128, 128},
	66:  {"INTEGRA 64 PLUS", 64, 64},
	67:  {"INTEGRA 128 PLUS", 128, 128},
	72:  {"INTEGRA 256 PLUS", 256, 256},
}

// reply layout: type, 11 version digits, language, stored in flash.
func decodePanelVersion(_ context.Context, env decodeEnv, resp Response) (Result, error) {
	data := resp.Data
	if len(data) < 14 {
		return nil, shortPayload(resp, 14)
	}

	v := PanelVersion{
		TypeID:   data[0],
		Type:     fmt.Sprintf("unknown (id %d)", data[0]),
		Version:  version(data[1:12]),
		Language: data[12],
		Flashed:  data[13] == 0xff,
	}
	if t, ok := panelTypes[data[0]]; ok {
		v.Type = t.name
		v.Zones = t.zones
		v.Outputs = t.outputs
	}
	env.log.Debug("panel version", "type", v.Type, "zones", v.ZoneCount(), "version", v.Version)
	return v, nil
}

func decodeCommandResult(_ context.Context, env decodeEnv, resp Response) (Result, error) {
	if len(resp.Data) < 1 {
		return nil, shortPayload(resp, 1)
	}
	code := ResultCode(resp.Data[0])
	if _, ok := resultCodes[code]; !ok {
		return nil, fmt.Errorf("%w: %02X", ErrUnsupportedResultCode, resp.Data[0])
	}
	if code != ResultOK {
		env.log.Debug("command result", "code", code)
	}
	return CommandResult{
		OK:   code == ResultOK,
		Code: code,
	}, nil
}
