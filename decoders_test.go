package integra

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type namesFunc func(ctx context.Context, typ ObjectType, number int) (ObjectName, error)

func (f namesFunc) ObjectName(ctx context.Context, typ ObjectType, number int) (ObjectName, error) {
	return f(ctx, typ, number)
}

func testEnv(t *testing.T) decodeEnv {
	t.Helper()
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	return decodeEnv{
		names: namesFunc(func(_ context.Context, typ ObjectType, number int) (ObjectName, error) {
			return ObjectName{Type: typ, Number: number, Name: fmt.Sprintf("Zone %d", number)}, nil
		}),
		catalog: catalog,
		log:     NewLogger(io.Discard, false, false),
	}
}

func decode(t *testing.T, env decodeEnv, op byte, data ...byte) (Result, error) {
	t.Helper()
	return newDispatcher().dispatch(context.Background(), env, Response{Opcode: op, Data: data})
}

func bitmap(size int, bytes ...byte) []byte {
	b := make([]byte, size)
	copy(b, bytes)
	return b
}

func name16(s string) []byte {
	return []byte(fmt.Sprintf("%-16s", s))
}

func TestDecodeZones(t *testing.T) {
	env := testEnv(t)

	t.Run("16 bytes", func(t *testing.T) {
		res, err := decode(t, env, OpZonesViolation, bitmap(16, 0x05, 0x20)...)
		require.NoError(t, err)
		require.Equal(t, ZoneSet{
			1:  "Zone 1",
			3:  "Zone 3",
			14: "Zone 14",
		}, res)
		require.Equal(t, []int{1, 3, 14}, res.(ZoneSet).Numbers())
	})

	t.Run("32 bytes", func(t *testing.T) {
		data := bitmap(32)
		data[31] = 0x80
		res, err := decode(t, env, OpZonesBypass, data...)
		require.NoError(t, err)
		require.Equal(t, ZoneSet{256: "Zone 256"}, res)
	})

	t.Run("none", func(t *testing.T) {
		res, err := decode(t, env, OpZonesTamper, bitmap(16)...)
		require.NoError(t, err)
		require.Empty(t, res)
	})

	t.Run("invalid size", func(t *testing.T) {
		_, err := decode(t, env, OpZonesAlarm, 0x01, 0x02)
		require.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("name lookup fails", func(t *testing.T) {
		env := env
		env.names = namesFunc(func(context.Context, ObjectType, int) (ObjectName, error) {
			return ObjectName{}, ErrConnection
		})
		_, err := decode(t, env, OpZonesViolation, bitmap(16, 0x01)...)
		require.ErrorIs(t, err, ErrConnection)
	})

	t.Run("asks for zone with partition names", func(t *testing.T) {
		var asked []ObjectType
		env := env
		env.names = namesFunc(func(_ context.Context, typ ObjectType, number int) (ObjectName, error) {
			asked = append(asked, typ)
			return ObjectName{}, nil
		})
		_, err := decode(t, env, OpZonesViolation, bitmap(16, 0x03)...)
		require.NoError(t, err)
		require.Equal(t, []ObjectType{ObjectZoneWithPartition, ObjectZoneWithPartition}, asked)
	})
}

func TestDecodeObjectName(t *testing.T) {
	env := testEnv(t)

	t.Run("zone with partition", func(t *testing.T) {
		data := append([]byte{0x05, 0x0e, 0x01}, name16("Kitchen")...)
		data = append(data, 0x02)
		res, err := decode(t, env, OpObjectName, data...)
		require.NoError(t, err)
		require.Equal(t, ObjectName{
			Type:      ObjectZoneWithPartition,
			Number:    14,
			Function:  0x01,
			Name:      "Kitchen",
			Partition: 2,
		}, res)
	})

	t.Run("partition", func(t *testing.T) {
		data := append([]byte{0x00, 0x01, 0x00}, name16("House")...)
		res, err := decode(t, env, OpObjectName, data...)
		require.NoError(t, err)
		require.Equal(t, ObjectName{
			Type:   ObjectPartition,
			Number: 1,
			Name:   "House",
		}, res)
	})

	t.Run("zone 256", func(t *testing.T) {
		data := append([]byte{0x01, 0x00, 0x01}, name16("Garage")...)
		res, err := decode(t, env, OpObjectName, data...)
		require.NoError(t, err)
		require.Equal(t, 256, res.(ObjectName).Number)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := decode(t, env, OpObjectName, 0x01)
		require.ErrorIs(t, err, ErrInvalidPayload)
	})
}

func TestDecodeDoors(t *testing.T) {
	res, err := decode(t, testEnv(t), OpDoorsOpenedLong, 0x01, 0xab)
	require.NoError(t, err)
	require.Equal(t, Doors{Long: true, Hex: "01ab"}, res)
}

func TestDecodeSystemStatus(t *testing.T) {
	env := testEnv(t)

	t.Run("valid", func(t *testing.T) {
		res, err := decode(t, env, OpSystemStatus, 0x20, 0x24, 0x03, 0x15, 0x10, 0x30, 0x45, 0x44, 0x93)
		require.NoError(t, err)
		status := res.(SystemStatus)
		require.Equal(t, "INTEGRA 128 or 128 PLUS", status.Type)
		require.Equal(t, time.Date(2024, time.March, 15, 10, 30, 45, 0, time.Local), status.Time)
		require.Equal(t, "Friday", status.Weekday)
		require.Equal(t, "20240315103045", status.Clock)
		require.Equal(t, "2024-03-15 Friday 10:30:45", status.DateTime())
		require.False(t, status.ServiceMode)
		require.True(t, status.Troubles)
		require.True(t, status.ACU100)
		require.False(t, status.INTRX)
		require.False(t, status.TroublesMemory)
		require.True(t, status.Grade3)
	})

	t.Run("flags and unknown type", func(t *testing.T) {
		res, err := decode(t, env, OpSystemStatus, 0x20, 0x12, 0x05, 0x27, 0x23, 0x59, 0x59, 0x87, 0x65)
		require.NoError(t, err)
		status := res.(SystemStatus)
		require.Equal(t, "unknown (id 5)", status.Type)
		require.Equal(t, "unknown", status.Weekday)
		require.True(t, status.ServiceMode)
		require.True(t, status.INTRX)
		require.True(t, status.TroublesMemory)
		require.False(t, status.ACU100)
	})

	t.Run("invalid clock keeps the flags", func(t *testing.T) {
		res, err := decode(t, env, OpSystemStatus, 0x20, 0x24, 0x13, 0x15, 0x10, 0x30, 0x45, 0xc4, 0x93)
		require.NoError(t, err)
		status := res.(SystemStatus)
		require.True(t, status.Time.IsZero())
		require.Equal(t, "20241315103045", status.Clock)
		require.Equal(t, "20241315103045 Friday", status.DateTime())
		require.True(t, status.ServiceMode)
		require.True(t, status.Troubles)
		require.True(t, status.Grade3)
		require.Equal(t, "INTEGRA 128 or 128 PLUS", status.Type)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := decode(t, env, OpSystemStatus, 0x20, 0x24)
		require.ErrorIs(t, err, ErrInvalidPayload)
	})
}

func TestDecodeModuleVersion(t *testing.T) {
	res, err := decode(t, testEnv(t), OpModuleVersion, append([]byte("12320120527"), 0x01)...)
	require.NoError(t, err)
	require.Equal(t, ModuleVersion{
		Version:       "1.23 2012-05-27",
		Serves32Bytes: true,
	}, res)
}

func TestDecodePanelVersion(t *testing.T) {
	env := testEnv(t)

	t.Run("known", func(t *testing.T) {
		data := append([]byte{72}, []byte("11920160714")...)
		data = append(data, 0x00, 0xff)
		res, err := decode(t, env, OpPanelVersion, data...)
		require.NoError(t, err)
		require.Equal(t, PanelVersion{
			TypeID:   72,
			Type:     "INTEGRA 256 PLUS",
			Zones:    256,
			Outputs:  256,
			Version:  "1.19 2016-07-14",
			Language: 0,
			Flashed:  true,
		}, res)
	})

	t.Run("unknown", func(t *testing.T) {
		data := append([]byte{9}, []byte("10020100101")...)
		data = append(data, 0x01, 0x00)
		res, err := decode(t, env, OpPanelVersion, data...)
		require.NoError(t, err)
		v := res.(PanelVersion)
		require.Equal(t, "unknown (id 9)", v.Type)
		require.Equal(t, "?", v.ZoneCount())
		require.Equal(t, "?", v.OutputCount())
		require.False(t, v.Flashed)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := decode(t, env, OpPanelVersion, 72, '1')
		require.ErrorIs(t, err, ErrInvalidPayload)
	})
}

func TestDecodeCommandResult(t *testing.T) {
	env := testEnv(t)

	for code, ok := range map[byte]bool{
		0x00: true,
		0x01: false,
		0x08: false,
		0x11: false,
		0x12: false,
		0xff: false,
	} {
		t.Run(fmt.Sprintf("%02X", code), func(t *testing.T) {
			res, err := decode(t, env, OpCommandResult, code)
			require.NoError(t, err)
			require.Equal(t, CommandResult{OK: ok, Code: ResultCode(code)}, res)
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		_, err := decode(t, env, OpCommandResult, 0x99)
		require.ErrorIs(t, err, ErrUnsupportedResultCode)
	})

	require.Equal(t, "can not arm", CommandResult{Code: ResultCannotArm}.String())
}

func TestDispatchUnknownOpcode(t *testing.T) {
	_, err := decode(t, testEnv(t), 0x99)
	require.ErrorIs(t, err, ErrUnknownOpcode)
}
