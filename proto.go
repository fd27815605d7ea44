package integra

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	frameSync  = 0xfe
	frameEnd   = 0x0d
	frameStuff = 0xf0
)

var (
	frameHeader = []byte{frameSync, frameSync}
	frameFooter = []byte{frameSync, frameEnd}

	// "\x10Busy!\r\n"
	busyReply = []byte{0x10, 0x42, 0x75, 0x73, 0x79, 0x21, 0x0d, 0x0a}
)

// Command is an opcode plus its arguments, not yet framed.
type Command struct {
	opcode byte
	args   []byte
}

func NewCommand(opcode byte, args ...byte) Command {
	return Command{
		opcode: opcode,
		args:   append([]byte(nil), args...),
	}
}

func (c Command) Opcode() byte { return c.opcode }

// Bytes returns the opcode followed by the arguments.
func (c Command) Bytes() []byte {
	return append([]byte{c.opcode}, c.args...)
}

func (c Command) String() string {
	return fmt.Sprintf("%02X%X", c.opcode, c.args)
}

// Response is a validated reply: its opcode and the data that follows it.
type Response struct {
	Opcode byte
	Data   []byte
}

func (r Response) Bytes() []byte {
	return append([]byte{r.Opcode}, r.Data...)
}

// Checksum computes the ETHM-1 frame checksum over the unstuffed
// command bytes.
func Checksum(buf []byte) uint16 {
	crc := uint16(0x147a)
	for _, b := range buf {
		crc = crc<<1 | crc>>15
		crc ^= 0xffff
		crc += crc>>8 + uint16(b)
	}
	return crc
}

// Encode frames the given command bytes: checksum, byte stuffing, header and
// footer.
func Encode(cmd []byte) []byte {
	sum := Checksum(cmd)
	body := make([]byte, 0, len(cmd)+2)
	body = append(body, cmd...)
	body = binary.BigEndian.AppendUint16(body, sum)

	frame := make([]byte, 0, len(body)+len(frameHeader)+len(frameFooter)+4)
	frame = append(frame, frameHeader...)
	frame = append(frame, stuff(body)...)
	frame = append(frame, frameFooter...)
	return frame
}

// Decode validates a frame and returns the response it carries.
//
// Stuffed 0xFE 0xF0 pairs are collapsed before the checksum is verified,
// the same way they are expanded by Encode.
func Decode(frame []byte) (Response, error) {
	if len(frame) < len(frameHeader)+len(frameFooter) ||
		!bytes.HasPrefix(frame, frameHeader) ||
		!bytes.HasSuffix(frame, frameFooter) {
		return Response{}, fmt.Errorf("%w: %s", ErrFraming, dump(frame))
	}

	body, err := unstuff(frame[len(frameHeader) : len(frame)-len(frameFooter)])
	if err != nil {
		return Response{}, err
	}
	if len(body) < 3 {
		return Response{}, fmt.Errorf("%w: frame too short: %s", ErrFraming, dump(frame))
	}

	payload := body[:len(body)-2]
	got := binary.BigEndian.Uint16(body[len(body)-2:])
	if want := Checksum(payload); got != want {
		return Response{}, fmt.Errorf("%w: got %04X, want %04X", ErrChecksumMismatch, got, want)
	}

	return Response{
		Opcode: payload[0],
		Data:   payload[1:],
	}, nil
}

func stuff(in []byte) []byte {
	out := make([]byte, 0, len(in))
	for _, b := range in {
		out = append(out, b)
		if b == frameSync {
			out = append(out, frameStuff)
		}
	}
	return out
}

func unstuff(in []byte) ([]byte, error) {
	out := make([]byte, 0, len(in))
	for i := 0; i < len(in); i++ {
		b := in[i]
		out = append(out, b)
		if b != frameSync {
			continue
		}
		if i+1 >= len(in) || in[i+1] != frameStuff {
			return nil, fmt.Errorf("%w: unescaped 0xFE at %d", ErrFraming, i)
		}
		i++
	}
	return out, nil
}

func isBusy(reply []byte) bool {
	return bytes.HasPrefix(reply, busyReply)
}

// complete reports whether the bytes read so far form a whole reply.
func complete(reply []byte) bool {
	if isBusy(reply) {
		return true
	}
	return len(reply) > len(frameHeader)+len(frameFooter) &&
		bytes.HasPrefix(reply, frameHeader) &&
		bytes.HasSuffix(reply, frameFooter)
}

// maxDump bounds how much of a rejected frame ends up in an error.
const maxDump = 32

func dump(b []byte) string {
	if len(b) <= maxDump {
		return fmt.Sprintf("% X", b)
	}
	return fmt.Sprintf("% X ... (%d bytes)", b[:maxDump], len(b))
}
