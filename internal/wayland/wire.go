package wayland

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const headerSize = 8

// maxMessageSize is the largest message the 16-bit size field can describe
const maxMessageSize = 0xffff

var errShortMessage = errors.New("message body too short")

// Message is a single request or event on the wire
type Message struct {
	Object uint32
	Opcode uint16
	Body   []byte
}

// MessageBuilder appends arguments to a request body
type MessageBuilder struct {
	object uint32
	opcode uint16
	body   []byte
}

// NewRequest starts a request for object with opcode
func NewRequest(object uint32, opcode uint16) *MessageBuilder {
	return &MessageBuilder{object: object, opcode: opcode}
}

// Uint appends an unsigned 32-bit argument
func (b *MessageBuilder) Uint(v uint32) *MessageBuilder {
	b.body = binary.LittleEndian.AppendUint32(b.body, v)
	return b
}

// Int appends a signed 32-bit argument
func (b *MessageBuilder) Int(v int32) *MessageBuilder {
	return b.Uint(uint32(v))
}

// Object appends an object id argument (0 for null)
func (b *MessageBuilder) Object(id uint32) *MessageBuilder {
	return b.Uint(id)
}

// Fixed appends a 24.8 fixed point argument
func (b *MessageBuilder) Fixed(v float64) *MessageBuilder {
	return b.Int(FixedFromFloat(v))
}

// Str appends a NUL-terminated, 4-byte padded string argument
func (b *MessageBuilder) Str(s string) *MessageBuilder {
	b.Uint(uint32(len(s) + 1))
	b.body = append(b.body, s...)
	b.body = append(b.body, 0)
	b.pad()
	return b
}

// Array appends a length-prefixed, 4-byte padded byte array argument
func (b *MessageBuilder) Array(data []byte) *MessageBuilder {
	b.Uint(uint32(len(data)))
	b.body = append(b.body, data...)
	b.pad()
	return b
}

func (b *MessageBuilder) pad() {
	for len(b.body)%4 != 0 {
		b.body = append(b.body, 0)
	}
}

// Message returns the finished message
func (b *MessageBuilder) Message() Message {
	return Message{Object: b.object, Opcode: b.opcode, Body: b.body}
}

// Encode serializes m with its header
func (m Message) Encode() ([]byte, error) {
	size := headerSize + len(m.Body)
	if size > maxMessageSize {
		return nil, fmt.Errorf("message too large: %d bytes", size)
	}
	buf := make([]byte, headerSize, size)
	binary.LittleEndian.PutUint32(buf[0:4], m.Object)
	// Upper 16 bits = size, lower 16 bits = opcode
	binary.LittleEndian.PutUint32(buf[4:8], uint32(size)<<16|uint32(m.Opcode))
	return append(buf, m.Body...), nil
}

// parseHeader splits a header into object id, opcode and total size
func parseHeader(h []byte) (object uint32, opcode uint16, size int) {
	object = binary.LittleEndian.Uint32(h[0:4])
	sizeOpcode := binary.LittleEndian.Uint32(h[4:8])
	return object, uint16(sizeOpcode & 0xffff), int(sizeOpcode >> 16)
}

// FixedFromFloat converts v to 24.8 fixed point, rounding to nearest
func FixedFromFloat(v float64) int32 {
	return int32(math.Round(v * 256))
}

// FixedToFloat converts a 24.8 fixed point value to float64
func FixedToFloat(f int32) float64 {
	return float64(f) / 256
}

// ArgReader decodes event arguments in order. The first decoding error
// sticks and is reported by Err.
type ArgReader struct {
	body []byte
	off  int
	err  error
}

// NewArgReader reads arguments from body
func NewArgReader(body []byte) *ArgReader {
	return &ArgReader{body: body}
}

// Err returns the first decoding error
func (r *ArgReader) Err() error {
	return r.err
}

func (r *ArgReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.body) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", errShortMessage, n, r.off, len(r.body))
		return nil
	}
	b := r.body[r.off : r.off+n]
	r.off += n
	return b
}

// Uint reads an unsigned 32-bit argument
func (r *ArgReader) Uint() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Int reads a signed 32-bit argument
func (r *ArgReader) Int() int32 {
	return int32(r.Uint())
}

// Object reads an object id argument
func (r *ArgReader) Object() uint32 {
	return r.Uint()
}

// Fixed reads a 24.8 fixed point argument
func (r *ArgReader) Fixed() float64 {
	return FixedToFloat(r.Int())
}

// Str reads a string argument. A zero length denotes a null string.
func (r *ArgReader) Str() string {
	n := int(r.Uint())
	if r.err != nil || n == 0 {
		return ""
	}
	b := r.take(paddedLen(n))
	if b == nil {
		return ""
	}
	if b[n-1] != 0 {
		r.err = errors.New("string argument is not NUL-terminated")
		return ""
	}
	return string(b[:n-1])
}

// Array reads a byte array argument
func (r *ArgReader) Array() []byte {
	n := int(r.Uint())
	if r.err != nil {
		return nil
	}
	b := r.take(paddedLen(n))
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b[:n])
	return out
}

// Uints reads an array argument of 32-bit values
func (r *ArgReader) Uints() []uint32 {
	data := r.Array()
	if len(data)%4 != 0 {
		if r.err == nil {
			r.err = fmt.Errorf("array of %d bytes is not a uint32 array", len(data))
		}
		return nil
	}
	out := make([]uint32, 0, len(data)/4)
	for i := 0; i < len(data); i += 4 {
		out = append(out, binary.LittleEndian.Uint32(data[i:i+4]))
	}
	return out
}

func paddedLen(n int) int {
	return (n + 3) &^ 3
}
