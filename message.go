package wlb

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

const headerSize = 8

// Message is one request or event on the wire: the object it is addressed
// to (or sent by), the opcode, the encoded arguments, and any file
// descriptors that travel alongside it.
type Message struct {
	Sender Id
	Opcode uint16
	Data   []byte
	Fds    []int
}

// Bytes returns the message with its 8-byte header.
func (m Message) Bytes() ([]byte, error) {
	size := headerSize + len(m.Data)
	if size > math.MaxUint16 {
		return nil, errors.Errorf("message of %d bytes is too large", size)
	}
	buf := make([]byte, size)
	Put32(buf, uint32(m.Sender))
	Put32(buf[4:], uint32(size)<<16|uint32(m.Opcode))
	copy(buf[headerSize:], m.Data)
	return buf, nil
}

// parseHeader reads the header at the start of buf. size includes the
// header itself.
func parseHeader(buf []byte) (msg Message, size int, err error) {
	word := Get32(buf[4:])
	size = int(word >> 16)
	if size < headerSize || size%4 != 0 {
		return msg, 0, errors.Errorf("invalid message size %d", size)
	}
	msg.Sender = Id(Get32(buf))
	msg.Opcode = uint16(word)
	return msg, size, nil
}

// Pad a length to align on 4 bytes.
func pad(n int) int { return (n + 3) & ^3 }

// Get32 reads a 32-bit word in host byte order, which is the byte order of
// the Wayland wire protocol.
func Get32(buf []byte) uint32 {
	return binary.NativeEndian.Uint32(buf)
}

// Put32 writes a 32-bit word in host byte order.
func Put32(buf []byte, v uint32) {
	binary.NativeEndian.PutUint32(buf, v)
}

// FixedFromFloat converts to wl_fixed_t, a signed 24.8 number.
func FixedFromFloat(v float64) int32 {
	return int32(math.Round(v * 256))
}

// FixedToFloat converts from wl_fixed_t.
func FixedToFloat(f int32) float64 {
	return float64(f) / 256
}

// Encoder builds request arguments. Methods chain:
//
//	NewEncoder().Object(id).Uint32(serial).Message(sender, opcode)
type Encoder struct {
	buf []byte
	fds []int
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Uint32(v uint32) *Encoder {
	e.buf = binary.NativeEndian.AppendUint32(e.buf, v)
	return e
}

func (e *Encoder) Int32(v int32) *Encoder {
	return e.Uint32(uint32(v))
}

// Object encodes an object or new_id argument. Id 0 is the null object.
func (e *Encoder) Object(id Id) *Encoder {
	return e.Uint32(uint32(id))
}

func (e *Encoder) Fixed(v float64) *Encoder {
	return e.Int32(FixedFromFloat(v))
}

// String encodes a NUL-terminated string with its length prefix.
func (e *Encoder) String(s string) *Encoder {
	n := len(s) + 1
	e.Uint32(uint32(n))
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, make([]byte, pad(n)-len(s))...)
	return e
}

func (e *Encoder) Array(b []byte) *Encoder {
	e.Uint32(uint32(len(b)))
	e.buf = append(e.buf, b...)
	e.buf = append(e.buf, make([]byte, pad(len(b))-len(b))...)
	return e
}

// Fd attaches a file descriptor. It occupies no space in the payload.
func (e *Encoder) Fd(fd int) *Encoder {
	e.fds = append(e.fds, fd)
	return e
}

func (e *Encoder) Message(sender Id, opcode uint16) Message {
	return Message{
		Sender: sender,
		Opcode: opcode,
		Data:   e.buf,
		Fds:    e.fds,
	}
}

var errShortMessage = errors.New("message is shorter than its signature")

// Decoder reads event arguments in order. The first failure is kept and
// reported by Err; later reads return zero values.
type Decoder struct {
	msg Message
	off int
	fds func() (int, error)
	err error
}

// NewDecoder returns a decoder over msg. fds supplies file descriptors for
// fd arguments; if nil, they are taken from msg.Fds.
func NewDecoder(msg Message, fds func() (int, error)) *Decoder {
	d := &Decoder{msg: msg, fds: fds}
	if d.fds == nil {
		d.fds = d.ownFd
	}
	return d
}

func (d *Decoder) Sender() Id     { return d.msg.Sender }
func (d *Decoder) Opcode() uint16 { return d.msg.Opcode }
func (d *Decoder) Err() error     { return d.err }

func (d *Decoder) ownFd() (int, error) {
	if len(d.msg.Fds) == 0 {
		return -1, errors.New("no file descriptor attached to message")
	}
	fd := d.msg.Fds[0]
	d.msg.Fds = d.msg.Fds[1:]
	return fd, nil
}

func (d *Decoder) next(n int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.msg.Data)-d.off < n {
		d.err = errShortMessage
		return nil
	}
	b := d.msg.Data[d.off : d.off+n]
	d.off += n
	return b
}

func (d *Decoder) Uint32() uint32 {
	b := d.next(4)
	if b == nil {
		return 0
	}
	return Get32(b)
}

func (d *Decoder) Int32() int32 {
	return int32(d.Uint32())
}

func (d *Decoder) Object() Id {
	return Id(d.Uint32())
}

func (d *Decoder) Fixed() float64 {
	return FixedToFloat(d.Int32())
}

func (d *Decoder) String() string {
	n := int(d.Uint32())
	if n == 0 {
		return ""
	}
	b := d.next(pad(n))
	if b == nil {
		return ""
	}
	if b[n-1] != 0 {
		d.err = errors.New("string argument is not NUL-terminated")
		return ""
	}
	return string(b[:n-1])
}

func (d *Decoder) Array() []byte {
	n := int(d.Uint32())
	b := d.next(pad(n))
	if b == nil {
		return nil
	}
	return append([]byte(nil), b[:n]...)
}

func (d *Decoder) Fd() int {
	if d.err != nil {
		return -1
	}
	fd, err := d.fds()
	if err != nil {
		d.err = err
		return -1
	}
	return fd
}
