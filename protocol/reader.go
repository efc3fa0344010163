package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// ByteOrder is the byte order of every scalar on the wire. The server
// runs on x86 so this is fixed to little endian, whatever the host is.
var ByteOrder = binary.LittleEndian

var (
	ErrMalformedMessage = errors.New("Message is malformed")
	ErrStringTooLong    = errors.New("String is too long to be encoded with a u16 length prefix")
)

// Reader is a cursor over a single datagram.
//
// Reader has a sticky error: the first read that runs past the end of the
// datagram, or a string that isn't valid UTF-8, records an error wrapping
// ErrMalformedMessage and every following read returns a zero value. Decoders
// read all their fields and check Err once at the end.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first error encountered while reading, if any.
func (r *Reader) Err() error {
	return r.err
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.off
}

func (r *Reader) next(n int, what string) []byte {
	if r.err != nil {
		return nil
	}

	if r.Len() < n {
		r.err = fmt.Errorf("Failed to read %s (%d bytes) at offset %d, %d bytes remaining: %w",
			what, n, r.off, r.Len(), ErrMalformedMessage)
		return nil
	}

	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) Uint8() uint8 {
	b := r.next(1, "u8")
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *Reader) Uint16() uint16 {
	b := r.next(2, "u16")
	if b == nil {
		return 0
	}

	return ByteOrder.Uint16(b)
}

func (r *Reader) Int32() int32 {
	b := r.next(4, "i32")
	if b == nil {
		return 0
	}

	return int32(ByteOrder.Uint32(b))
}

func (r *Reader) Float32() float32 {
	b := r.next(4, "f32")
	if b == nil {
		return 0
	}

	return math.Float32frombits(ByteOrder.Uint32(b))
}

// Bool reads a u8 flag, any nonzero value is true.
func (r *Reader) Bool() bool {
	return r.Uint8() > 0
}

// String reads a u16 length prefix and then exactly that many bytes of UTF-8.
func (r *Reader) String() string {
	n := int(r.Uint16())
	b := r.next(n, "string")
	if b == nil {
		return ""
	}

	if !utf8.Valid(b) {
		r.err = fmt.Errorf("Failed to read string at offset %d, invalid UTF-8: %w",
			r.off-n, ErrMalformedMessage)
		return ""
	}

	return string(b)
}

// Remaining consumes and returns every unread byte.
func (r *Reader) Remaining() []byte {
	if r.err != nil {
		return nil
	}

	b := r.data[r.off:]
	r.off = len(r.data)
	return b
}
