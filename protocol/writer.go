package protocol

import (
	"bytes"
	"fmt"
	"math"
)

// Writer is the mirror of Reader. Like Reader it keeps the first error and
// ignores every write after it, Bytes reports it.
type Writer struct {
	buf bytes.Buffer
	err error
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Uint8(v uint8) *Writer {
	if w.err == nil {
		w.buf.WriteByte(v)
	}

	return w
}

func (w *Writer) Uint16(v uint16) *Writer {
	if w.err == nil {
		var b [2]byte
		ByteOrder.PutUint16(b[:], v)
		w.buf.Write(b[:])
	}

	return w
}

func (w *Writer) Int32(v int32) *Writer {
	if w.err == nil {
		var b [4]byte
		ByteOrder.PutUint32(b[:], uint32(v))
		w.buf.Write(b[:])
	}

	return w
}

func (w *Writer) Float32(v float32) *Writer {
	if w.err == nil {
		var b [4]byte
		ByteOrder.PutUint32(b[:], math.Float32bits(v))
		w.buf.Write(b[:])
	}

	return w
}

func (w *Writer) Bool(v bool) *Writer {
	if v {
		return w.Uint8(1)
	}

	return w.Uint8(0)
}

// String writes the u16 length prefix and then the bytes of s.
func (w *Writer) String(s string) *Writer {
	if w.err != nil {
		return w
	}

	if len(s) > math.MaxUint16 {
		w.err = fmt.Errorf("Failed to write string of %d bytes: %w", len(s), ErrStringTooLong)
		return w
	}

	w.Uint16(uint16(len(s)))
	w.buf.WriteString(s)

	return w
}

// Raw appends b as is, without a length prefix.
func (w *Writer) Raw(b []byte) *Writer {
	if w.err == nil {
		w.buf.Write(b)
	}

	return w
}

// Bytes returns the encoded message, or the first error hit while encoding.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}

	return w.buf.Bytes(), nil
}
