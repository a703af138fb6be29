// Package codec provides the canonical binary encoding used to produce the
// bytes that are hashed, signed, and stored. Fields are written in a fixed
// order, integers are fixed width little endian, and variable length byte
// fields carry a u64 length prefix. The layout matches the bincode format so
// digests stay comparable with other implementations of the ledger.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Version identifies the encoding. Changing the encoding changes every
// digest in the chain, so any change must bump this value.
const Version uint8 = 1

// MaxBytesLen caps the length prefix a decoder will honor.
const MaxBytesLen = 1 << 24

// Set of error variables for decoding.
var (
	ErrUnexpectedEOF = errors.New("codec: unexpected end of input")
	ErrTrailingBytes = errors.New("codec: trailing bytes after record")
	ErrLengthTooBig  = errors.New("codec: length prefix exceeds limit")
)

// =============================================================================

// Encoder accumulates the canonical encoding of a record.
type Encoder struct {
	buf []byte
}

// NewEncoder constructs an encoder with room for size bytes.
func NewEncoder(size int) *Encoder {
	return &Encoder{buf: make([]byte, 0, size)}
}

// Uint8 writes a single byte.
func (e *Encoder) Uint8(v uint8) {
	e.buf = append(e.buf, v)
}

// Uint32 writes a 4 byte little endian integer.
func (e *Encoder) Uint32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

// Uint64 writes an 8 byte little endian integer.
func (e *Encoder) Uint64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

// Fixed writes the bytes with no length prefix. Used for fixed size arrays
// like digests where the reader knows the size.
func (e *Encoder) Fixed(b []byte) {
	e.buf = append(e.buf, b...)
}

// Bytes writes a u64 length prefix followed by the bytes.
func (e *Encoder) Bytes(b []byte) {
	e.Uint64(uint64(len(b)))
	e.buf = append(e.buf, b...)
}

// Bool writes a boolean as a single 0 or 1 byte. Optional values are
// encoded as a Bool presence marker followed by the value.
func (e *Encoder) Bool(v bool) {
	if v {
		e.Uint8(1)
		return
	}
	e.Uint8(0)
}

// Encoded returns the bytes written so far.
func (e *Encoder) Encoded() []byte {
	return e.buf
}

// =============================================================================

// Decoder reads a canonical encoding. The first error is sticky: once a read
// fails every later read returns a zero value and Err reports the failure.
type Decoder struct {
	buf []byte
	off int
	err error
}

// NewDecoder constructs a decoder over the specified bytes.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// Err returns the first error encountered.
func (d *Decoder) Err() error {
	return d.err
}

// Finish returns the first error encountered, or ErrTrailingBytes if input
// remains after the record.
func (d *Decoder) Finish() error {
	if d.err != nil {
		return d.err
	}

	if d.off != len(d.buf) {
		return fmt.Errorf("%w: %d bytes", ErrTrailingBytes, len(d.buf)-d.off)
	}

	return nil
}

// Uint8 reads a single byte.
func (d *Decoder) Uint8() uint8 {
	b := d.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Uint32 reads a 4 byte little endian integer.
func (d *Decoder) Uint32() uint32 {
	b := d.next(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Uint64 reads an 8 byte little endian integer.
func (d *Decoder) Uint64() uint64 {
	b := d.next(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// Fixed reads exactly n bytes into dst.
func (d *Decoder) Fixed(dst []byte) {
	b := d.next(len(dst))
	if b == nil {
		return
	}
	copy(dst, b)
}

// Bytes reads a u64 length prefix and returns a copy of that many bytes.
func (d *Decoder) Bytes() []byte {
	n := d.Uint64()
	if d.err != nil {
		return nil
	}

	if n > MaxBytesLen {
		d.err = fmt.Errorf("%w: %d", ErrLengthTooBig, n)
		return nil
	}

	b := d.next(int(n))
	if b == nil {
		return nil
	}

	return append([]byte{}, b...)
}

// Bool reads a 0 or 1 byte. Any other value is an error.
func (d *Decoder) Bool() bool {
	switch v := d.Uint8(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		if d.err == nil {
			d.err = fmt.Errorf("codec: invalid bool byte %d", v)
		}
		return false
	}
}

// Fail records err as the decoder error if none has been recorded yet. Types
// decoding themselves use this to report invalid field values.
func (d *Decoder) Fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// next returns the next n bytes or nil when the input is exhausted.
func (d *Decoder) next(n int) []byte {
	if d.err != nil {
		return nil
	}

	if n < 0 || len(d.buf)-d.off < n {
		d.err = ErrUnexpectedEOF
		return nil
	}

	b := d.buf[d.off : d.off+n]
	d.off += n

	return b
}
