// Package encoding provides the fixed-width little-endian primitives used
// by the block file header and record cache.
package encoding

import (
	"encoding/binary"
	"errors"
)

// ErrBufferTooSmall is returned when a buffer cannot hold the value.
var ErrBufferTooSmall = errors.New("encoding: buffer too small")

// EncodeFixed32 encodes a uint32 into a 4-byte little-endian buffer.
// REQUIRES: dst has at least 4 bytes.
func EncodeFixed32(dst []byte, value uint32) {
	binary.LittleEndian.PutUint32(dst, value)
}

// DecodeFixed32 decodes a uint32 from a 4-byte little-endian buffer.
// REQUIRES: src has at least 4 bytes.
func DecodeFixed32(src []byte) uint32 {
	return binary.LittleEndian.Uint32(src)
}

// EncodeFixed64 encodes a uint64 into an 8-byte little-endian buffer.
// REQUIRES: dst has at least 8 bytes.
func EncodeFixed64(dst []byte, value uint64) {
	binary.LittleEndian.PutUint64(dst, value)
}

// DecodeFixed64 decodes a uint64 from an 8-byte little-endian buffer.
// REQUIRES: src has at least 8 bytes.
func DecodeFixed64(src []byte) uint64 {
	return binary.LittleEndian.Uint64(src)
}

// Writer fills a fixed buffer front to back. Writes past the end are
// dropped and reported by Err.
type Writer struct {
	buf []byte
	pos int
	err error
}

// NewWriter returns a Writer over dst.
func NewWriter(dst []byte) *Writer {
	return &Writer{buf: dst}
}

func (w *Writer) reserve(n int) []byte {
	if w.err != nil {
		return nil
	}
	if len(w.buf)-w.pos < n {
		w.err = ErrBufferTooSmall
		return nil
	}
	b := w.buf[w.pos : w.pos+n]
	w.pos += n
	return b
}

// PutUint8 writes one byte.
func (w *Writer) PutUint8(v uint8) {
	if b := w.reserve(1); b != nil {
		b[0] = v
	}
}

// PutFixed32 writes a little-endian uint32.
func (w *Writer) PutFixed32(v uint32) {
	if b := w.reserve(4); b != nil {
		EncodeFixed32(b, v)
	}
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.pos
}

// Err returns ErrBufferTooSmall if any write did not fit.
func (w *Writer) Err() error {
	return w.err
}

// Slice is a helper for reading from a byte slice.
// It tracks the current position and allows sequential reads.
type Slice struct {
	data []byte
	pos  int
}

// NewSlice creates a new Slice from a byte slice.
func NewSlice(data []byte) *Slice {
	return &Slice{data: data}
}

// Remaining returns the number of bytes remaining.
func (s *Slice) Remaining() int {
	return len(s.data) - s.pos
}

// GetUint8 reads one byte.
func (s *Slice) GetUint8() (uint8, bool) {
	if s.Remaining() < 1 {
		return 0, false
	}
	v := s.data[s.pos]
	s.pos++
	return v, true
}

// GetFixed32 reads a fixed 32-bit value.
func (s *Slice) GetFixed32() (uint32, bool) {
	if s.Remaining() < 4 {
		return 0, false
	}
	v := DecodeFixed32(s.data[s.pos:])
	s.pos += 4
	return v, true
}
