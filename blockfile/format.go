// Package blockfile stores self-describing records in an append-only file
// whose every transfer is legal for a direct I/O Handle.
//
// Record layout (all integers little endian):
//
//	+-----------+------+------+-----------+----------+------------+----------+---------+
//	| magic(4B) | comp | csum | unitShift | reserved | length(4B) | sum (4B) | payload |
//	+-----------+------+------+-----------+----------+------------+----------+---------+
//
// The record is zero padded to a multiple of 1<<unitShift bytes, so every
// record starts on a unit boundary. The checksum covers the payload followed
// by the compression byte.
package blockfile

import (
	"errors"
	"fmt"

	"github.com/aalhour/directfile/internal/checksum"
	"github.com/aalhour/directfile/internal/compression"
	"github.com/aalhour/directfile/internal/encoding"
)

// Magic identifies a record header.
const Magic uint32 = 0xD10B10C5

// HeaderSize is the size of the record header.
const HeaderSize = 16

// MaxPayloadSize bounds the stored (compressed) payload of one record.
const MaxPayloadSize = 1 << 30

const (
	minUnitShift = 9  // 512 bytes
	maxUnitShift = 24 // 16 MiB
)

var (
	// ErrCorruption is matched by every error caused by bad on-disk data.
	ErrCorruption = errors.New("blockfile: corruption")

	// ErrRecordTooLarge is returned when a payload exceeds MaxPayloadSize.
	ErrRecordTooLarge = errors.New("blockfile: record too large")
)

// Compression selects the payload codec.
type Compression = compression.Type

// Supported codecs.
const (
	NoCompression     = compression.NoCompression
	SnappyCompression = compression.SnappyCompression
	ZlibCompression   = compression.ZlibCompression
	LZ4Compression    = compression.LZ4Compression
	LZ4HCCompression  = compression.LZ4HCCompression
	ZstdCompression   = compression.ZstdCompression
)

// Checksum selects the record checksum.
type Checksum = checksum.Type

// Supported checksums.
const (
	NoChecksum     = checksum.TypeNoChecksum
	CRC32CChecksum = checksum.TypeCRC32C
	XXH3Checksum   = checksum.TypeXXH3
)

// ParseCompression parses a codec name: none, snappy, zlib, lz4, lz4hc or zstd.
func ParseCompression(s string) (Compression, error) {
	return compression.ParseType(s)
}

// ParseChecksum parses a checksum name: none, crc32c or xxh3.
func ParseChecksum(s string) (Checksum, error) {
	return checksum.ParseType(s)
}

type header struct {
	compression Compression
	checksum    Checksum
	unitShift   uint8
	length      uint32
	sum         uint32
}

func (h header) encode(dst []byte) error {
	w := encoding.NewWriter(dst)
	w.PutFixed32(Magic)
	w.PutUint8(uint8(h.compression))
	w.PutUint8(uint8(h.checksum))
	w.PutUint8(h.unitShift)
	w.PutUint8(0)
	w.PutFixed32(h.length)
	w.PutFixed32(h.sum)
	return w.Err()
}

func decodeHeader(src []byte) (header, error) {
	s := encoding.NewSlice(src)
	magic, ok := s.GetFixed32()
	if !ok {
		return header{}, corruptionf("short header: %d bytes", len(src))
	}
	if magic != Magic {
		return header{}, corruptionf("bad magic %#08x", magic)
	}
	var h header
	c, _ := s.GetUint8()
	k, _ := s.GetUint8()
	h.unitShift, _ = s.GetUint8()
	_, _ = s.GetUint8()
	h.length, _ = s.GetFixed32()
	h.sum, ok = s.GetFixed32()
	if !ok {
		return header{}, corruptionf("short header: %d bytes", len(src))
	}
	h.compression = Compression(c)
	h.checksum = Checksum(k)

	switch {
	case !h.compression.IsSupported():
		return header{}, corruptionf("unknown compression %d", c)
	case !h.checksum.IsSupported():
		return header{}, corruptionf("unknown checksum %d", k)
	case h.unitShift < minUnitShift || h.unitShift > maxUnitShift:
		return header{}, corruptionf("unit shift %d out of range", h.unitShift)
	case h.length > MaxPayloadSize:
		return header{}, corruptionf("payload length %d", h.length)
	}
	return h, nil
}

// recordSize is the on-disk size of a record including padding.
func (h header) recordSize() int64 {
	unit := int64(1) << h.unitShift
	return (int64(HeaderSize) + int64(h.length) + unit - 1) / unit * unit
}

func corruptionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruption, fmt.Sprintf(format, args...))
}
