// Package checksum computes the record checksums used by the block file format.
//
// Two algorithms are supported: masked CRC32C (Castagnoli) and XXH3 folded
// to 32 bits. Both cover the payload plus one trailing byte that records the
// compression type, so a flipped type byte is detected as corruption.
package checksum

import (
	"fmt"
	"strings"
)

// Type represents the type of checksum algorithm.
type Type uint8

const (
	// TypeNoChecksum means no checksum is used.
	TypeNoChecksum Type = 0
	// TypeCRC32C is masked CRC32C (Castagnoli).
	TypeCRC32C Type = 1
	// TypeXXH3 is XXH3-64 folded to 32 bits.
	TypeXXH3 Type = 4
)

// String returns a human-readable name for the checksum type.
func (t Type) String() string {
	switch t {
	case TypeNoChecksum:
		return "none"
	case TypeCRC32C:
		return "crc32c"
	case TypeXXH3:
		return "xxh3"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// IsSupported reports whether Compute understands t.
func (t Type) IsSupported() bool {
	switch t {
	case TypeNoChecksum, TypeCRC32C, TypeXXH3:
		return true
	default:
		return false
	}
}

// ParseType converts a name produced by String back into a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return TypeNoChecksum, nil
	case "crc32c":
		return TypeCRC32C, nil
	case "xxh3":
		return TypeXXH3, nil
	default:
		return TypeNoChecksum, fmt.Errorf("checksum: unknown type %q", s)
	}
}

// Compute computes a checksum of the given type over data followed by lastByte.
// TypeNoChecksum and unsupported types return 0.
func Compute(t Type, data []byte, lastByte byte) uint32 {
	switch t {
	case TypeCRC32C:
		crc := Extend(Value(data), []byte{lastByte})
		return Mask(crc)
	case TypeXXH3:
		return XXH3WithLastByte(data, lastByte)
	default:
		return 0
	}
}
