package vfs

import (
	"fmt"
	"math/bits"
)

// DefaultBlockSize is the fallback alignment when none could be determined.
// Most modern filesystems and devices use 4KB logical blocks.
const DefaultBlockSize = 4096

// Alignment describes the three independent constraints direct I/O places on
// a transfer. Each magnitude is a positive power of two in bytes.
//
// The zero Alignment imposes no constraint; every validator returns true.
type Alignment struct {
	buffer int
	offset int
	length int
}

// NewAlignment returns an Alignment with the given buffer address alignment,
// file offset alignment and transfer length granularity.
func NewAlignment(buffer, offset, length int) (Alignment, error) {
	a := Alignment{buffer: buffer, offset: offset, length: length}
	if err := a.Validate(); err != nil {
		return Alignment{}, err
	}
	return a, nil
}

// UniformAlignment returns an Alignment with all three magnitudes set to n.
func UniformAlignment(n int) (Alignment, error) {
	return NewAlignment(n, n, n)
}

// MustUniformAlignment is like UniformAlignment but panics if n is not a
// positive power of two. It is meant for constants and tests.
func MustUniformAlignment(n int) Alignment {
	a, err := UniformAlignment(n)
	if err != nil {
		panic(err)
	}
	return a
}

func isPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}

// Validate reports whether every magnitude is a positive power of two.
func (a Alignment) Validate() error {
	switch {
	case !isPowerOfTwo(a.buffer):
		return fmt.Errorf("%w: buffer alignment %d", ErrInvalidAlignment, a.buffer)
	case !isPowerOfTwo(a.offset):
		return fmt.Errorf("%w: offset alignment %d", ErrInvalidAlignment, a.offset)
	case !isPowerOfTwo(a.length):
		return fmt.Errorf("%w: length multiple %d", ErrInvalidAlignment, a.length)
	}
	return nil
}

// IsZero reports whether a is the unconstrained zero value.
func (a Alignment) IsZero() bool {
	return a == Alignment{}
}

// Buffer returns the required buffer address alignment.
func (a Alignment) Buffer() int { return a.buffer }

// Offset returns the required file offset alignment.
func (a Alignment) Offset() int { return a.offset }

// Length returns the required transfer length granularity.
func (a Alignment) Length() int { return a.length }

// IsBufferAligned reports whether addr is a multiple of the buffer alignment.
func (a Alignment) IsBufferAligned(addr uintptr) bool {
	if a.buffer <= 0 {
		return true
	}
	return addr&uintptr(a.buffer-1) == 0
}

// IsOffsetAligned reports whether off is a multiple of the offset alignment.
// Negative offsets are never aligned.
func (a Alignment) IsOffsetAligned(off int64) bool {
	if off < 0 {
		return false
	}
	if a.offset <= 0 {
		return true
	}
	return off&int64(a.offset-1) == 0
}

// IsLengthValid reports whether n is zero or a multiple of the length
// granularity. Zero-length transfers are always valid.
func (a Alignment) IsLengthValid(n int) bool {
	if n == 0 {
		return true
	}
	if n < 0 {
		return false
	}
	if a.length <= 0 {
		return true
	}
	return n&(a.length-1) == 0
}

// Block returns the smallest size that satisfies both the offset alignment
// and the length granularity. Records laid out in Block-sized units can be
// written at any unit boundary.
func (a Alignment) Block() int {
	return max(a.offset, a.length, 1)
}

// String returns a compact representation for logs.
func (a Alignment) String() string {
	if a.IsZero() {
		return "none"
	}
	if a.buffer == a.offset && a.offset == a.length {
		return fmt.Sprintf("uniform(%d)", a.buffer)
	}
	return fmt.Sprintf("buffer=%d offset=%d length=%d", a.buffer, a.offset, a.length)
}

// IsAligned checks if the given value is aligned to the given alignment.
// A non-positive alignment accepts every value.
func IsAligned(value, alignment int64) bool {
	if alignment <= 0 {
		return true
	}
	return value%alignment == 0
}

// AlignUp rounds up the given value to the next multiple of alignment.
func AlignUp(value, alignment int64) int64 {
	if alignment <= 0 {
		return value
	}
	return ((value + alignment - 1) / alignment) * alignment
}

// AlignDown rounds down the given value to the previous multiple of alignment.
func AlignDown(value, alignment int64) int64 {
	if alignment <= 0 {
		return value
	}
	return (value / alignment) * alignment
}
