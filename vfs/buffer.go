package vfs

import (
	"errors"
	"unsafe"
)

// AlignedBuffer is a buffer whose start address and capacity satisfy an
// Alignment, so any prefix of Length-multiple size can be handed to a
// direct Handle.
type AlignedBuffer struct {
	data      []byte
	alignment Alignment
	capacity  int
}

// NewAlignedBuffer allocates size bytes aligned for a. The capacity is size
// rounded up to a's length granularity. A zero Alignment falls back to
// DefaultBlockSize.
func NewAlignedBuffer(size int, a Alignment) *AlignedBuffer {
	if a.IsZero() {
		a = MustUniformAlignment(DefaultBlockSize)
	}
	if size < 0 {
		size = 0
	}
	capacity := int(AlignUp(int64(size), int64(a.Length())))
	data := alignedBlock(capacity, a.Buffer())
	return &AlignedBuffer{
		data:      data[:size],
		alignment: a,
		capacity:  capacity,
	}
}

// BufferFor allocates a buffer suitable for a Handle with the given
// requirements. Unknown requirements use DefaultBlockSize.
func BufferFor(req Requirements, size int) *AlignedBuffer {
	a, _ := req.Alignment()
	return NewAlignedBuffer(size, a)
}

// Bytes returns the underlying byte slice.
func (b *AlignedBuffer) Bytes() []byte {
	return b.data
}

// Len returns the length of the buffer.
func (b *AlignedBuffer) Len() int {
	return len(b.data)
}

// Cap returns the capacity of the buffer.
func (b *AlignedBuffer) Cap() int {
	return b.capacity
}

// Alignment returns the alignment of the buffer.
func (b *AlignedBuffer) Alignment() Alignment {
	return b.alignment
}

// Resize resizes the buffer to the given size.
// The size must not exceed the capacity.
func (b *AlignedBuffer) Resize(size int) error {
	if size < 0 || size > b.capacity {
		return errors.New("vfs: size exceeds aligned buffer capacity")
	}
	b.data = b.data[:size]
	return nil
}

// Clear zeroes the contents and resets the buffer to zero length.
func (b *AlignedBuffer) Clear() {
	clear(b.data[:b.capacity])
	b.data = b.data[:0]
}

// AddressOf returns the address of the first byte of p, or 0 for an empty slice.
func AddressOf(p []byte) uintptr {
	if len(p) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(p)))
}

// overAllocate returns size bytes starting at a multiple of align by slicing
// into a larger allocation.
func overAllocate(size, align int) []byte {
	if align <= 1 || size == 0 {
		return make([]byte, size)
	}
	block := make([]byte, size+align)
	offset := 0
	if rem := int(AddressOf(block) & uintptr(align-1)); rem != 0 {
		offset = align - rem
	}
	return block[offset : offset+size : offset+size]
}
