package vfs

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

var (
	// ErrInvalidAlignment is returned when an alignment magnitude is not a
	// positive power of two.
	ErrInvalidAlignment = errors.New("vfs: alignment must be a positive power of two")

	// ErrModeUnsatisfiable is matched by every *ModeError.
	ErrModeUnsatisfiable = errors.New("vfs: requested I/O mode unsatisfiable")

	// ErrRequirementsUnknown is returned when a direct Handle has no known
	// alignment to validate against. This is a configuration error.
	ErrRequirementsUnknown = errors.New("vfs: alignment requirements unknown")

	// ErrNotAligned is matched by every *AlignmentError.
	ErrNotAligned = errors.New("vfs: transfer not aligned for direct I/O")

	// ErrMisalignedBuffer is matched by an *AlignmentError on the buffer address.
	ErrMisalignedBuffer = errors.New("vfs: buffer address misaligned")

	// ErrMisalignedOffset is matched by an *AlignmentError on the file offset.
	ErrMisalignedOffset = errors.New("vfs: file offset misaligned")

	// ErrInvalidLength is matched by an *AlignmentError on the transfer length.
	ErrInvalidLength = errors.New("vfs: transfer length not a valid multiple")

	// ErrClosed is returned by I/O on a closed or detached Handle.
	ErrClosed = errors.New("vfs: handle closed")

	// ErrInvalidHandle is wrapped by probe queries that fail because the
	// descriptor is not valid.
	ErrInvalidHandle = errors.New("vfs: invalid file handle")

	// ErrDirectIONotSupported is returned when the filesystem refuses to
	// bypass the page cache for a file.
	ErrDirectIONotSupported = errors.New("vfs: direct I/O not supported")
)

// Constraint names the alignment rule a transfer violated.
type Constraint uint8

const (
	// ConstraintBuffer is the buffer address alignment.
	ConstraintBuffer Constraint = iota
	// ConstraintOffset is the file offset alignment.
	ConstraintOffset
	// ConstraintLength is the transfer length granularity.
	ConstraintLength
)

// String returns the name of the constraint.
func (c Constraint) String() string {
	switch c {
	case ConstraintBuffer:
		return "buffer"
	case ConstraintOffset:
		return "offset"
	case ConstraintLength:
		return "length"
	default:
		return fmt.Sprintf("Constraint(%d)", uint8(c))
	}
}

// AlignmentError reports the first alignment rule a transfer broke. No
// system call was issued. Retrying the same request fails identically.
type AlignmentError struct {
	Op         Operation
	Constraint Constraint
	Address    uintptr // set for ConstraintBuffer
	Offset     int64   // set for ConstraintOffset
	Length     int     // set for ConstraintLength
	Required   int
}

func (e *AlignmentError) Error() string {
	switch e.Constraint {
	case ConstraintBuffer:
		return fmt.Sprintf("vfs: %s: buffer address %#x not aligned to %d", e.Op, e.Address, e.Required)
	case ConstraintOffset:
		return fmt.Sprintf("vfs: %s: offset %d not aligned to %d", e.Op, e.Offset, e.Required)
	default:
		return fmt.Sprintf("vfs: %s: length %d not a multiple of %d", e.Op, e.Length, e.Required)
	}
}

// Is matches ErrNotAligned and the sentinel for the violated constraint.
func (e *AlignmentError) Is(target error) bool {
	switch target {
	case ErrNotAligned:
		return true
	case ErrMisalignedBuffer:
		return e.Constraint == ConstraintBuffer
	case ErrMisalignedOffset:
		return e.Constraint == ConstraintOffset
	case ErrInvalidLength:
		return e.Constraint == ConstraintLength
	}
	return false
}

// ModeError reports that a requested mode cannot be satisfied by the probed capability.
type ModeError struct {
	Requested  Mode
	Capability Capability
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("vfs: requested I/O mode %s unsatisfiable with capability %s", e.Requested, e.Capability)
}

// Unwrap returns ErrModeUnsatisfiable.
func (e *ModeError) Unwrap() error {
	return ErrModeUnsatisfiable
}

// RequirementsError reports that a Handle must validate alignment but none is known.
type RequirementsError struct {
	Op     Operation
	Mode   Resolved
	Reason Reason
}

func (e *RequirementsError) Error() string {
	return fmt.Sprintf("vfs: %s in %s mode: alignment requirements unknown (%s)", e.Op, e.Mode, e.Reason)
}

// Unwrap returns ErrRequirementsUnknown.
func (e *RequirementsError) Unwrap() error {
	return ErrRequirementsUnknown
}

// Operation tags the kind of call that failed.
type Operation uint8

const (
	// OpRead is a read or positioned read.
	OpRead Operation = iota
	// OpWrite is a write or positioned write.
	OpWrite
	// OpSeek is a seek or position query.
	OpSeek
	// OpSync is a flush to stable storage.
	OpSync
	// OpOpen is opening a file or enabling cache bypass on it.
	OpOpen
	// OpClose is releasing the descriptor.
	OpClose
)

// String returns the name of the operation.
func (o Operation) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpSeek:
		return "seek"
	case OpSync:
		return "sync"
	case OpOpen:
		return "open"
	case OpClose:
		return "close"
	default:
		return fmt.Sprintf("Operation(%d)", uint8(o))
	}
}

// OpError records a failed system call together with the operation that
// triggered it. The underlying error is available through errors.Is and
// errors.As. OpErrors are never retried by this package.
type OpError struct {
	Op   Operation
	Path string
	Mode Resolved
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("vfs: %s %s (%s): %v", e.Op, e.Path, e.Mode, e.Err)
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error {
	return e.Err
}

// Category returns the class of the underlying system error.
func (e *OpError) Category() ErrorCategory {
	return Categorize(e.Err)
}

// ErrorCategory groups system call failures by what the caller can do
// about them.
type ErrorCategory uint8

const (
	// CategoryOther is anything not listed below.
	CategoryOther ErrorCategory = iota
	// CategoryHandle means the descriptor is closed or invalid.
	CategoryHandle
	// CategoryWouldBlock means a non-blocking descriptor had nothing ready.
	CategoryWouldBlock
	// CategoryInterrupted means a signal interrupted the call. It is not
	// retried here.
	CategoryInterrupted
	// CategoryIO is a device level I/O failure.
	CategoryIO
	// CategoryMemoryFault means the buffer was not addressable.
	CategoryMemoryFault
	// CategoryNoSpace means the device or quota is exhausted.
	CategoryNoSpace
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryOther:
		return "other"
	case CategoryHandle:
		return "handle"
	case CategoryWouldBlock:
		return "would block"
	case CategoryInterrupted:
		return "interrupted"
	case CategoryIO:
		return "io"
	case CategoryMemoryFault:
		return "memory fault"
	case CategoryNoSpace:
		return "no space"
	default:
		return fmt.Sprintf("ErrorCategory(%d)", uint8(c))
	}
}

// Categorize classifies err by the errno it wraps.
func Categorize(err error) ErrorCategory {
	switch {
	case err == nil:
		return CategoryOther
	case errors.Is(err, os.ErrClosed), errors.Is(err, syscall.EBADF), errors.Is(err, ErrInvalidHandle):
		return CategoryHandle
	case errors.Is(err, syscall.EAGAIN):
		return CategoryWouldBlock
	case errors.Is(err, syscall.EINTR):
		return CategoryInterrupted
	case errors.Is(err, syscall.EIO):
		return CategoryIO
	case errors.Is(err, syscall.EFAULT):
		return CategoryMemoryFault
	case errors.Is(err, syscall.ENOSPC):
		return CategoryNoSpace
	default:
		return CategoryOther
	}
}
