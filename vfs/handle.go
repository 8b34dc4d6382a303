package vfs

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/aalhour/directfile/internal/logging"
)

// File is the raw descriptor a Handle owns. *os.File implements it.
type File interface {
	io.Reader
	io.Writer
	io.ReaderAt
	io.WriterAt
	io.Seeker
	io.Closer

	// Fd returns the platform descriptor.
	Fd() uintptr

	// Name returns the path the file was opened with.
	Name() string

	// Stat returns file info.
	Stat() (os.FileInfo, error)

	// Sync flushes the file contents to stable storage.
	Sync() error
}

var _ File = (*os.File)(nil)

// noCopy makes go vet's copylocks check flag copies of a Handle.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Handle owns one open descriptor together with its resolved mode and the
// requirements every transfer is validated against.
//
// A Handle must not be copied; pass *Handle and use Detach to transfer the
// descriptor to a new owner. Close is idempotent. A Handle that becomes
// unreachable without Close releases its descriptor from a runtime cleanup.
//
// Positioned calls (ReadAt, WriteAt) may run concurrently. Read, Write and
// Seek share the descriptor position and must be serialized by the caller.
type Handle struct {
	_ noCopy

	file     File
	mode     Resolved
	req      Requirements
	released atomic.Bool
	cleanup  runtime.Cleanup
	logger   logging.Logger
}

// NewHandle takes ownership of f. No system call is made.
func NewHandle(f File, mode Resolved, req Requirements) *Handle {
	h := &Handle{
		file:   f,
		mode:   mode,
		req:    req,
		logger: logging.Discard,
	}
	if f != nil {
		h.cleanup = runtime.AddCleanup(h, releaseLeaked, f)
	} else {
		h.released.Store(true)
	}
	return h
}

func releaseLeaked(f File) {
	_ = f.Close()
}

// Mode returns the resolved mode.
func (h *Handle) Mode() Resolved {
	return h.mode
}

// Requirements returns the requirements transfers are validated against.
func (h *Handle) Requirements() Requirements {
	return h.req
}

// Name returns the file name, or "" for a released handle.
func (h *Handle) Name() string {
	if h.file == nil {
		return ""
	}
	return h.file.Name()
}

// TransferAlignment returns the alignment this Handle enforces, or the zero
// Alignment when it enforces none.
func (h *Handle) TransferAlignment() Alignment {
	if !h.mode.BypassesCache() {
		return Alignment{}
	}
	a, ok := h.req.Alignment()
	if !ok {
		return Alignment{}
	}
	return a
}

// String describes the handle for logs.
func (h *Handle) String() string {
	return fmt.Sprintf("%s [%s, %s]", h.Name(), h.mode, h.req)
}

func (h *Handle) ensureOpen() error {
	if h.released.Load() || h.file == nil {
		return ErrClosed
	}
	return nil
}

// checkBuffer and checkRest run the three validators in order: buffer
// address, offset, length. They are split so that Read and Write can
// check the buffer before querying the descriptor position.
func (h *Handle) checkBuffer(op Operation, p []byte) (Alignment, bool, error) {
	switch h.mode {
	case ResolvedDirect, ResolvedUncached:
	default:
		return Alignment{}, false, nil
	}

	a, ok := h.req.Alignment()
	if !ok {
		if h.mode == ResolvedDirect {
			return Alignment{}, false, &RequirementsError{Op: op, Mode: h.mode, Reason: h.req.Reason()}
		}
		// Uncached without a known alignment has no contract to enforce.
		return Alignment{}, false, nil
	}

	if len(p) > 0 {
		if addr := AddressOf(p); !a.IsBufferAligned(addr) {
			return a, true, &AlignmentError{Op: op, Constraint: ConstraintBuffer, Address: addr, Required: a.Buffer()}
		}
	}
	return a, true, nil
}

func checkRest(op Operation, a Alignment, n int, off int64) error {
	if !a.IsOffsetAligned(off) {
		return &AlignmentError{Op: op, Constraint: ConstraintOffset, Offset: off, Required: a.Offset()}
	}
	if !a.IsLengthValid(n) {
		return &AlignmentError{Op: op, Constraint: ConstraintLength, Length: n, Required: a.Length()}
	}
	return nil
}

func (h *Handle) validate(op Operation, p []byte, off int64) error {
	a, enforce, err := h.checkBuffer(op, p)
	if err != nil || !enforce {
		return err
	}
	return checkRest(op, a, len(p), off)
}

func (h *Handle) opError(op Operation, err error) error {
	return &OpError{Op: op, Path: h.file.Name(), Mode: h.mode, Err: err}
}

// ReadAt reads len(p) bytes at off. It validates alignment first and
// returns an *AlignmentError or *RequirementsError without touching the
// descriptor on failure. At end of file it returns io.EOF, as io.ReaderAt
// requires; other failures are *OpError tagged OpRead.
func (h *Handle) ReadAt(p []byte, off int64) (int, error) {
	if err := h.ensureOpen(); err != nil {
		return 0, err
	}
	if err := h.validate(OpRead, p, off); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := h.file.ReadAt(p, off)
	if err != nil && err != io.EOF {
		return n, h.opError(OpRead, err)
	}
	return n, err
}

// WriteAt writes p at off after validating alignment. Failures of the
// underlying write are *OpError tagged OpWrite.
func (h *Handle) WriteAt(p []byte, off int64) (int, error) {
	if err := h.ensureOpen(); err != nil {
		return 0, err
	}
	if err := h.validate(OpWrite, p, off); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := h.file.WriteAt(p, off)
	if err != nil {
		return n, h.opError(OpWrite, err)
	}
	return n, nil
}

// position returns the current descriptor offset.
func (h *Handle) position() (int64, error) {
	off, err := h.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, h.opError(OpSeek, err)
	}
	return off, nil
}

func (h *Handle) validateSequential(op Operation, p []byte) error {
	a, enforce, err := h.checkBuffer(op, p)
	if err != nil || !enforce {
		return err
	}
	off, err := h.position()
	if err != nil {
		return err
	}
	return checkRest(op, a, len(p), off)
}

// Read reads from the current position. The position is only advanced
// when validation passes.
func (h *Handle) Read(p []byte) (int, error) {
	if err := h.ensureOpen(); err != nil {
		return 0, err
	}
	if err := h.validateSequential(OpRead, p); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := h.file.Read(p)
	if err != nil && err != io.EOF {
		return n, h.opError(OpRead, err)
	}
	return n, err
}

// Write writes at the current position. The position is only advanced
// when validation passes.
func (h *Handle) Write(p []byte) (int, error) {
	if err := h.ensureOpen(); err != nil {
		return 0, err
	}
	if err := h.validateSequential(OpWrite, p); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := h.file.Write(p)
	if err != nil {
		return n, h.opError(OpWrite, err)
	}
	return n, nil
}

// Seek sets the descriptor position. Alignment is checked by the next
// Read or Write, not here.
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	if err := h.ensureOpen(); err != nil {
		return 0, err
	}
	pos, err := h.file.Seek(offset, whence)
	if err != nil {
		return pos, h.opError(OpSeek, err)
	}
	return pos, nil
}

// Sync flushes the file to stable storage.
func (h *Handle) Sync() error {
	if err := h.ensureOpen(); err != nil {
		return err
	}
	if err := h.file.Sync(); err != nil {
		return h.opError(OpSync, err)
	}
	return nil
}

// Stat returns file info for the descriptor.
func (h *Handle) Stat() (os.FileInfo, error) {
	if err := h.ensureOpen(); err != nil {
		return nil, err
	}
	return h.file.Stat()
}

// WithDescriptor calls fn with the raw descriptor. Ownership stays with
// the Handle; fn must not close or retain fd.
func (h *Handle) WithDescriptor(fn func(fd uintptr) error) error {
	if err := h.ensureOpen(); err != nil {
		return err
	}
	return fn(h.file.Fd())
}

// Close releases the descriptor. Only the first call closes; later calls
// return nil.
func (h *Handle) Close() error {
	if !h.released.CompareAndSwap(false, true) {
		return nil
	}
	if h.file == nil {
		return nil
	}
	h.cleanup.Stop()
	if h.logger != nil {
		h.logger.Debugf(logging.NSHandle+"close %s", h.file.Name())
	}
	if err := h.file.Close(); err != nil {
		return h.opError(OpClose, err)
	}
	return nil
}

// Detach transfers the descriptor to the caller. The Handle behaves as
// closed afterwards, and the caller becomes responsible for closing the File.
func (h *Handle) Detach() (File, error) {
	if !h.released.CompareAndSwap(false, true) || h.file == nil {
		return nil, ErrClosed
	}
	h.cleanup.Stop()
	return h.file, nil
}
