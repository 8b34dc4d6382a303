package blockfile

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/aalhour/directfile/internal/checksum"
	"github.com/aalhour/directfile/internal/compression"
	"github.com/aalhour/directfile/internal/logging"
	"github.com/aalhour/directfile/internal/testutil"
	"github.com/aalhour/directfile/vfs"
)

// recordUnit returns the padding unit for records written through h.
func recordUnit(h *vfs.Handle) int {
	a := h.TransferAlignment()
	return max(vfs.DefaultBlockSize, a.Offset(), a.Length())
}

// Writer appends records to a block file through a Handle. Each Append is
// a single aligned WriteAt, so the Handle may be in any resolved mode.
// Writer does not own the Handle.
type Writer struct {
	h      *vfs.Handle
	opts   Options
	logger logging.Logger

	unit      int
	unitShift uint8

	mu     sync.Mutex
	offset int64
	buf    *vfs.AlignedBuffer
}

// NewWriter returns a Writer appending after the existing records of h.
// The current file size must be a whole number of record units.
func NewWriter(h *vfs.Handle, opts Options) (*Writer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	unit := recordUnit(h)
	shift := bits.TrailingZeros(uint(unit))
	if shift < minUnitShift || shift > maxUnitShift {
		return nil, fmt.Errorf("blockfile: record unit %d out of range", unit)
	}

	fi, err := h.Stat()
	if err != nil {
		return nil, fmt.Errorf("blockfile: stat: %w", err)
	}
	size := fi.Size()
	if size%int64(unit) != 0 {
		return nil, fmt.Errorf("%w: file size %d is not a multiple of record unit %d", ErrCorruption, size, unit)
	}

	w := &Writer{
		h:         h,
		opts:      opts,
		logger:    logging.OrDefault(opts.Logger),
		unit:      unit,
		unitShift: uint8(shift),
		offset:    size,
	}
	w.logger.Debugf(logging.NSBlockFile+"writer %s: unit %d, offset %d, %s/%s",
		h.Name(), unit, size, opts.Compression, opts.Checksum)
	return w, nil
}

// Append stores data as one record and returns the record's offset.
// Data that does not shrink under the configured codec is stored raw.
func (w *Writer) Append(data []byte) (int64, error) {
	ctype := w.opts.Compression
	payload, err := compression.Compress(ctype, data)
	if err != nil {
		return 0, fmt.Errorf("blockfile: compress: %w", err)
	}
	if ctype != NoCompression && len(payload) >= len(data) {
		ctype, payload = NoCompression, data
	}
	if len(payload) > MaxPayloadSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, len(payload))
	}

	hdr := header{
		compression: ctype,
		checksum:    w.opts.Checksum,
		unitShift:   w.unitShift,
		length:      uint32(len(payload)),
		sum:         checksum.Compute(w.opts.Checksum, payload, byte(ctype)),
	}
	size := hdr.recordSize()

	w.mu.Lock()
	defer w.mu.Unlock()

	buf := w.buffer(int(size))
	rec := buf.Bytes()
	if err := hdr.encode(rec[:HeaderSize]); err != nil {
		return 0, err
	}
	copy(rec[HeaderSize:], payload)

	off := w.offset
	testutil.MaybeKill(testutil.KPBlockFileAppend0)
	if _, err := w.h.WriteAt(rec, off); err != nil {
		return 0, fmt.Errorf("blockfile: append at %d: %w", off, err)
	}
	testutil.MaybeKill(testutil.KPBlockFileAppend1)
	w.offset += size
	return off, nil
}

// buffer returns a zeroed aligned buffer of exactly size bytes.
func (w *Writer) buffer(size int) *vfs.AlignedBuffer {
	if w.buf == nil || w.buf.Cap() < size {
		w.buf = vfs.NewAlignedBuffer(size, w.h.TransferAlignment())
		return w.buf
	}
	w.buf.Clear()
	_ = w.buf.Resize(size)
	return w.buf
}

// Offset returns where the next record will be written.
func (w *Writer) Offset() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.offset
}

// Unit returns the record padding unit.
func (w *Writer) Unit() int {
	return w.unit
}

// Sync flushes written records to stable storage.
func (w *Writer) Sync() error {
	testutil.MaybeKill(testutil.KPBlockFileSync0)
	if err := w.h.Sync(); err != nil {
		return err
	}
	testutil.MaybeKill(testutil.KPBlockFileSync1)
	return nil
}
