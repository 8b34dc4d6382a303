package blockfile

import (
	"errors"
	"fmt"
	"io"

	"github.com/aalhour/directfile/internal/cache"
	"github.com/aalhour/directfile/internal/checksum"
	"github.com/aalhour/directfile/internal/compression"
	"github.com/aalhour/directfile/internal/encoding"
	"github.com/aalhour/directfile/internal/logging"
	"github.com/aalhour/directfile/internal/mempool"
	"github.com/aalhour/directfile/vfs"
)

// Reader reads records from a block file through a Handle. Every read is
// widened to the Handle's alignment, so direct Handles work unchanged.
// Reader does not own the Handle and is safe for concurrent use.
type Reader struct {
	h      *vfs.Handle
	unit   int
	logger logging.Logger

	bufs  *mempool.Pool
	cache *cache.LRU
}

// NewReader returns a Reader over h.
func NewReader(h *vfs.Handle, opts Options) *Reader {
	a := h.TransferAlignment()
	r := &Reader{
		h:      h,
		unit:   recordUnit(h),
		logger: logging.OrDefault(opts.Logger),
		bufs: mempool.NewPool(func(size int) []byte {
			return vfs.NewAlignedBuffer(size, a).Bytes()
		}),
	}
	if opts.CacheBytes > 0 {
		r.cache = cache.NewLRU(opts.CacheBytes)
	}
	return r
}

// readRange returns the bytes in [off, off+n) and the pooled buffer that
// holds them. It reads the enclosing unit-aligned range. Fewer than n
// bytes are returned only at end of file. The caller must release buf.
func (r *Reader) readRange(off int64, n int) (avail, buf []byte, err error) {
	unit := int64(r.unit)
	start := vfs.AlignDown(off, unit)
	end := vfs.AlignUp(off+int64(n), unit)

	buf = r.bufs.Get(int(end - start))
	got, err := r.h.ReadAt(buf, start)
	if err != nil && !errors.Is(err, io.EOF) {
		r.bufs.Put(buf)
		return nil, nil, err
	}
	skip := int(off - start)
	if got <= skip {
		r.bufs.Put(buf)
		return nil, nil, io.EOF
	}
	avail = buf[skip:got]
	if len(avail) > n {
		avail = avail[:n]
	}
	return avail, buf, nil
}

// ReadAt decodes the record at off and returns its data and the offset
// of the next record. It returns io.EOF when off is at or past the end.
// The returned slice belongs to the caller.
func (r *Reader) ReadAt(off int64) (data []byte, next int64, err error) {
	return r.readAt(off, -1)
}

// readAt is ReadAt with the file size when the caller already knows it.
// A negative size is looked up only if the record spans more than one unit.
func (r *Reader) readAt(off, size int64) (data []byte, next int64, err error) {
	if r.cache != nil {
		if data, next, ok := r.cached(off); ok {
			return data, next, nil
		}
	}
	data, next, err = r.decode(off, size)
	if err != nil {
		return nil, 0, err
	}
	if r.cache != nil {
		r.cache.Add(off, encodeCached(data, next))
	}
	return data, next, nil
}

// Cache entries carry the next offset in their first 8 bytes.
func encodeCached(data []byte, next int64) []byte {
	v := make([]byte, 8+len(data))
	encoding.EncodeFixed64(v, uint64(next))
	copy(v[8:], data)
	return v
}

func (r *Reader) cached(off int64) (data []byte, next int64, ok bool) {
	v, ok := r.cache.Get(off)
	if !ok {
		return nil, 0, false
	}
	next = int64(encoding.DecodeFixed64(v))
	return append([]byte(nil), v[8:]...), next, true
}

// CacheStats returns the record cache hit and miss counts.
func (r *Reader) CacheStats() (hits, misses uint64) {
	if r.cache == nil {
		return 0, 0
	}
	return r.cache.Stats()
}

// CacheHitRate returns the fraction of record lookups served from the
// cache, or 0 when the cache is disabled or unused.
func (r *Reader) CacheHitRate() float64 {
	if r.cache == nil {
		return 0
	}
	return r.cache.HitRate()
}

func (r *Reader) decode(off, size int64) (data []byte, next int64, err error) {
	head, headBuf, err := r.readRange(off, r.unit)
	if err != nil {
		return nil, 0, err
	}
	defer r.bufs.Put(headBuf)
	if len(head) < HeaderSize {
		return nil, 0, corruptionf("truncated header at %d: %v", off, io.ErrUnexpectedEOF)
	}
	hdr, err := decodeHeader(head[:HeaderSize])
	if err != nil {
		return nil, 0, fmt.Errorf("record at %d: %w", off, err)
	}

	end := HeaderSize + int(hdr.length)
	rec := head
	if len(rec) < end {
		if size < 0 {
			fi, err := r.h.Stat()
			if err != nil {
				return nil, 0, fmt.Errorf("blockfile: stat: %w", err)
			}
			size = fi.Size()
		}
		if off+int64(end) > size {
			return nil, 0, corruptionf("record at %d claims %d payload bytes, past end of file at %d", off, hdr.length, size)
		}
		var recBuf []byte
		rec, recBuf, err = r.readRange(off, end)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, 0, err
		}
		defer r.bufs.Put(recBuf)
		if len(rec) < end {
			return nil, 0, corruptionf("truncated record at %d: %v", off, io.ErrUnexpectedEOF)
		}
	}
	payload := rec[HeaderSize:end]

	if hdr.checksum != NoChecksum {
		if want := checksum.Compute(hdr.checksum, payload, byte(hdr.compression)); want != hdr.sum {
			return nil, 0, corruptionf("%s mismatch at %d: stored %#08x, computed %#08x", hdr.checksum, off, hdr.sum, want)
		}
	}

	data, err = compression.Decompress(hdr.compression, payload)
	if err != nil {
		return nil, 0, corruptionf("%s decompress at %d: %v", hdr.compression, off, err)
	}
	if hdr.compression == NoCompression {
		data = append([]byte(nil), payload...)
	}
	return data, off + hdr.recordSize(), nil
}

// Scan calls fn for every record in file order. It stops at the first
// error from fn or from decoding.
func (r *Reader) Scan(fn func(off int64, data []byte) error) error {
	fi, err := r.h.Stat()
	if err != nil {
		return fmt.Errorf("blockfile: stat: %w", err)
	}
	size := fi.Size()

	count := 0
	for off := int64(0); off < size; {
		data, next, err := r.readAt(off, size)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if err := fn(off, data); err != nil {
			return err
		}
		count++
		off = next
	}
	r.logger.Debugf(logging.NSBlockFile+"scanned %d records from %s", count, r.h.Name())
	return nil
}
