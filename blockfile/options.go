package blockfile

import (
	"fmt"

	"github.com/aalhour/directfile/internal/logging"
)

// Options configures a Writer or Reader. Readers take the codec and
// checksum from each record header and only use CacheBytes and Logger.
type Options struct {
	Compression Compression
	Checksum    Checksum

	// CacheBytes bounds the Reader's decoded record cache. Zero disables it.
	CacheBytes uint64

	// Logger defaults to a WARN-level logger on stderr.
	Logger logging.Logger
}

// DefaultOptions returns snappy compression with XXH3 checksums.
func DefaultOptions() Options {
	return Options{
		Compression: SnappyCompression,
		Checksum:    XXH3Checksum,
	}
}

// Validate checks that the codec and checksum are supported.
func (o Options) Validate() error {
	if !o.Compression.IsSupported() {
		return fmt.Errorf("blockfile: unsupported compression %s", o.Compression)
	}
	if !o.Checksum.IsSupported() {
		return fmt.Errorf("blockfile: unsupported checksum %s", o.Checksum)
	}
	return nil
}
