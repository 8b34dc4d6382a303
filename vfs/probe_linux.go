//go:build linux

package vfs

import (
	"fmt"
	"os"

	"github.com/aalhour/directfile/internal/sysio"
)

// DefaultProber returns the prober for this platform: statx, BLKSSZGET
// and fstatfs on Linux.
func DefaultProber() Prober {
	return SectorProber{Query: linuxQuery{}}
}

type linuxQuery struct{}

func queryError(what string, err error) error {
	if sysio.IsBadDescriptor(err) {
		return fmt.Errorf("%s: %w: %w", what, ErrInvalidHandle, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (linuxQuery) Filesystem(fd uintptr) (FilesystemID, error) {
	magic, err := sysio.FilesystemMagic(fd)
	if err != nil {
		return FilesystemID{}, queryError("fstatfs", err)
	}
	return FilesystemID{Magic: magic}, nil
}

// Alignment prefers the kernel's own answer (Linux 6.1+), then the
// logical sector size of a block device, then the filesystem block size.
func (linuxQuery) Alignment(fd uintptr) (Alignment, error) {
	mem, off, reported, err := sysio.DirectIOAlign(fd)
	if err != nil {
		return Alignment{}, queryError("statx", err)
	}
	if reported {
		if mem == 0 || off == 0 {
			return Alignment{}, ErrDirectIONotSupported
		}
		return NewAlignment(int(mem), int(off), int(off))
	}

	size, isBlock, err := sysio.LogicalSectorSize(fd)
	if err != nil {
		return Alignment{}, queryError("BLKSSZGET", err)
	}
	if isBlock {
		return UniformAlignment(size)
	}

	bs, err := sysio.FilesystemBlockSize(fd)
	if err != nil {
		return Alignment{}, queryError("fstatfs", err)
	}
	return UniformAlignment(bs)
}

// enableBypass sets O_DIRECT on f. Uncached also maps to O_DIRECT since
// Linux has no other cache bypass. f is returned unchanged.
func enableBypass(f *os.File, _ int, r Resolved) (*os.File, error) {
	if !r.BypassesCache() {
		return f, nil
	}
	if err := sysio.SetDirect(f.Fd(), true); err != nil {
		if sysio.IsUnsupported(err) {
			return f, fmt.Errorf("%w: %w", ErrDirectIONotSupported, err)
		}
		return f, err
	}
	return f, nil
}
