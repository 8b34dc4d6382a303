//go:build darwin

package vfs

import (
	"fmt"
	"os"

	"github.com/aalhour/directfile/internal/sysio"
)

// DefaultProber returns the prober for this platform. Darwin only offers
// the F_NOCACHE hint, so capability is at most UncachedOnly.
func DefaultProber() Prober {
	return UncachedProber{Query: darwinQuery{}}
}

type darwinQuery struct{}

func (darwinQuery) Filesystem(fd uintptr) (FilesystemID, error) {
	name, err := sysio.FilesystemName(fd)
	if err != nil {
		if sysio.IsBadDescriptor(err) {
			return FilesystemID{}, fmt.Errorf("fstatfs: %w: %w", ErrInvalidHandle, err)
		}
		return FilesystemID{}, fmt.Errorf("fstatfs: %w", err)
	}
	local, err := sysio.FilesystemIsLocal(fd)
	if err != nil {
		return FilesystemID{}, fmt.Errorf("fstatfs: %w", err)
	}
	return FilesystemID{Name: name, Remote: !local}, nil
}

// enableBypass sets F_NOCACHE on f. f is returned unchanged.
func enableBypass(f *os.File, _ int, r Resolved) (*os.File, error) {
	if !r.BypassesCache() {
		return f, nil
	}
	if err := sysio.SetNoCache(f.Fd(), true); err != nil {
		if sysio.IsUnsupported(err) {
			return f, fmt.Errorf("%w: %w", ErrDirectIONotSupported, err)
		}
		return f, err
	}
	return f, nil
}
