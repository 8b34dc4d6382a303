//go:build windows

package vfs

import (
	"fmt"
	"os"

	"github.com/aalhour/directfile/internal/sysio"
)

// DefaultProber returns the prober for this platform: volume sector size
// for FILE_FLAG_NO_BUFFERING.
func DefaultProber() Prober {
	return SectorProber{Query: windowsQuery{}}
}

type windowsQuery struct{}

func queryError(what string, err error) error {
	if sysio.IsBadDescriptor(err) {
		return fmt.Errorf("%s: %w: %w", what, ErrInvalidHandle, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (windowsQuery) Filesystem(fd uintptr) (FilesystemID, error) {
	p, err := sysio.FinalPath(fd)
	if err != nil {
		return FilesystemID{}, queryError("GetFinalPathNameByHandle", err)
	}
	if sysio.IsRemotePath(p) {
		return FilesystemID{Name: "remote", Remote: true}, nil
	}
	name, err := sysio.VolumeFilesystem(fd)
	if err != nil {
		return FilesystemID{}, queryError("GetVolumeInformationByHandle", err)
	}
	return FilesystemID{Name: name}, nil
}

func (windowsQuery) Alignment(fd uintptr) (Alignment, error) {
	p, err := sysio.FinalPath(fd)
	if err != nil {
		return Alignment{}, queryError("GetFinalPathNameByHandle", err)
	}
	root, err := sysio.VolumeRoot(p)
	if err != nil {
		return Alignment{}, queryError("GetVolumePathName", err)
	}
	size, err := sysio.BytesPerSector(root)
	if err != nil {
		return Alignment{}, queryError("GetDiskFreeSpace", err)
	}
	return UniformAlignment(size)
}

// enableBypass reopens f with FILE_FLAG_NO_BUFFERING and closes the
// original on success. Append mode is not preserved. On error f is
// returned unchanged and still open.
func enableBypass(f *os.File, flag int, r Resolved) (*os.File, error) {
	if !r.BypassesCache() {
		return f, nil
	}
	nf, err := sysio.ReopenNoBuffering(f.Name(), flag, false)
	if err != nil {
		if sysio.IsUnsupported(err) {
			return f, fmt.Errorf("%w: %w", ErrDirectIONotSupported, err)
		}
		return f, err
	}
	_ = f.Close()
	return nf, nil
}
