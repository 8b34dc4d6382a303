//go:build linux

package sysio

import (
	"errors"

	"golang.org/x/sys/unix"
)

// FilesystemMagic returns the f_type of the filesystem holding fd.
func FilesystemMagic(fd uintptr) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Fstatfs(int(fd), &st); err != nil {
		return 0, err
	}
	// f_type is a signed word on some architectures; magic numbers are 32 bits.
	return uint64(uint32(st.Type)), nil
}

// FilesystemBlockSize returns the preferred I/O block size of the filesystem.
func FilesystemBlockSize(fd uintptr) (int, error) {
	var st unix.Statfs_t
	if err := unix.Fstatfs(int(fd), &st); err != nil {
		return 0, err
	}
	return int(st.Bsize), nil
}

// DirectIOAlign queries statx(STATX_DIOALIGN). reported is false when the
// kernel or filesystem does not expose the values (Linux < 6.1, or a
// filesystem without direct I/O); mem and off are zero when the
// filesystem reports that direct I/O is unsupported for this file.
func DirectIOAlign(fd uintptr) (mem, off uint32, reported bool, err error) {
	var stx unix.Statx_t
	flags := unix.AT_EMPTY_PATH | unix.AT_STATX_SYNC_AS_STAT
	if err := unix.Statx(int(fd), "", flags, unix.STATX_DIOALIGN, &stx); err != nil {
		switch {
		case errors.Is(err, unix.ENOSYS),
			errors.Is(err, unix.EINVAL),
			errors.Is(err, unix.EOPNOTSUPP):
			return 0, 0, false, nil
		}
		return 0, 0, false, err
	}
	if stx.Mask&unix.STATX_DIOALIGN == 0 {
		return 0, 0, false, nil
	}
	return stx.Dio_mem_align, stx.Dio_offset_align, true, nil
}

// LogicalSectorSize returns the logical sector size of a block device.
// isBlock is false, with no error, when fd is not a block device.
func LogicalSectorSize(fd uintptr) (size int, isBlock bool, err error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(fd), &st); err != nil {
		return 0, false, err
	}
	if st.Mode&unix.S_IFMT != unix.S_IFBLK {
		return 0, false, nil
	}
	size, err = unix.IoctlGetInt(int(fd), unix.BLKSSZGET)
	if err != nil {
		return 0, true, err
	}
	return size, true, nil
}

// SetDirect toggles O_DIRECT on fd.
func SetDirect(fd uintptr, on bool) error {
	flags, err := unix.FcntlInt(fd, unix.F_GETFL, 0)
	if err != nil {
		return err
	}
	if on {
		flags |= unix.O_DIRECT
	} else {
		flags &^= unix.O_DIRECT
	}
	_, err = unix.FcntlInt(fd, unix.F_SETFL, flags)
	return err
}

// IsDirect reports whether O_DIRECT is set on fd.
func IsDirect(fd uintptr) (bool, error) {
	flags, err := unix.FcntlInt(fd, unix.F_GETFL, 0)
	if err != nil {
		return false, err
	}
	return flags&unix.O_DIRECT != 0, nil
}

// IsBadDescriptor reports whether err means the descriptor itself is invalid.
func IsBadDescriptor(err error) bool {
	return errors.Is(err, unix.EBADF)
}

// IsUnsupported reports whether err means the filesystem refused the flag.
func IsUnsupported(err error) bool {
	return errors.Is(err, unix.EINVAL) || errors.Is(err, unix.EOPNOTSUPP)
}
