//go:build darwin

package sysio

import (
	"errors"

	"golang.org/x/sys/unix"
)

// FilesystemName returns the filesystem type name (apfs, hfs, nfs, ...).
func FilesystemName(fd uintptr) (string, error) {
	var st unix.Statfs_t
	if err := unix.Fstatfs(int(fd), &st); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(st.Fstypename[:]), nil
}

// FilesystemIsLocal reports whether the filesystem is mounted MNT_LOCAL.
func FilesystemIsLocal(fd uintptr) (bool, error) {
	var st unix.Statfs_t
	if err := unix.Fstatfs(int(fd), &st); err != nil {
		return false, err
	}
	return st.Flags&unix.MNT_LOCAL != 0, nil
}

// SetNoCache toggles F_NOCACHE on fd.
func SetNoCache(fd uintptr, on bool) error {
	v := 0
	if on {
		v = 1
	}
	_, err := unix.FcntlInt(fd, unix.F_NOCACHE, v)
	return err
}

// IsBadDescriptor reports whether err means the descriptor itself is invalid.
func IsBadDescriptor(err error) bool {
	return errors.Is(err, unix.EBADF)
}

// IsUnsupported reports whether err means the filesystem refused the flag.
func IsUnsupported(err error) bool {
	return errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOTSUP)
}
