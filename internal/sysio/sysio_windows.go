//go:build windows

package sysio

import (
	"errors"
	"os"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32              = windows.NewLazySystemDLL("kernel32.dll")
	procGetDiskFreeSpaceW    = modkernel32.NewProc("GetDiskFreeSpaceW")
	fileFlagNoBuffering      = uint32(windows.FILE_FLAG_NO_BUFFERING)
	fileFlagWriteThrough     = uint32(windows.FILE_FLAG_WRITE_THROUGH)
	errVolumeRootUnavailable = errors.New("sysio: volume root unavailable")
)

// VolumeFilesystem returns the filesystem name (NTFS, ReFS, FAT32, ...) of
// the volume holding fd.
func VolumeFilesystem(fd uintptr) (string, error) {
	buf := make([]uint16, windows.MAX_PATH+1)
	err := windows.GetVolumeInformationByHandle(windows.Handle(fd), nil, 0, nil, nil, nil, &buf[0], uint32(len(buf)))
	if err != nil {
		return "", err
	}
	return windows.UTF16ToString(buf), nil
}

// FILE_NAME_NORMALIZED for GetFinalPathNameByHandle.
const fileNameNormalized = 0x0

// FinalPath returns the normalized path of the open file.
func FinalPath(fd uintptr) (string, error) {
	buf := make([]uint16, windows.MAX_LONG_PATH)
	n, err := windows.GetFinalPathNameByHandle(windows.Handle(fd), &buf[0], uint32(len(buf)), fileNameNormalized)
	if err != nil {
		return "", err
	}
	return windows.UTF16ToString(buf[:n]), nil
}

// IsRemotePath reports whether a final path points at a network share.
func IsRemotePath(p string) bool {
	return strings.HasPrefix(p, `\\?\UNC\`) || (strings.HasPrefix(p, `\\`) && !strings.HasPrefix(p, `\\?\`))
}

// VolumeRoot returns the mount point of the volume holding path p.
func VolumeRoot(p string) (string, error) {
	name, err := windows.UTF16PtrFromString(p)
	if err != nil {
		return "", err
	}
	buf := make([]uint16, windows.MAX_LONG_PATH)
	if err := windows.GetVolumePathName(name, &buf[0], uint32(len(buf))); err != nil {
		return "", err
	}
	root := windows.UTF16ToString(buf)
	if root == "" {
		return "", errVolumeRootUnavailable
	}
	return root, nil
}

// BytesPerSector returns the sector size of the volume mounted at root.
func BytesPerSector(root string) (int, error) {
	name, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return 0, err
	}
	var sectorsPerCluster, bytesPerSector, freeClusters, totalClusters uint32
	r, _, e := procGetDiskFreeSpaceW.Call(
		uintptr(unsafe.Pointer(name)),
		uintptr(unsafe.Pointer(&sectorsPerCluster)),
		uintptr(unsafe.Pointer(&bytesPerSector)),
		uintptr(unsafe.Pointer(&freeClusters)),
		uintptr(unsafe.Pointer(&totalClusters)),
	)
	if r == 0 {
		return 0, e
	}
	return int(bytesPerSector), nil
}

// ReopenNoBuffering opens name again with FILE_FLAG_NO_BUFFERING and the
// access implied by the os.OpenFile flag. Creation and truncation flags are
// ignored because the file already exists.
func ReopenNoBuffering(name string, flag int, writeThrough bool) (*os.File, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	var access uint32
	switch flag & (os.O_RDONLY | os.O_WRONLY | os.O_RDWR) {
	case os.O_WRONLY:
		access = windows.GENERIC_WRITE
	case os.O_RDWR:
		access = windows.GENERIC_READ | windows.GENERIC_WRITE
	default:
		access = windows.GENERIC_READ
	}
	attrs := fileFlagNoBuffering
	if writeThrough {
		attrs |= fileFlagWriteThrough
	}
	h, err := windows.CreateFile(p, access,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil, windows.OPEN_EXISTING, attrs, 0)
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(h), name), nil
}

// IsBadDescriptor reports whether err means the handle itself is invalid.
func IsBadDescriptor(err error) bool {
	return errors.Is(err, windows.ERROR_INVALID_HANDLE)
}

// IsUnsupported reports whether err means the volume refused the flag.
func IsUnsupported(err error) bool {
	return errors.Is(err, windows.ERROR_INVALID_PARAMETER) || errors.Is(err, windows.ERROR_NOT_SUPPORTED)
}
