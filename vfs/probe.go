package vfs

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Descriptor is anything exposing a platform descriptor. *os.File, File and
// the descriptor passed to Handle.WithDescriptor all satisfy it.
type Descriptor interface {
	Fd() uintptr
}

// invalidFd is what (*os.File).Fd returns after Close.
const invalidFd = ^uintptr(0)

// Report is the outcome of probing one descriptor.
type Report struct {
	Capability Capability
	// Reason explains a non-direct Capability. ReasonNone when direct.
	Reason Reason
	// Filesystem names the filesystem when it could be identified.
	Filesystem string
	// Err is the query error that produced Reason, if any. It is for
	// diagnostics only; probing never fails.
	Err error
}

// Requirements derives Requirements from the report.
func (r Report) Requirements() Requirements {
	return DeriveRequirements(r.Capability, r.Reason)
}

func (r Report) String() string {
	var b strings.Builder
	b.WriteString(r.Capability.String())
	if r.Reason != ReasonNone {
		fmt.Fprintf(&b, " reason=%q", r.Reason.String())
	}
	if r.Filesystem != "" {
		fmt.Fprintf(&b, " fs=%s", r.Filesystem)
	}
	if r.Err != nil {
		fmt.Fprintf(&b, " err=%q", r.Err.Error())
	}
	return b.String()
}

// Prober detects the Capability of an open descriptor. Implementations
// must not change descriptor state.
type Prober interface {
	Probe(d Descriptor) Report
}

// FilesystemID identifies the filesystem holding a descriptor.
type FilesystemID struct {
	Magic  uint64 // statfs f_type on Linux, 0 elsewhere
	Name   string
	Remote bool
}

func (id FilesystemID) String() string {
	if id.Name != "" {
		return id.Name
	}
	if name, ok := filesystemNames[id.Magic]; ok {
		return name
	}
	if id.Magic != 0 {
		return fmt.Sprintf("%#x", id.Magic)
	}
	return "unknown"
}

// FilesystemQuery identifies the filesystem of a descriptor.
type FilesystemQuery interface {
	Filesystem(fd uintptr) (FilesystemID, error)
}

// SectorQuery adds the direct I/O alignment of a descriptor.
// Alignment returns an error wrapping ErrDirectIONotSupported when the
// filesystem refuses direct I/O, and one wrapping ErrInvalidHandle when
// fd is not a valid descriptor.
type SectorQuery interface {
	FilesystemQuery
	Alignment(fd uintptr) (Alignment, error)
}

// fsTableVersion tracks the filesystem tables below. Bump it when an
// entry is added or reclassified.
const fsTableVersion = 3

// Linux filesystem magic numbers, from linux/magic.h.
const (
	magicExt4     = 0xEF53
	magicXFS      = 0x58465342
	magicBtrfs    = 0x9123683E
	magicF2FS     = 0xF2F52010
	magicOverlay  = 0x794c7630
	magicTmpfs    = 0x01021994
	magicRamfs    = 0x858458f6
	magicNFS      = 0x6969
	magicSMB      = 0x517B
	magicCIFS     = 0xFF534D42
	magicSMB2     = 0xFE534D42
	magicFUSE     = 0x65735546
	magicV9FS     = 0x01021997
	magicProc     = 0x9fa0
	magicSysfs    = 0x62656572
	magicSquashfs = 0x73717368
	magicCeph     = 0x00c36400
	magicZFS      = 0x2FC12FC1
)

var filesystemNames = map[uint64]string{
	magicExt4:     "ext4",
	magicXFS:      "xfs",
	magicBtrfs:    "btrfs",
	magicF2FS:     "f2fs",
	magicOverlay:  "overlayfs",
	magicTmpfs:    "tmpfs",
	magicRamfs:    "ramfs",
	magicNFS:      "nfs",
	magicSMB:      "smb",
	magicCIFS:     "cifs",
	magicSMB2:     "smb2",
	magicFUSE:     "fuse",
	magicV9FS:     "9p",
	magicProc:     "proc",
	magicSysfs:    "sysfs",
	magicSquashfs: "squashfs",
	magicCeph:     "ceph",
	magicZFS:      "zfs",
}

// Filesystems that accept O_DIRECT (or ignore it) without giving the
// durability and cache-bypass semantics direct I/O promises. ZFS before
// 2.3 silently buffers.
var deniedMagic = map[uint64]bool{
	magicTmpfs:    true,
	magicRamfs:    true,
	magicNFS:      true,
	magicSMB:      true,
	magicCIFS:     true,
	magicSMB2:     true,
	magicFUSE:     true,
	magicV9FS:     true,
	magicProc:     true,
	magicSysfs:    true,
	magicSquashfs: true,
	magicCeph:     true,
	magicZFS:      true,
}

// Denied filesystem type names reported by statfs on Darwin and by
// volume information on Windows, lower-cased.
var deniedNames = map[string]bool{
	"nfs":     true,
	"smbfs":   true,
	"afpfs":   true,
	"webdav":  true,
	"macfuse": true,
	"osxfuse": true,
	"devfs":   true,
	"cd9660":  true,
}

// FilesystemDenied reports whether direct I/O must not be used on the
// filesystem even though opening with the flag may succeed.
func FilesystemDenied(id FilesystemID) bool {
	if id.Remote {
		return true
	}
	if deniedMagic[id.Magic] {
		return true
	}
	return deniedNames[strings.ToLower(id.Name)]
}

func invalidDescriptor(d Descriptor) bool {
	return d == nil || isNilDescriptor(d) || d.Fd() == invalidFd
}

func isNilDescriptor(d Descriptor) bool {
	f, ok := d.(*os.File)
	return ok && f == nil
}

func classifyQueryError(err error) Reason {
	switch {
	case errors.Is(err, ErrInvalidHandle):
		return ReasonInvalidHandle
	case errors.Is(err, ErrDirectIONotSupported):
		return ReasonFilesystemUnsupported
	default:
		return ReasonSectorSizeUndetermined
	}
}

// SectorProber reports DirectSupported with the alignment returned by
// Query, unless the filesystem is denied or the query fails.
type SectorProber struct {
	Query SectorQuery
}

// Probe implements Prober.
func (p SectorProber) Probe(d Descriptor) Report {
	if invalidDescriptor(d) {
		return Report{Capability: BufferedOnly(), Reason: ReasonInvalidHandle, Err: ErrInvalidHandle}
	}
	fd := d.Fd()

	id, err := p.Query.Filesystem(fd)
	if err != nil {
		return Report{Capability: BufferedOnly(), Reason: classifyQueryError(err), Err: err}
	}
	rep := Report{Filesystem: id.String()}
	if FilesystemDenied(id) {
		rep.Capability = BufferedOnly()
		rep.Reason = ReasonFilesystemUnsupported
		return rep
	}

	a, err := p.Query.Alignment(fd)
	if err != nil {
		rep.Capability = BufferedOnly()
		rep.Reason = classifyQueryError(err)
		rep.Err = err
		return rep
	}
	if a.IsZero() || a.Validate() != nil {
		rep.Capability = BufferedOnly()
		rep.Reason = ReasonSectorSizeUndetermined
		rep.Err = fmt.Errorf("vfs: probed alignment %s: %w", a, ErrInvalidAlignment)
		return rep
	}
	rep.Capability = DirectSupported(a)
	return rep
}

// UncachedProber reports UncachedOnly for any valid descriptor on a
// filesystem that is not denied. Query may be nil.
type UncachedProber struct {
	Query FilesystemQuery
}

// Probe implements Prober.
func (p UncachedProber) Probe(d Descriptor) Report {
	if invalidDescriptor(d) {
		return Report{Capability: BufferedOnly(), Reason: ReasonInvalidHandle, Err: ErrInvalidHandle}
	}
	rep := Report{Capability: UncachedOnly(), Reason: ReasonPlatformUnsupported}
	if p.Query == nil {
		return rep
	}
	id, err := p.Query.Filesystem(d.Fd())
	if err != nil {
		if r := classifyQueryError(err); r == ReasonInvalidHandle {
			return Report{Capability: BufferedOnly(), Reason: r, Err: err}
		}
		// Cache bypass is a hint; an unidentified filesystem can still take it.
		rep.Err = err
		return rep
	}
	rep.Filesystem = id.String()
	if FilesystemDenied(id) {
		rep.Capability = BufferedOnly()
		rep.Reason = ReasonFilesystemUnsupported
	}
	return rep
}

// UnsupportedProber reports BufferedOnly for every descriptor.
type UnsupportedProber struct{}

// Probe implements Prober.
func (UnsupportedProber) Probe(d Descriptor) Report {
	if invalidDescriptor(d) {
		return Report{Capability: BufferedOnly(), Reason: ReasonInvalidHandle, Err: ErrInvalidHandle}
	}
	return Report{Capability: BufferedOnly(), Reason: ReasonPlatformUnsupported}
}

// ProbePath opens name read-only, probes it with p and closes it.
// A nil p uses DefaultProber.
func ProbePath(name string, p Prober) (Report, error) {
	if p == nil {
		p = DefaultProber()
	}
	f, err := os.Open(name)
	if err != nil {
		return Report{}, &OpError{Op: OpOpen, Path: name, Mode: ResolvedBuffered, Err: err}
	}
	defer f.Close()
	return p.Probe(f), nil
}
