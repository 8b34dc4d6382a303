package vfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

type fakeQuery struct {
	id       FilesystemID
	fsErr    error
	align    Alignment
	alignErr error
}

func (q fakeQuery) Filesystem(uintptr) (FilesystemID, error) { return q.id, q.fsErr }
func (q fakeQuery) Alignment(uintptr) (Alignment, error)     { return q.align, q.alignErr }

type fakeDescriptor uintptr

func (d fakeDescriptor) Fd() uintptr { return uintptr(d) }

func TestSectorProber(t *testing.T) {
	ext4 := FilesystemID{Magic: magicExt4}
	a4k := MustUniformAlignment(4096)

	tests := []struct {
		name       string
		query      fakeQuery
		wantKind   CapabilityKind
		wantReason Reason
		wantFS     string
	}{
		{"ext4 direct", fakeQuery{id: ext4, align: a4k}, KindDirectSupported, ReasonNone, "ext4"},
		{"tmpfs denied", fakeQuery{id: FilesystemID{Magic: magicTmpfs}, align: a4k}, KindBufferedOnly, ReasonFilesystemUnsupported, "tmpfs"},
		{"nfs denied", fakeQuery{id: FilesystemID{Magic: magicNFS}, align: a4k}, KindBufferedOnly, ReasonFilesystemUnsupported, "nfs"},
		{"remote denied", fakeQuery{id: FilesystemID{Name: "remote", Remote: true}, align: a4k}, KindBufferedOnly, ReasonFilesystemUnsupported, "remote"},
		{"refuses direct", fakeQuery{id: ext4, alignErr: ErrDirectIONotSupported}, KindBufferedOnly, ReasonFilesystemUnsupported, "ext4"},
		{"bad descriptor", fakeQuery{id: ext4, alignErr: fmt.Errorf("statx: %w", ErrInvalidHandle)}, KindBufferedOnly, ReasonInvalidHandle, "ext4"},
		{"query failure", fakeQuery{id: ext4, alignErr: errors.New("EIO")}, KindBufferedOnly, ReasonSectorSizeUndetermined, "ext4"},
		{"zero alignment", fakeQuery{id: ext4}, KindBufferedOnly, ReasonSectorSizeUndetermined, "ext4"},
		{"non power of two", fakeQuery{id: ext4, align: Alignment{buffer: 520, offset: 520, length: 520}}, KindBufferedOnly, ReasonSectorSizeUndetermined, "ext4"},
		{"filesystem bad descriptor", fakeQuery{fsErr: ErrInvalidHandle}, KindBufferedOnly, ReasonInvalidHandle, ""},
		{"filesystem failure", fakeQuery{fsErr: errors.New("EIO")}, KindBufferedOnly, ReasonSectorSizeUndetermined, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := SectorProber{Query: tt.query}.Probe(fakeDescriptor(3))
			if rep.Capability.Kind() != tt.wantKind {
				t.Errorf("kind = %s, want %s", rep.Capability.Kind(), tt.wantKind)
			}
			if rep.Reason != tt.wantReason {
				t.Errorf("reason = %s, want %s", rep.Reason, tt.wantReason)
			}
			if rep.Filesystem != tt.wantFS {
				t.Errorf("filesystem = %q, want %q", rep.Filesystem, tt.wantFS)
			}

			req := rep.Requirements()
			if req.IsKnown() != (tt.wantKind == KindDirectSupported) {
				t.Errorf("requirements %s inconsistent with %s", req, rep.Capability)
			}
			if !req.IsKnown() && req.Reason() != tt.wantReason {
				t.Errorf("requirements reason = %s, want %s", req.Reason(), tt.wantReason)
			}
		})
	}
}

func TestProbers_InvalidDescriptor(t *testing.T) {
	closed, err := os.Create(filepath.Join(t.TempDir(), "closed"))
	if err != nil {
		t.Fatal(err)
	}
	closed.Close()

	live, err := os.Create(filepath.Join(t.TempDir(), "live"))
	if err != nil {
		t.Fatal(err)
	}
	defer live.Close()
	masked := NewFaultInjectionFile(live)
	masked.SetFd(invalidFd)

	var nilFile *os.File
	descriptors := map[string]Descriptor{
		"nil":         nil,
		"typed nil":   nilFile,
		"closed":      closed,
		"invalid fd":  fakeDescriptor(invalidFd),
		"masked file": masked,
	}
	probers := map[string]Prober{
		"sector":      SectorProber{Query: fakeQuery{id: FilesystemID{Magic: magicExt4}, align: MustUniformAlignment(512)}},
		"uncached":    UncachedProber{},
		"unsupported": UnsupportedProber{},
	}

	for pname, p := range probers {
		for dname, d := range descriptors {
			rep := p.Probe(d)
			if rep.Capability.Kind() != KindBufferedOnly || rep.Reason != ReasonInvalidHandle {
				t.Errorf("%s/%s: got %s", pname, dname, rep)
			}
		}
	}
}

func TestUncachedProber(t *testing.T) {
	tests := []struct {
		name       string
		query      FilesystemQuery
		wantKind   CapabilityKind
		wantReason Reason
	}{
		{"no query", nil, KindUncachedOnly, ReasonPlatformUnsupported},
		{"apfs", fakeQuery{id: FilesystemID{Name: "apfs"}}, KindUncachedOnly, ReasonPlatformUnsupported},
		{"smbfs", fakeQuery{id: FilesystemID{Name: "smbfs"}}, KindBufferedOnly, ReasonFilesystemUnsupported},
		{"not local", fakeQuery{id: FilesystemID{Name: "hfs", Remote: true}}, KindBufferedOnly, ReasonFilesystemUnsupported},
		{"query failure", fakeQuery{fsErr: errors.New("EIO")}, KindUncachedOnly, ReasonPlatformUnsupported},
		{"bad descriptor", fakeQuery{fsErr: ErrInvalidHandle}, KindBufferedOnly, ReasonInvalidHandle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := UncachedProber{Query: tt.query}.Probe(fakeDescriptor(5))
			if rep.Capability.Kind() != tt.wantKind || rep.Reason != tt.wantReason {
				t.Errorf("got %s, want %s/%s", rep, tt.wantKind, tt.wantReason)
			}
			if rep.Requirements().IsKnown() {
				t.Error("uncached prober must never yield known requirements")
			}
		})
	}
}

func TestUnsupportedProber(t *testing.T) {
	rep := UnsupportedProber{}.Probe(fakeDescriptor(7))
	if rep.Capability != BufferedOnly() || rep.Reason != ReasonPlatformUnsupported {
		t.Errorf("got %s", rep)
	}
}

func TestFilesystemDenied(t *testing.T) {
	tests := []struct {
		id   FilesystemID
		want bool
	}{
		{FilesystemID{Magic: magicExt4}, false},
		{FilesystemID{Magic: magicXFS}, false},
		{FilesystemID{Magic: magicBtrfs}, false},
		{FilesystemID{Magic: magicTmpfs}, true},
		{FilesystemID{Magic: magicRamfs}, true},
		{FilesystemID{Magic: magicCIFS}, true},
		{FilesystemID{Magic: magicSMB2}, true},
		{FilesystemID{Magic: magicFUSE}, true},
		{FilesystemID{Magic: magicV9FS}, true},
		{FilesystemID{Magic: magicProc}, true},
		{FilesystemID{Magic: magicSquashfs}, true},
		{FilesystemID{Name: "NTFS"}, false},
		{FilesystemID{Name: "NFS"}, true},
		{FilesystemID{Name: "apfs"}, false},
		{FilesystemID{Name: "NTFS", Remote: true}, true},
	}
	for _, tt := range tests {
		if got := FilesystemDenied(tt.id); got != tt.want {
			t.Errorf("FilesystemDenied(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestFilesystemID_String(t *testing.T) {
	tests := []struct {
		id   FilesystemID
		want string
	}{
		{FilesystemID{Magic: magicXFS}, "xfs"},
		{FilesystemID{Name: "ReFS"}, "ReFS"},
		{FilesystemID{Magic: 0x1234}, "0x1234"},
		{FilesystemID{}, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFilesystemTables_Consistent(t *testing.T) {
	for magic := range deniedMagic {
		if _, ok := filesystemNames[magic]; !ok {
			t.Errorf("denied magic %#x (table v%d) has no name", magic, fsTableVersion)
		}
	}
}

func TestDefaultProber_RealFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "probe"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rep := DefaultProber().Probe(f)
	req := rep.Requirements()
	switch rep.Capability.Kind() {
	case KindDirectSupported:
		a, ok := req.Alignment()
		if !ok {
			t.Fatal("direct capability without known requirements")
		}
		if err := a.Validate(); err != nil {
			t.Errorf("probed alignment invalid: %v", err)
		}
		if rep.Reason != ReasonNone {
			t.Errorf("direct capability with reason %s", rep.Reason)
		}
	default:
		if req.IsKnown() {
			t.Errorf("%s capability with known requirements", rep.Capability)
		}
	}
	t.Logf("probe %s: %s", f.Name(), rep)
}

func TestProbePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	rep, err := ProbePath(path, UnsupportedProber{})
	if err != nil {
		t.Fatalf("ProbePath: %v", err)
	}
	if rep.Reason != ReasonPlatformUnsupported {
		t.Errorf("reason = %s", rep.Reason)
	}

	_, err = ProbePath(filepath.Join(t.TempDir(), "missing"), nil)
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Op != OpOpen {
		t.Fatalf("ProbePath(missing) err = %v, want OpError(open)", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error %v should match os.ErrNotExist", err)
	}
}
