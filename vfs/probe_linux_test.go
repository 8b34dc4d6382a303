//go:build linux

package vfs

import (
	"testing"
)

func TestLinuxProber_ProcIsDenied(t *testing.T) {
	rep, err := ProbePath("/proc/self/status", nil)
	if err != nil {
		t.Skipf("procfs not available: %v", err)
	}
	if rep.Filesystem != "proc" {
		t.Fatalf("filesystem = %q, want proc", rep.Filesystem)
	}
	if rep.Capability.Kind() != KindBufferedOnly || rep.Reason != ReasonFilesystemUnsupported {
		t.Errorf("got %s, want buffered-only/filesystem unsupported", rep)
	}
}

func TestLinuxProber_TmpfsIsDenied(t *testing.T) {
	rep, err := ProbePath("/dev/shm", nil)
	if err != nil {
		t.Skipf("/dev/shm not available: %v", err)
	}
	if rep.Filesystem != "tmpfs" {
		t.Skipf("/dev/shm is %q, not tmpfs", rep.Filesystem)
	}
	if rep.Capability.Kind() != KindBufferedOnly || rep.Reason != ReasonFilesystemUnsupported {
		t.Errorf("got %s, want buffered-only/filesystem unsupported", rep)
	}
}
