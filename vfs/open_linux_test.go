//go:build linux

package vfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aalhour/directfile/internal/logging"
	"github.com/aalhour/directfile/internal/sysio"
)

// procfs rejects O_DIRECT in F_SETFL, so a prober that claims direct
// support on /proc/self/status makes the enable step fail after resolution.
func TestOpen_EnableBypassFails(t *testing.T) {
	const path = "/proc/self/status"
	if _, err := os.Stat(path); err != nil {
		t.Skipf("procfs not available: %v", err)
	}
	lying := fakeProber{rep: Report{Capability: DirectSupported(align4k), Filesystem: "proc"}}

	tests := []struct {
		name     string
		mode     Mode
		wantErr  bool
		wantWarn bool
	}{
		{"auto fallback", Auto(FallbackToBuffered), false, true},
		{"auto error", Auto(ErrorOnViolation), true, false},
		{"direct", ModeDirect, true, false},
		{"uncached", ModeUncached, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			opts := testOptions(tt.mode)
			opts.Flag = os.O_RDONLY
			opts.Prober = lying
			opts.Logger = logging.NewLogger(&logs, logging.LevelWarn)

			h, _, err := Open(path, opts)
			if tt.wantErr {
				var opErr *OpError
				if !errors.As(err, &opErr) || opErr.Op != OpOpen {
					t.Fatalf("Open err = %v, want *OpError with OpOpen", err)
				}
				if !errors.Is(err, ErrDirectIONotSupported) {
					t.Errorf("Open err = %v, want ErrDirectIONotSupported", err)
				}
				if h != nil {
					t.Error("Open returned a handle with an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer h.Close()

			if h.Mode() != ResolvedBuffered {
				t.Errorf("mode = %s, want buffered", h.Mode())
			}
			if want := Unknown(ReasonFilesystemUnsupported); h.Requirements() != want {
				t.Errorf("requirements = %s, want %s", h.Requirements(), want)
			}
			out := logs.String()
			if tt.wantWarn && !strings.Contains(out, "WARN [resolve]") {
				t.Errorf("fallback not logged: %q", out)
			}
			if !strings.Contains(out, "enabling direct failed") {
				t.Errorf("log = %q, want the enable failure", out)
			}
		})
	}
}

func TestOpen_SetsODirect(t *testing.T) {
	tests := []struct {
		mode Mode
		want bool
	}{
		{ModeDirect, true},
		{ModeUncached, true},
		{ModeBuffered, false},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			h, rep, err := Open(filepath.Join(t.TempDir(), "f"), testOptions(tt.mode))
			if errors.Is(err, ErrModeUnsatisfiable) {
				t.Skipf("temp dir does not support direct I/O: %s", rep)
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer h.Close()

			err = h.WithDescriptor(func(fd uintptr) error {
				got, err := sysio.IsDirect(fd)
				if err != nil {
					return err
				}
				if got != tt.want {
					t.Errorf("O_DIRECT = %v, want %v", got, tt.want)
				}
				return nil
			})
			if err != nil {
				t.Fatalf("WithDescriptor: %v", err)
			}
		})
	}
}
