//go:build crashtest

package blockfile

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/aalhour/directfile/internal/testutil"
	"github.com/aalhour/directfile/vfs"
)

const crashChildEnv = "DIRECTFILE_BLOCKFILE_CRASH_DIR"

// crashChild appends "a" and "b" to dir/records with kill points disarmed,
// then re-arms and appends and syncs "c". Reaching the end exits 1.
func crashChild(dir string) {
	testutil.DisarmKillPoint()

	opts := vfs.DefaultOptions()
	h, _, err := vfs.Open(filepath.Join(dir, "records"), opts)
	if err != nil {
		os.Exit(2)
	}
	w, err := NewWriter(h, DefaultOptions())
	if err != nil {
		os.Exit(2)
	}
	for _, rec := range []string{"a", "b"} {
		if _, err := w.Append([]byte(rec)); err != nil {
			os.Exit(2)
		}
	}
	testutil.ArmKillPoint()
	if _, err := w.Append([]byte("c")); err != nil {
		os.Exit(2)
	}
	if err := w.Sync(); err != nil {
		os.Exit(2)
	}
	os.Exit(1)
}

func TestCrash_KillPoints(t *testing.T) {
	if dir := os.Getenv(crashChildEnv); dir != "" {
		crashChild(dir)
	}

	tests := []struct {
		point string
		want  []string
	}{
		{testutil.KPBlockFileAppend0, []string{"a", "b"}},
		{testutil.KPBlockFileAppend1, []string{"a", "b", "c"}},
		{testutil.KPBlockFileSync0, []string{"a", "b", "c"}},
		{testutil.KPBlockFileSync1, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.point, func(t *testing.T) {
			dir := t.TempDir()
			cmd := exec.Command(os.Args[0], "-test.run=^TestCrash_KillPoints$")
			cmd.Env = append(os.Environ(), crashChildEnv+"="+dir, testutil.KillPointEnvVar+"="+tt.point)
			if err := cmd.Run(); err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					t.Fatalf("child exited with %d, want 0 at %s", exitErr.ExitCode(), tt.point)
				}
				t.Fatal(err)
			}

			h := openHandle(t, filepath.Join(dir, "records"), vfs.Auto(vfs.FallbackToBuffered))
			var got []string
			if err := NewReader(h, testOptions(NoCompression, NoChecksum)).Scan(func(_ int64, data []byte) error {
				got = append(got, string(data))
				return nil
			}); err != nil {
				t.Fatalf("Scan after crash: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("records = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("record %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
