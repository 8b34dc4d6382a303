//go:build !linux && !darwin && !windows

package vfs

import "os"

// DefaultProber returns UnsupportedProber: this platform has no cache
// bypass.
func DefaultProber() Prober {
	return UnsupportedProber{}
}

func enableBypass(f *os.File, _ int, r Resolved) (*os.File, error) {
	if r.BypassesCache() {
		return f, ErrDirectIONotSupported
	}
	return f, nil
}
