package vfs

import (
	"fmt"
	"os"

	"github.com/aalhour/directfile/internal/logging"
)

// Options configures Open.
type Options struct {
	// Mode is the requested I/O mode. The zero value is Auto(FallbackToBuffered).
	Mode Mode

	// Flag and Perm are passed to os.OpenFile.
	Flag int
	Perm os.FileMode

	// Prober detects capability. nil uses DefaultProber.
	Prober Prober

	// Logger receives fallback warnings and resolution details.
	// nil uses a WARN-level logger on stderr.
	Logger logging.Logger
}

// DefaultOptions returns options for a read-write file created on demand,
// using direct I/O when the platform allows it.
func DefaultOptions() Options {
	return Options{
		Mode: Auto(FallbackToBuffered),
		Flag: os.O_RDWR | os.O_CREATE,
		Perm: 0644,
	}
}

// Validate checks the options for consistency.
func (o Options) Validate() error {
	if err := o.Mode.Validate(); err != nil {
		return err
	}
	if o.Perm&^os.ModePerm != 0 {
		return fmt.Errorf("vfs: invalid permission bits %v", o.Perm)
	}
	return nil
}

// Open opens name, probes it, resolves opts.Mode and returns a Handle
// owning the descriptor. The Report is returned even when resolution
// fails so callers can see why.
func Open(name string, opts Options) (*Handle, Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, Report{}, err
	}
	f, err := os.OpenFile(name, opts.Flag, opts.Perm)
	if err != nil {
		return nil, Report{}, &OpError{Op: OpOpen, Path: name, Mode: ResolvedBuffered, Err: err}
	}
	return openFile(f, opts)
}

// OpenFile wraps an already open file. opts.Flag must describe how f was
// opened; it is used when the platform has to reopen the file to bypass
// the cache. OpenFile takes ownership of f and closes it on error.
func OpenFile(f *os.File, opts Options) (*Handle, Report, error) {
	if err := opts.Validate(); err != nil {
		_ = f.Close()
		return nil, Report{}, err
	}
	return openFile(f, opts)
}

func openFile(f *os.File, opts Options) (*Handle, Report, error) {
	logger := logging.OrDefault(opts.Logger)
	prober := opts.Prober
	if prober == nil {
		prober = DefaultProber()
	}
	name := f.Name()

	rep := prober.Probe(f)
	logger.Debugf(logging.NSProbe+"%s: %s", name, rep)

	resolved, err := Resolve(opts.Mode, rep.Capability)
	if err != nil {
		_ = f.Close()
		return nil, rep, err
	}
	req := rep.Requirements()

	fallback := false
	if p, ok := opts.Mode.Policy(); ok && p == FallbackToBuffered {
		fallback = true
		if resolved == ResolvedBuffered {
			logger.Warnf(logging.NSResolve+"%s: direct I/O unavailable (%s), falling back to buffered", name, req.Reason())
		}
	}

	nf, err := enableBypass(f, opts.Flag, resolved)
	switch {
	case err == nil:
		f = nf
	case fallback:
		logger.Warnf(logging.NSResolve+"%s: enabling %s failed, falling back to buffered: %v", name, resolved, err)
		resolved = ResolvedBuffered
		req = Unknown(ReasonFilesystemUnsupported)
	default:
		_ = f.Close()
		return nil, rep, &OpError{Op: OpOpen, Path: name, Mode: resolved, Err: err}
	}

	h := NewHandle(f, resolved, req)
	h.logger = logger
	logger.Debugf(logging.NSResolve+"%s: requested %s, resolved %s, %s", name, opts.Mode, resolved, req)
	return h, rep, nil
}
