package vfs

import (
	"errors"
	"os"
	"sync"
)

var (
	// ErrInjectedReadError is returned when a read error is injected.
	ErrInjectedReadError = errors.New("vfs: injected read error")

	// ErrInjectedWriteError is returned when a write error is injected.
	ErrInjectedWriteError = errors.New("vfs: injected write error")

	// ErrInjectedSyncError is returned when a sync error is injected.
	ErrInjectedSyncError = errors.New("vfs: injected sync error")
)

// FaultInjectionFile wraps a File, counts the calls that reach it and
// fails them on demand. Tests use it to prove that a rejected transfer
// never reached the descriptor and that syscall failures are tagged.
type FaultInjectionFile struct {
	base File

	mu       sync.Mutex
	calls    map[Operation]int
	injected map[Operation]error
	fd       *uintptr
}

var _ File = (*FaultInjectionFile)(nil)

// NewFaultInjectionFile wraps base.
func NewFaultInjectionFile(base File) *FaultInjectionFile {
	return &FaultInjectionFile{
		base:     base,
		calls:    make(map[Operation]int),
		injected: make(map[Operation]error),
	}
}

// InjectError makes every later call of kind op fail with err. A nil err
// clears the injection for op.
func (f *FaultInjectionFile) InjectError(op Operation, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.injected, op)
		return
	}
	f.injected[op] = err
}

// ClearErrors removes every injection.
func (f *FaultInjectionFile) ClearErrors() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.injected)
}

// SetFd overrides the descriptor reported by Fd.
func (f *FaultInjectionFile) SetFd(fd uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fd = &fd
}

// Calls returns how many calls of kind op reached the wrapper.
func (f *FaultInjectionFile) Calls(op Operation) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls returns the number of calls of every kind.
func (f *FaultInjectionFile) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *FaultInjectionFile) enter(op Operation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.injected[op]
}

func (f *FaultInjectionFile) Read(p []byte) (int, error) {
	if err := f.enter(OpRead); err != nil {
		return 0, err
	}
	return f.base.Read(p)
}

func (f *FaultInjectionFile) ReadAt(p []byte, off int64) (int, error) {
	if err := f.enter(OpRead); err != nil {
		return 0, err
	}
	return f.base.ReadAt(p, off)
}

func (f *FaultInjectionFile) Write(p []byte) (int, error) {
	if err := f.enter(OpWrite); err != nil {
		return 0, err
	}
	return f.base.Write(p)
}

func (f *FaultInjectionFile) WriteAt(p []byte, off int64) (int, error) {
	if err := f.enter(OpWrite); err != nil {
		return 0, err
	}
	return f.base.WriteAt(p, off)
}

func (f *FaultInjectionFile) Seek(offset int64, whence int) (int64, error) {
	if err := f.enter(OpSeek); err != nil {
		return 0, err
	}
	return f.base.Seek(offset, whence)
}

func (f *FaultInjectionFile) Sync() error {
	if err := f.enter(OpSync); err != nil {
		return err
	}
	return f.base.Sync()
}

func (f *FaultInjectionFile) Close() error {
	if err := f.enter(OpClose); err != nil {
		_ = f.base.Close()
		return err
	}
	return f.base.Close()
}

// Fd is not counted.
func (f *FaultInjectionFile) Fd() uintptr {
	f.mu.Lock()
	override := f.fd
	f.mu.Unlock()
	if override != nil {
		return *override
	}
	return f.base.Fd()
}

func (f *FaultInjectionFile) Name() string {
	return f.base.Name()
}

func (f *FaultInjectionFile) Stat() (os.FileInfo, error) {
	return f.base.Stat()
}
