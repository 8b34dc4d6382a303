/*
Package directfile is the root of a module for direct and uncached file I/O.

The work lives in subpackages:

  - vfs: alignment model, capability probing, mode resolution and the
    validating Handle.
  - blockfile: an append-only record file whose every transfer is aligned,
    so it runs unchanged on direct, uncached and buffered handles.
  - cmd/dioprobe: a command line tool to probe paths, resolve modes and run
    a write/verify round trip.

# Platforms

Linux uses O_DIRECT with statx(STATX_DIOALIGN) alignment, falling back to
the logical sector size or filesystem block size. Darwin bypasses the cache
with F_NOCACHE and has no alignment contract. Windows reopens the file with
FILE_FLAG_NO_BUFFERING and aligns to the volume sector size. Everything else
runs buffered.

# Concurrency

A vfs.Handle may be used from multiple goroutines for positioned reads and
writes. blockfile.Reader is safe for concurrent use. blockfile.Writer
serializes its own appends.
*/
package directfile
