// Package vfs opens files for direct (page-cache bypassing) I/O and enforces
// the alignment rules that mode imposes.
//
// Direct I/O reads and writes go straight between user memory and the device.
// In exchange the kernel demands three things of every transfer:
//   - the buffer address is aligned to the memory alignment,
//   - the file offset is aligned to the offset alignment,
//   - the length is a multiple of the length granularity.
//
// The flow through this package is:
//
//	open -> Prober.Probe -> Capability -> Requirements
//	     -> Resolve(Mode, Capability) -> Resolved -> Handle
//
// A Handle validates every transfer against its Requirements before any
// system call is issued, so a misaligned request fails with an
// *AlignmentError instead of EINVAL (or silent corruption on platforms that
// do not check).
//
// Platform support:
//   - Linux: O_DIRECT, alignment from statx(STATX_DIOALIGN), BLKSSZGET or
//     the filesystem block size; tmpfs, network and pseudo filesystems run
//     buffered.
//   - Darwin: F_NOCACHE, which bypasses the cache without an alignment contract.
//   - Windows: FILE_FLAG_NO_BUFFERING, aligned to the volume sector size.
//   - Everything else: buffered only.
package vfs
