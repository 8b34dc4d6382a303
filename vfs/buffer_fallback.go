//go:build openbsd || plan9

package vfs

// github.com/ncw/directio does not build on these platforms.
func alignedBlock(size, align int) []byte {
	return overAllocate(size, align)
}
