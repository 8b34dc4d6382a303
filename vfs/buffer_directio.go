//go:build !openbsd && !plan9

package vfs

import (
	"github.com/ncw/directio"
)

// alignedBlock uses directio.AlignedBlock when its platform alignment is a
// multiple of the request, otherwise it over-allocates.
func alignedBlock(size, align int) []byte {
	if size > 0 && directio.AlignSize > 0 && align > 0 && directio.AlignSize%align == 0 {
		return directio.AlignedBlock(size)
	}
	return overAllocate(size, align)
}
