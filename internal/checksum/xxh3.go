package checksum

import (
	"github.com/zeebo/xxh3"
)

// XXH3 returns the 64-bit XXH3 hash of data.
func XXH3(data []byte) uint64 {
	return xxh3.Hash(data)
}

// XXH3WithLastByte hashes data followed by lastByte and folds the result to
// 32 bits. The last byte carries the record's compression type, which is not
// part of the payload buffer.
func XXH3WithLastByte(data []byte, lastByte byte) uint32 {
	h := xxh3.New()
	_, _ = h.Write(data)
	_, _ = h.Write([]byte{lastByte})
	sum := h.Sum64()
	return uint32(sum) ^ uint32(sum>>32)
}
