// Package mempool pools the transfer buffers used for block file reads.
//
// Buffers come from a caller-supplied allocator so a pool can hand out
// memory that already satisfies a direct I/O alignment. Slicing a pooled
// buffer keeps its start address, so alignment survives reuse.
package mempool

import "sync"

// BucketSizes are the pooled buffer sizes. Requests above the last bucket
// are allocated directly and never pooled.
var BucketSizes = [...]int{
	4 << 10,
	16 << 10,
	64 << 10,
	256 << 10,
	1 << 20,
}

// Pool manages reusable byte slices in fixed size buckets.
type Pool struct {
	alloc func(size int) []byte
	pools [len(BucketSizes)]sync.Pool
}

// NewPool returns a Pool that allocates with alloc. A nil alloc uses make.
func NewPool(alloc func(size int) []byte) *Pool {
	if alloc == nil {
		alloc = func(size int) []byte { return make([]byte, size) }
	}
	p := &Pool{alloc: alloc}
	for i := range p.pools {
		size := BucketSizes[i]
		p.pools[i].New = func() any {
			buf := p.alloc(size)[:size:size]
			return &buf
		}
	}
	return p
}

// Get returns a slice of length n. Its capacity is the bucket size, or n
// when n is larger than every bucket.
func (p *Pool) Get(n int) []byte {
	i := bucket(n)
	if i < 0 {
		return p.alloc(n)[:n:n]
	}
	buf := *p.pools[i].Get().(*[]byte)
	return buf[:n]
}

// Put returns buf for reuse. Slices whose capacity is not exactly a bucket
// size are dropped.
func (p *Pool) Put(buf []byte) {
	i := bucket(cap(buf))
	if i < 0 || BucketSizes[i] != cap(buf) {
		return
	}
	buf = buf[:cap(buf)]
	p.pools[i].Put(&buf)
}

func bucket(n int) int {
	for i, size := range BucketSizes {
		if n <= size {
			return i
		}
	}
	return -1
}
