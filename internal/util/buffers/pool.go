// Package buffers provides a fixed-size byte-buffer pool, reused
// across the streaming file cipher's per-block encrypt/decrypt calls
// to cut heap churn on large transfers. Adapted from the teacher's
// upload/download chunk-buffer pool: same sync.Pool-plus-size-guard
// shape, generalized to an arbitrary fixed size and the cipher's
// block sizes rather than S3/Azure chunk sizes, and clearing buffers
// before reuse since they hold plaintext/ciphertext key material.
package buffers

import "sync"

// Pool hands out byte slices with a fixed capacity.
type Pool struct {
	size int
	pool sync.Pool
}

// NewPool builds a pool of buffers with the given capacity.
func NewPool(size int) *Pool {
	p := &Pool{size: size}
	p.pool.New = func() interface{} {
		buf := make([]byte, 0, size)
		return &buf
	}
	return p
}

// Get returns a zero-length buffer with the pool's fixed capacity.
func (p *Pool) Get() *[]byte {
	buf := p.pool.Get().(*[]byte)
	*buf = (*buf)[:0]
	return buf
}

// Put clears buf and returns it to the pool. Buffers whose capacity no
// longer matches the pool's size are dropped rather than pooled.
func (p *Pool) Put(buf *[]byte) {
	if buf == nil || cap(*buf) != p.size {
		return
	}
	full := (*buf)[:p.size]
	clear(full)
	*buf = full[:0]
	p.pool.Put(buf)
}
