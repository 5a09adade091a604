package rope

import "sync"

// maxPooledBuffer is the largest buffer kept for reuse.
const maxPooledBuffer = 64 * 1024

// bufferPool recycles scratch buffers for copying native content out of
// foreign memory when the copy does not escape (hashing, range walks).
var bufferPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, MaxChunkSize)
		return &b
	},
}

// getBuffer returns a scratch buffer of length n.
func getBuffer(n int) *[]byte {
	b := bufferPool.Get().(*[]byte)
	if cap(*b) < n {
		*b = make([]byte, n)
	} else {
		*b = (*b)[:n]
	}
	return b
}

// putBuffer returns a scratch buffer to the pool.
func putBuffer(b *[]byte) {
	if b == nil || cap(*b) > maxPooledBuffer {
		return
	}
	*b = (*b)[:0]
	bufferPool.Put(b)
}
