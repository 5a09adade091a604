package native

import (
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// region is the allocation behind a Pointer. It is a separate object so a
// release callback can free it without keeping the Pointer reachable.
type region struct {
	id       uuid.UUID
	mem      []byte
	released atomic.Bool
}

// free unmaps the memory. Only the first call has any effect; it reports
// whether this call performed the release.
func (r *region) free() (bool, error) {
	if !r.released.CompareAndSwap(false, true) {
		return false, nil
	}
	return true, deallocate(r.mem)
}

// ReleaseFunc frees a foreign allocation. It is safe to call more than
// once; only the first call releases memory.
type ReleaseFunc func() (bool, error)

// Pointer is a handle to foreign memory.
//
// Pointer performs no locking. Content may be written by code outside the
// owning rope at any time; callers that share a Pointer between goroutines
// while writes are possible must synchronize themselves.
type Pointer struct {
	r *region
}

// Malloc allocates size bytes of zeroed foreign memory.
func Malloc(size int) (*Pointer, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "%d", size)
	}
	mem, err := allocate(size)
	if err != nil {
		return nil, err
	}
	return &Pointer{r: &region{id: uuid.New(), mem: mem}}, nil
}

// ID returns the allocation identifier used in logs.
func (p *Pointer) ID() uuid.UUID {
	return p.r.id
}

// Size returns the allocation size in bytes.
func (p *Pointer) Size() int {
	return len(p.r.mem)
}

// Released returns true once the memory has been freed.
func (p *Pointer) Released() bool {
	return p.r.released.Load()
}

// ByteAt reads the byte at off.
func (p *Pointer) ByteAt(off int) byte {
	p.check(off, 1)
	b := p.r.mem[off]
	runtime.KeepAlive(p)
	return b
}

// SetByte writes b at off.
func (p *Pointer) SetByte(off int, b byte) {
	p.check(off, 1)
	p.r.mem[off] = b
	runtime.KeepAlive(p)
}

// CopyOut copies len(dst) bytes starting at off into dst.
func (p *Pointer) CopyOut(off int, dst []byte) {
	p.check(off, len(dst))
	copy(dst, p.r.mem[off:off+len(dst)])
	runtime.KeepAlive(p)
}

// CopyIn copies src into the allocation starting at off.
func (p *Pointer) CopyIn(off int, src []byte) {
	p.check(off, len(src))
	copy(p.r.mem[off:off+len(src)], src)
	runtime.KeepAlive(p)
}

// Memory exposes the live allocation, e.g. as a buffer for a system call.
// The slice is only usable while p is reachable and not released.
func (p *Pointer) Memory() []byte {
	p.check(0, 0)
	return p.r.mem
}

// Free releases the memory now. It returns false if the memory was
// already released.
func (p *Pointer) Free() (bool, error) {
	return p.r.free()
}

// EnableAutorelease registers p with svc so its memory is freed after p
// becomes unreachable.
func (p *Pointer) EnableAutorelease(svc FinalizationService) {
	svc.RegisterForRelease(p, p.r.free)
}

func (p *Pointer) check(off, n int) {
	if p.r.released.Load() {
		panic(errors.WithAssertionFailure(errors.Wrapf(ErrReleased, "pointer %s", p.r.id)))
	}
	if off < 0 || n < 0 || off+n > len(p.r.mem) {
		panic(errors.WithAssertionFailure(
			errors.Wrapf(ErrOutOfBounds, "pointer %s: [%d, %d) of %d", p.r.id, off, off+n, len(p.r.mem))))
	}
}
