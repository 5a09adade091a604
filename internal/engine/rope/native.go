package rope

import (
	"github.com/cockroachdb/errors"

	"github.com/dshills/ropecore/internal/engine/encoding"
	"github.com/dshills/ropecore/internal/engine/native"
)

// Native is a flat rope backed by foreign memory.
//
// The foreign buffer holds ByteLength bytes followed by a zero terminator.
// Native code may write into the buffer at any time, so every read copies
// from foreign memory and nothing derived from content is cached. The
// metadata (byte length, encoding, declared code range, character length)
// is fixed at construction and is not revalidated after external writes.
//
// Native ropes perform no locking. Sharing one between goroutines while
// native code can write to it requires external synchronization.
type Native struct {
	header
	charLength int
	ptr        *native.Pointer
}

// NewNative allocates ByteLength+1 bytes of foreign memory, copies b into
// it, terminates it with a zero byte and registers the allocation with svc
// for release once the rope is unreachable.
func NewNative(svc native.FinalizationService, b []byte, enc encoding.Encoding, charLength int, cr encoding.CodeRange) (*Native, error) {
	ptr, err := native.Malloc(len(b) + 1)
	if err != nil {
		return nil, errors.Wrap(err, "allocating native rope")
	}
	ptr.CopyIn(0, b)
	ptr.SetByte(len(b), 0)
	ptr.EnableAutorelease(svc)
	return newNative(ptr, len(b), enc, charLength, cr), nil
}

// AdoptNative wraps an existing foreign buffer holding byteLength bytes
// of content. The rope takes ownership of ptr: it writes the terminator at
// byteLength and registers ptr with svc.
func AdoptNative(svc native.FinalizationService, ptr *native.Pointer, byteLength int, enc encoding.Encoding, charLength int, cr encoding.CodeRange) (*Native, error) {
	if byteLength < 0 || ptr.Size() < byteLength+1 {
		return nil, errors.Wrapf(native.ErrInvalidSize,
			"buffer of %d bytes cannot hold %d bytes and a terminator", ptr.Size(), byteLength)
	}
	ptr.SetByte(byteLength, 0)
	ptr.EnableAutorelease(svc)
	return newNative(ptr, byteLength, enc, charLength, cr), nil
}

func newNative(ptr *native.Pointer, byteLength int, enc encoding.Encoding, charLength int, cr encoding.CodeRange) *Native {
	if cr == encoding.ASCIIOnly {
		charLength = byteLength
	}
	return &Native{
		header:     newHeader(enc, cr, byteLength, 0),
		charLength: charLength,
		ptr:        ptr,
	}
}

func (*Native) isRope() {}

// CharacterLength returns the character length given at construction. A
// negative construction value is resolved by scanning current bytes.
func (n *Native) CharacterLength() int {
	if n.charLength >= 0 {
		return n.charLength
	}
	_, count := n.enc.Scan(n.Bytes())
	return count
}

func (n *Native) knownCharacterLength() (int, bool) {
	return n.charLength, n.charLength >= 0
}

// Pointer returns the foreign buffer. Writes through it are visible to
// subsequent reads of the rope.
func (n *Native) Pointer() *native.Pointer {
	return n.ptr
}

// Bytes returns a fresh copy of the current foreign content.
func (n *Native) Bytes() []byte {
	buf := make([]byte, n.byteLength)
	n.ptr.CopyOut(0, buf)
	return buf
}

// ByteAt reads one byte of current foreign content. It panics with
// ErrOutOfRange unless 0 <= index < ByteLength.
func (n *Native) ByteAt(index int) byte {
	checkIndex(n, index)
	return n.ptr.ByteAt(index)
}

// ToLeaf snapshots the current foreign content into a leaf. The code
// range is left Unknown because the content may have changed since
// construction.
func (n *Native) ToLeaf() *Leaf {
	return NewLeaf(n.Bytes(), n.enc, encoding.Unknown)
}
