package rope

import (
	"sync/atomic"

	"github.com/dshills/ropecore/internal/engine/encoding"
)

// Concat is a rope node over two child ropes. Children are never *Native.
type Concat struct {
	managed
	left     Rope
	right    Rope
	balanced bool
	bytes    atomic.Pointer[[]byte]
}

// NewConcat creates a node over left and right. cr is the merged code
// range of the children (see encoding.Merge), or encoding.Unknown; balanced
// records whether the subtree meets the balance criterion (see IsBalanced).
//
// NewConcat panics with ErrInvariantViolation if either child is native or
// cr contradicts the children.
func NewConcat(left, right Rope, enc encoding.Encoding, cr encoding.CodeRange, balanced bool) *Concat {
	if _, ok := left.(*Native); ok {
		panicInvariant("native rope as left child of concat")
	}
	if _, ok := right.(*Native); ok {
		panicInvariant("native rope as right child of concat")
	}

	merged := encoding.Merge(left.CodeRange(), right.CodeRange())
	if cr.IsKnown() && merged.IsKnown() && cr != merged {
		panicInvariant("concat code range %s, children merge to %s", cr, merged)
	}

	byteLength := left.ByteLength() + right.ByteLength()
	if byteLength < left.ByteLength() {
		panicInvariant("concat byte length overflow")
	}

	c := &Concat{left: left, right: right, balanced: balanced}
	c.init(newHeader(enc, cr, byteLength, 1+max(left.Depth(), right.Depth())), concatCharLength(left, right, enc, cr))
	return c
}

// concatCharLength sums the children's character lengths when both are
// fully classified as valid under enc; multi-byte boundaries then align
// with the children. Otherwise the length is computed lazily.
func concatCharLength(left, right Rope, enc encoding.Encoding, cr encoding.CodeRange) int {
	if !cr.IsValid() {
		return -1
	}
	l, ok := childCharLength(left, enc)
	if !ok {
		return -1
	}
	r, ok := childCharLength(right, enc)
	if !ok {
		return -1
	}
	return l + r
}

func childCharLength(r Rope, enc encoding.Encoding) (int, bool) {
	if r.CodeRange() == encoding.ASCIIOnly && enc.ASCIICompatible() {
		return r.ByteLength(), true
	}
	if r.Encoding() != enc || !r.CodeRange().IsValid() {
		return 0, false
	}
	return r.knownCharacterLength()
}

func (*Concat) isRope() {}

// Left returns the left child.
func (c *Concat) Left() Rope { return c.left }

// Right returns the right child.
func (c *Concat) Right() Rope { return c.right }

// IsBalanced returns the balance flag recorded at construction.
func (c *Concat) IsBalanced() bool { return c.balanced }

// Bytes materializes the node, memoizing the result. The slice is shared
// and must not be modified.
func (c *Concat) Bytes() []byte {
	if p := c.bytes.Load(); p != nil {
		return *p
	}

	buf := make([]byte, 0, c.byteLength)
	forEachSegment(c, 0, c.byteLength, func(seg []byte) {
		buf = append(buf, seg...)
	})
	if len(buf) != c.byteLength {
		panicInvariant("materialized %d bytes, expected %d", len(buf), c.byteLength)
	}

	c.bytes.CompareAndSwap(nil, &buf)
	return *c.bytes.Load()
}

// cachedBytes returns the memoized bytes, or nil if not materialized yet.
func (c *Concat) cachedBytes() []byte {
	if p := c.bytes.Load(); p != nil {
		return *p
	}
	return nil
}

// CharacterLength implements Rope.
func (c *Concat) CharacterLength() int {
	_, n := c.resolve(c.Bytes)
	return n
}
