package rope

import (
	"bytes"

	"github.com/cockroachdb/errors"

	"github.com/dshills/ropecore/internal/engine/encoding"
)

// ByteAt returns the byte at index. Concat nodes are descended in O(depth)
// unless already materialized; callers doing many random reads should
// Flatten first. ByteAt panics with ErrOutOfRange unless
// 0 <= index < r.ByteLength().
func ByteAt(r Rope, index int) byte {
	checkIndex(r, index)
	for {
		switch n := r.(type) {
		case *Leaf:
			return n.bytes[index]
		case *Native:
			return n.ByteAt(index)
		case *Concat:
			if b := n.cachedBytes(); b != nil {
				return b[index]
			}
			if ll := n.left.ByteLength(); index < ll {
				r = n.left
			} else {
				r = n.right
				index -= ll
			}
		default:
			panicUnknownVariant(r)
		}
	}
}

// Bytes returns the full byte content of r. For Leaf and Concat the result
// is shared (memoized for Concat) and must not be modified. For Native it
// is a fresh copy of the current foreign content.
func Bytes(r Rope) []byte {
	switch n := r.(type) {
	case *Leaf:
		return n.bytes
	case *Concat:
		return n.Bytes()
	case *Native:
		return n.Bytes()
	default:
		panicUnknownVariant(r)
		return nil
	}
}

// String returns the content of r as a Go string.
func String(r Rope) string {
	return string(Bytes(r))
}

// Flatten returns a single leaf with the same content, encoding and code
// range as r. Native ropes are snapshotted with ToLeaf.
func Flatten(r Rope) *Leaf {
	switch n := r.(type) {
	case *Leaf:
		return n
	case *Concat:
		charLength, _ := n.knownCharacterLength()
		l := NewLeafWithLength(n.Bytes(), n.enc, n.cr, charLength)
		if !n.cr.IsKnown() {
			if s := encoding.CodeRange(n.scanned.Load()); s.IsKnown() {
				l.scanned.Store(uint32(s))
			}
		}
		return l
	case *Native:
		return n.ToLeaf()
	default:
		panicUnknownVariant(r)
		return nil
	}
}

// CodeRangeOf returns the code range of r, resolving encoding.Unknown by
// scanning. Results are memoized for Leaf and Concat. Native ropes are
// rescanned on every call because their content may have changed.
func CodeRangeOf(r Rope) encoding.CodeRange {
	switch n := r.(type) {
	case *Leaf:
		if n.cr.IsKnown() {
			return n.cr
		}
		cr, _ := n.resolve(n.Bytes)
		return cr
	case *Concat:
		if n.cr.IsKnown() {
			return n.cr
		}
		cr, _ := n.resolve(n.Bytes)
		return cr
	case *Native:
		cr, _ := n.enc.Scan(n.Bytes())
		return cr
	default:
		panicUnknownVariant(r)
		return encoding.Unknown
	}
}

// Append returns the concatenation of left and right. The result encoding
// is negotiated with encoding.Compatible, the code range is merged and the
// balance flag is computed. Empty operands are elided. Append never
// rebalances; see Rebalance and Builder.
//
// Native operands are rejected with ErrNativeOperand.
func Append(left, right Rope) (Rope, error) {
	if _, ok := left.(*Native); ok {
		return nil, errors.Wrapf(ErrNativeOperand, "left operand %s", describe(left))
	}
	if _, ok := right.(*Native); ok {
		return nil, errors.Wrapf(ErrNativeOperand, "right operand %s", describe(right))
	}
	if right.IsEmpty() {
		return left, nil
	}
	if left.IsEmpty() {
		return right, nil
	}

	enc := left.Encoding()
	if right.Encoding() != enc {
		var ok bool
		enc, ok = encoding.Compatible(left.Encoding(), CodeRangeOf(left), right.Encoding(), CodeRangeOf(right))
		if !ok {
			return nil, errors.Wrapf(ErrIncompatibleEncodings, "%s and %s",
				left.Encoding().Name(), right.Encoding().Name())
		}
	}

	return join(left, right, enc), nil
}

// Substring returns the length bytes of r starting at offset. Leaf storage
// is shared with r. The result is ASCIIOnly when r is, and otherwise
// Unknown, since a byte range may cut a multi-byte character.
//
// A native rope is snapshotted first, so the result does not observe
// later writes to foreign memory.
//
// Substring panics with ErrOutOfRange if the range exceeds r.
func Substring(r Rope, offset, length int) Rope {
	checkRange(r, offset, length)
	if n, ok := r.(*Native); ok {
		return Substring(n.ToLeaf(), offset, length)
	}
	if length == 0 {
		return Empty(r.Encoding())
	}
	if offset == 0 && length == r.ByteLength() {
		return r
	}

	switch n := r.(type) {
	case *Leaf:
		return NewLeaf(n.bytes[offset:offset+length:offset+length], n.enc, substringCodeRange(n))
	case *Concat:
		if b := n.cachedBytes(); b != nil {
			return NewLeaf(b[offset:offset+length:offset+length], n.enc, substringCodeRange(n))
		}
		ll := n.left.ByteLength()
		end := offset + length
		switch {
		case end <= ll:
			return retag(Substring(n.left, offset, length), n.enc)
		case offset >= ll:
			return retag(Substring(n.right, offset-ll, length), n.enc)
		default:
			left := retag(Substring(n.left, offset, ll-offset), n.enc)
			right := retag(Substring(n.right, 0, end-ll), n.enc)
			return join(left, right, n.enc)
		}
	default:
		panicUnknownVariant(r)
		return nil
	}
}

func substringCodeRange(r Rope) encoding.CodeRange {
	switch cr := r.CodeRange(); {
	case cr == encoding.ASCIIOnly:
		return cr
	case cr == encoding.Valid && encoding.IsSingleByte(r.Encoding()):
		return cr
	default:
		return encoding.Unknown
	}
}

// retag returns r labelled with enc. Only ASCIIOnly survives the change of
// encoding; any other code range becomes Unknown.
func retag(r Rope, enc encoding.Encoding) Rope {
	if r.Encoding() == enc {
		return r
	}
	cr := r.CodeRange()
	if cr != encoding.ASCIIOnly || !enc.ASCIICompatible() {
		cr = encoding.Unknown
	}
	switch n := r.(type) {
	case *Leaf:
		return NewLeaf(n.bytes, enc, cr)
	case *Concat:
		c := NewConcat(n.left, n.right, enc, cr, n.balanced)
		if b := n.cachedBytes(); b != nil {
			c.bytes.Store(&b)
		}
		return c
	default:
		panicUnknownVariant(r)
		return nil
	}
}

// CanFastEncode reports whether WithEncoding(r, enc, cr) would succeed.
func CanFastEncode(r Rope, enc encoding.Encoding, cr encoding.CodeRange) bool {
	if _, ok := r.(*Native); ok {
		return false
	}
	return cr == r.CodeRange()
}

// WithEncoding relabels r with a new encoding without touching its bytes.
// It only succeeds when cr equals r's current code range; any other
// transition returns ErrUnsupportedTransition and the caller must rebuild
// the rope from re-encoded bytes. Native ropes never support the fast
// path; snapshot them with ToLeaf first.
func WithEncoding(r Rope, enc encoding.Encoding, cr encoding.CodeRange) (Rope, error) {
	if !CanFastEncode(r, enc, cr) {
		if _, ok := r.(*Native); ok {
			return nil, unsupportedTransition(r, "native rope")
		}
		return nil, unsupportedTransition(r, "code range change to "+cr.String())
	}
	if enc == r.Encoding() {
		return r, nil
	}

	switch n := r.(type) {
	case *Leaf:
		return NewLeaf(n.bytes, enc, cr), nil
	case *Concat:
		c := NewConcat(n.left, n.right, enc, cr, n.balanced)
		if b := n.cachedBytes(); b != nil {
			c.bytes.Store(&b)
		}
		return c, nil
	default:
		panicUnknownVariant(r)
		return nil, nil
	}
}

// Equal reports whether a and b hold the same bytes in comparable
// encodings. Trees are compared segment by segment without materializing.
func Equal(a, b Rope) bool {
	if a == b {
		return true
	}
	if a.ByteLength() != b.ByteLength() {
		return false
	}
	if a.Encoding() != b.Encoding() {
		if _, ok := encoding.Compatible(a.Encoding(), CodeRangeOf(a), b.Encoding(), CodeRangeOf(b)); !ok {
			return false
		}
	}

	ia, ib := Segments(a), Segments(b)
	var sa, sb []byte
	for {
		if len(sa) == 0 {
			if !ia.Next() {
				return len(sb) == 0 && !ib.Next()
			}
			sa = ia.Segment()
		}
		if len(sb) == 0 {
			if !ib.Next() {
				return false
			}
			sb = ib.Segment()
		}
		n := min(len(sa), len(sb))
		if !bytes.Equal(sa[:n], sb[:n]) {
			return false
		}
		sa, sb = sa[n:], sb[n:]
	}
}

// forEachSegment calls fn with the contiguous byte segments covering
// [start, end) of r, in order. Materialized nodes are used whole. fn must
// not retain the slice; native segments come from a reused buffer.
func forEachSegment(r Rope, start, end int, fn func([]byte)) {
	if start >= end {
		return
	}
	switch n := r.(type) {
	case *Leaf:
		fn(n.bytes[start:end])
	case *Native:
		buf := getBuffer(end - start)
		n.ptr.CopyOut(start, *buf)
		fn(*buf)
		putBuffer(buf)
	case *Concat:
		if b := n.cachedBytes(); b != nil {
			fn(b[start:end])
			return
		}
		ll := n.left.ByteLength()
		if start < ll {
			forEachSegment(n.left, start, min(end, ll), fn)
		}
		if end > ll {
			forEachSegment(n.right, max(start-ll, 0), end-ll, fn)
		}
	default:
		panicUnknownVariant(r)
	}
}
