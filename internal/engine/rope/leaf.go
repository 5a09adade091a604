package rope

import "github.com/dshills/ropecore/internal/engine/encoding"

// Leaf is a flat rope over an immutable byte sequence.
type Leaf struct {
	managed
	bytes []byte
}

// NewLeaf creates a leaf over b. The leaf takes ownership of b; the caller
// must not modify it afterwards. cr must describe b under enc; pass
// encoding.Unknown to defer classification.
func NewLeaf(b []byte, enc encoding.Encoding, cr encoding.CodeRange) *Leaf {
	return NewLeafWithLength(b, enc, cr, -1)
}

// NewLeafWithLength is like NewLeaf for callers that already know the
// character length. A negative charLength means unknown.
func NewLeafWithLength(b []byte, enc encoding.Encoding, cr encoding.CodeRange, charLength int) *Leaf {
	l := &Leaf{bytes: b}
	l.init(newHeader(enc, cr, len(b), 0), charLength)
	return l
}

// FromBytes creates a leaf over a copy of b, classifying it eagerly.
func FromBytes(b []byte, enc encoding.Encoding) *Leaf {
	buf := make([]byte, len(b))
	copy(buf, b)
	cr, n := enc.Scan(buf)
	return NewLeafWithLength(buf, enc, cr, n)
}

// FromString creates a leaf holding s, classifying it eagerly.
func FromString(s string, enc encoding.Encoding) *Leaf {
	buf := []byte(s)
	cr, n := enc.Scan(buf)
	return NewLeafWithLength(buf, enc, cr, n)
}

// Empty returns an empty leaf in enc.
func Empty(enc encoding.Encoding) *Leaf {
	return NewLeafWithLength(nil, enc, encoding.ASCIIOnly, 0)
}

func (*Leaf) isRope() {}

// Bytes returns the leaf's bytes. The slice is shared and must not be
// modified.
func (l *Leaf) Bytes() []byte {
	return l.bytes
}

// CharacterLength implements Rope.
func (l *Leaf) CharacterLength() int {
	_, n := l.resolve(l.Bytes)
	return n
}
