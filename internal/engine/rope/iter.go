package rope

// SegmentIterator walks the contiguous byte segments of a rope in order.
// Materialized Concat nodes yield their memoized bytes as one segment;
// native ropes yield a fresh copy. Empty leaves are skipped.
type SegmentIterator struct {
	stack  []Rope
	seg    []byte
	offset int
	next   int
}

// Segments returns an iterator over the byte segments of r.
func Segments(r Rope) *SegmentIterator {
	it := &SegmentIterator{stack: make([]Rope, 0, 16)}
	it.stack = append(it.stack, r)
	return it
}

// Next advances to the next segment.
// Returns true if there is a segment, false if iteration is complete.
func (it *SegmentIterator) Next() bool {
	for len(it.stack) > 0 {
		top := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		switch n := top.(type) {
		case *Leaf:
			if len(n.bytes) == 0 {
				continue
			}
			it.emit(n.bytes)
			return true
		case *Native:
			if n.byteLength == 0 {
				continue
			}
			it.emit(n.Bytes())
			return true
		case *Concat:
			if b := n.cachedBytes(); b != nil {
				it.emit(b)
				return true
			}
			// Right first so left is visited first.
			it.stack = append(it.stack, n.right, n.left)
		default:
			panicUnknownVariant(top)
		}
	}
	it.seg = nil
	return false
}

func (it *SegmentIterator) emit(seg []byte) {
	it.seg = seg
	it.offset = it.next
	it.next += len(seg)
}

// Segment returns the current segment. It must not be modified.
func (it *SegmentIterator) Segment() []byte {
	return it.seg
}

// Offset returns the byte offset of the start of the current segment.
func (it *SegmentIterator) Offset() int {
	return it.offset
}
