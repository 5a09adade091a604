package rope

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/ropecore/internal/engine/encoding"
)

// Stats describes the shape of a rope tree.
type Stats struct {
	ByteLength   int
	Depth        int
	Nodes        int // Concat nodes
	Leaves       int // Leaf and Native nodes
	NativeLeaves int
	Materialized int // Concat nodes holding memoized bytes
	Unbalanced   int // Concat nodes whose balance flag is false
	Balanced     bool
	CodeRange    encoding.CodeRange
	Encoding     string
}

// Inspect walks r and collects its shape. Memoized bytes do not stop the
// walk; Inspect always reports the full tree.
func Inspect(r Rope) Stats {
	s := Stats{
		ByteLength: r.ByteLength(),
		Depth:      r.Depth(),
		Balanced:   IsBalanced(r.Depth(), r.ByteLength()),
		CodeRange:  r.CodeRange(),
		Encoding:   r.Encoding().Name(),
	}
	inspect(r, &s)
	return s
}

func inspect(r Rope, s *Stats) {
	switch n := r.(type) {
	case *Leaf:
		s.Leaves++
	case *Native:
		s.Leaves++
		s.NativeLeaves++
	case *Concat:
		s.Nodes++
		if n.cachedBytes() != nil {
			s.Materialized++
		}
		if !n.balanced {
			s.Unbalanced++
		}
		inspect(n.left, s)
		inspect(n.right, s)
	default:
		panicUnknownVariant(r)
	}
}

// Dump writes an indented description of the tree to w, for debugging.
// Leaf content is shown up to maxContent bytes.
func Dump(w io.Writer, r Rope, maxContent int) error {
	return dump(w, r, 0, maxContent)
}

func dump(w io.Writer, r Rope, indent, maxContent int) error {
	pad := strings.Repeat("  ", indent)
	switch n := r.(type) {
	case *Leaf:
		_, err := fmt.Fprintf(w, "%sLeaf len=%d cr=%s enc=%s %q\n",
			pad, n.byteLength, n.cr, n.enc.Name(), preview(n.bytes, maxContent))
		return err
	case *Native:
		_, err := fmt.Fprintf(w, "%sNative len=%d cr=%s enc=%s ptr=%s\n",
			pad, n.byteLength, n.cr, n.enc.Name(), n.ptr.ID())
		return err
	case *Concat:
		if _, err := fmt.Fprintf(w, "%sConcat len=%d depth=%d cr=%s balanced=%t materialized=%t\n",
			pad, n.byteLength, n.depth, n.cr, n.balanced, n.cachedBytes() != nil); err != nil {
			return err
		}
		if err := dump(w, n.left, indent+1, maxContent); err != nil {
			return err
		}
		return dump(w, n.right, indent+1, maxContent)
	default:
		panicUnknownVariant(r)
		return nil
	}
}

func preview(b []byte, limit int) string {
	if limit >= 0 && len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
