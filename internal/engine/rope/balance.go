package rope

import "github.com/dshills/ropecore/internal/engine/encoding"

// MaxBalancedDepth is the deepest tree the balance criterion can accept;
// Fib(MaxBalancedDepth+2) is the largest Fibonacci number that fits in an
// int64.
const MaxBalancedDepth = 90

// fib[i] is the i-th Fibonacci number, fib[0] = 0.
var fib = func() [MaxBalancedDepth + 3]int64 {
	var f [MaxBalancedDepth + 3]int64
	f[1] = 1
	for i := 2; i < len(f); i++ {
		f[i] = f[i-1] + f[i-2]
	}
	return f
}()

// IsBalanced reports whether a tree of the given depth and byte length
// meets the balance criterion: byteLength >= Fib(depth+2) - 1. Balanced
// trees have depth logarithmic in their byte length.
func IsBalanced(depth, byteLength int) bool {
	if depth < 0 || depth > MaxBalancedDepth {
		return false
	}
	return int64(byteLength) >= fib[depth+2]-1
}

// Rebalance returns a rope with the same bytes, encoding and code range
// whose depth is logarithmic in its number of leaves. Adjacent leaves
// smaller than chunkSize are coalesced; larger leaves are shared with r.
// A chunkSize <= 0 selects MinChunkSize.
//
// Flat ropes and concat nodes that are already materialized or balanced
// are returned as they are (materialized nodes as a flattened leaf).
func Rebalance(r Rope, chunkSize int) Rope {
	if chunkSize <= 0 {
		chunkSize = MinChunkSize
	}

	c, ok := r.(*Concat)
	if !ok {
		return r
	}
	if c.cachedBytes() != nil {
		return Flatten(c)
	}
	if c.balanced && IsBalanced(c.depth, c.byteLength) {
		return c
	}

	pieces := collectLeaves(c, c.enc, chunkSize)
	root := buildBalanced(pieces, c.enc)

	// Keep a declared code range that the pieces could not reproduce.
	if root.CodeRange().IsKnown() || !c.cr.IsKnown() {
		return root
	}
	switch n := root.(type) {
	case *Concat:
		return NewConcat(n.left, n.right, c.enc, c.cr, n.balanced)
	case *Leaf:
		return NewLeaf(n.bytes, c.enc, c.cr)
	}
	return root
}

// collectLeaves returns the leaves of r in byte order, coalescing runs of
// small leaves into new leaves of at least chunkSize bytes. Leaves whose
// encoding differs from enc are retagged.
func collectLeaves(r Rope, enc encoding.Encoding, chunkSize int) []*Leaf {
	var (
		out       []*Leaf
		pending   []byte
		pendingCR = encoding.ASCIIOnly
		pieces    int
	)

	flush := func() {
		if pieces == 0 {
			return
		}
		out = append(out, NewLeaf(pending, enc, pendingCR))
		pending = nil
		pendingCR = encoding.ASCIIOnly
		pieces = 0
	}

	var walk func(Rope)
	walk = func(r Rope) {
		switch n := r.(type) {
		case *Concat:
			if b := n.cachedBytes(); b != nil {
				walk(NewLeaf(b, n.enc, n.cr))
				return
			}
			walk(n.left)
			walk(n.right)
		case *Leaf:
			if n.byteLength == 0 {
				return
			}
			cr := n.cr
			if n.enc != enc && cr != encoding.ASCIIOnly {
				cr = encoding.Unknown
			}
			if n.byteLength >= chunkSize {
				flush()
				if n.enc != enc {
					n = NewLeaf(n.bytes, enc, cr)
				}
				out = append(out, n)
				return
			}
			if pending == nil {
				pending = make([]byte, 0, chunkSize)
			}
			pending = append(pending, n.bytes...)
			pendingCR = encoding.Merge(pendingCR, cr)
			pieces++
			if len(pending) >= chunkSize {
				flush()
			}
		default:
			panicUnknownVariant(r)
		}
	}
	walk(r)
	flush()
	return out
}

// buildBalanced joins leaves pairwise into a tree of depth
// ceil(log2(len(leaves))).
func buildBalanced(leaves []*Leaf, enc encoding.Encoding) Rope {
	switch len(leaves) {
	case 0:
		return Empty(enc)
	case 1:
		return leaves[0]
	}

	nodes := make([]Rope, len(leaves))
	for i, l := range leaves {
		nodes[i] = l
	}
	for len(nodes) > 1 {
		parents := make([]Rope, 0, (len(nodes)+1)/2)
		for i := 0; i < len(nodes); i += 2 {
			if i+1 == len(nodes) {
				parents = append(parents, nodes[i])
				continue
			}
			parents = append(parents, join(nodes[i], nodes[i+1], enc))
		}
		nodes = parents
	}
	return nodes[0]
}

// join concatenates two managed ropes already known to share enc.
func join(left, right Rope, enc encoding.Encoding) *Concat {
	depth := 1 + max(left.Depth(), right.Depth())
	byteLength := left.ByteLength() + right.ByteLength()
	cr := encoding.Merge(left.CodeRange(), right.CodeRange())
	return NewConcat(left, right, enc, cr, IsBalanced(depth, byteLength))
}
