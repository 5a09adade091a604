// Package rope provides the immutable, structurally shared string storage
// behind interpreter string values.
//
// A Rope is one of three variants:
//
//   - *Leaf: a flat, immutable byte sequence
//   - *Concat: a binary node over two non-native ropes
//   - *Native: a flat leaf backed by foreign memory that native code may
//     write into
//
// Every rope carries an encoding.Encoding and an encoding.CodeRange.
// Concatenation merges code ranges instead of rescanning, and classification
// that is not known yet (encoding.Unknown) is resolved lazily on first use.
//
// Operations never modify a rope; appending or slicing returns a new rope
// that shares unchanged subtrees with the original. Leaf and Concat values
// are safe for concurrent reads. Memoized results (materialized bytes,
// character length, hash code) are write-once cells; concurrent readers may
// compute them redundantly but always agree.
//
// Concatenation never rebalances on its own. Long append loops should go
// through a Builder, or call Rebalance when Depth grows:
//
//	r := rope.FromString("hello", encoding.UTF8)
//	r, _ = rope.Append(r, rope.FromString(" world", encoding.UTF8))
//	b := rope.Bytes(r)               // "hello world", memoized
//	h := rope.Hash(r, 1, 0, len(b))  // independent of tree shape
//
// Native ropes re-read foreign memory on every access and are never placed
// below a Concat node; call ToLeaf to snapshot one first.
package rope
