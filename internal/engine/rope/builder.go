package rope

import (
	"io"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/dshills/ropecore/internal/engine/encoding"
)

// DefaultMaxDepth is the depth above which an appended subtree is
// rebalanced before it joins the builder's tree.
const DefaultMaxDepth = 48

// Builder provides efficient incremental construction of a rope, the
// backing for `<<`-style append loops. Small writes are buffered and turned
// into leaves of about MaxChunkSize bytes; whole ropes are appended as
// subtrees.
//
// Appended subtrees are kept in a forest of balanced trees, one slot per
// Fibonacci length class. A new subtree absorbs the shorter trees to its
// left and moves up until it finds a free slot, so each append costs an
// amortized constant number of joins and balanced subtrees are never
// rebuilt. Only a subtree that is unbalanced or deeper than the maximum
// depth is rebalanced, once, when it is appended.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	enc        encoding.Encoding // encoding of an empty result
	resultEnc  encoding.Encoding // negotiated encoding of the content so far
	forest     [MaxBalancedDepth + 1]Rope
	length     int
	buffer     []byte
	chunkSize  int
	maxDepth   int
	rebalances int
	joins      int
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithChunkSize sets the target leaf size for buffered writes and the
// coalescing threshold used when rebalancing.
func WithChunkSize(size int) BuilderOption {
	return func(b *Builder) {
		if size > 0 {
			b.chunkSize = size
		}
	}
}

// WithMaxDepth sets the depth above which an appended subtree is
// rebalanced.
func WithMaxDepth(depth int) BuilderOption {
	return func(b *Builder) {
		if depth > 0 {
			b.maxDepth = depth
		}
	}
}

// NewBuilder creates a builder producing ropes in enc.
func NewBuilder(enc encoding.Encoding, opts ...BuilderOption) *Builder {
	b := &Builder{
		enc:       enc,
		chunkSize: MaxChunkSize,
		maxDepth:  DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.resultEnc = enc
	return b
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	b.buffer = append(b.buffer, p...)
	if len(b.buffer) >= b.chunkSize*2 {
		if err := b.flushBuffer(false); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// WriteString appends a string.
func (b *Builder) WriteString(s string) (int, error) {
	b.buffer = append(b.buffer, s...)
	if len(b.buffer) >= b.chunkSize*2 {
		if err := b.flushBuffer(false); err != nil {
			return 0, err
		}
	}
	return len(s), nil
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	_, err := b.Write([]byte{c})
	return err
}

// Append flushes buffered writes and appends r as a subtree. Native ropes
// are snapshotted first.
func (b *Builder) Append(r Rope) error {
	if err := b.flushBuffer(true); err != nil {
		return err
	}
	if n, ok := r.(*Native); ok {
		r = n.ToLeaf()
	}
	return b.appendRope(r)
}

// flushBuffer converts buffered bytes into leaves. Unless final, an
// incomplete trailing character stays buffered for the next write.
func (b *Builder) flushBuffer(final bool) error {
	if len(b.buffer) == 0 {
		return nil
	}

	n := len(b.buffer)
	if !final && b.enc == encoding.UTF8 {
		n -= incompleteTail(b.buffer)
	}
	for _, leaf := range splitIntoLeaves(b.buffer[:n], b.enc, b.chunkSize) {
		if err := b.appendRope(leaf); err != nil {
			return err
		}
	}
	b.buffer = append(b.buffer[:0], b.buffer[n:]...)
	return nil
}

func (b *Builder) appendRope(r Rope) error {
	if _, ok := r.(*Native); ok {
		return errors.Wrapf(ErrNativeOperand, "appending %s", describe(r))
	}
	if r.IsEmpty() {
		return nil
	}

	if b.length == 0 {
		b.resultEnc = r.Encoding()
	} else if r.Encoding() != b.resultEnc {
		enc, ok := encoding.Compatible(b.resultEnc, b.codeRange(), r.Encoding(), CodeRangeOf(r))
		if !ok {
			return errors.Wrapf(ErrIncompatibleEncodings, "%s and %s",
				b.resultEnc.Name(), r.Encoding().Name())
		}
		b.resultEnc = enc
	}

	if d := r.Depth(); d > b.maxDepth || !IsBalanced(d, r.ByteLength()) {
		if balanced := Rebalance(r, b.chunkSize/2); balanced != r {
			r = balanced
			b.rebalances++
		}
	}

	b.length += r.ByteLength()
	b.insert(r)
	return nil
}

// insert adds r to the right end of the forest. Trees in lower slots hold
// later content, so the forest read from the highest slot down is the
// rope in byte order.
func (b *Builder) insert(r Rope) {
	n := lengthClass(r.ByteLength())

	// Join the shorter trees first so they form one subtree to the left
	// of r instead of deepening r one level at a time.
	var prefix Rope
	for i := 0; i < n; i++ {
		if t := b.forest[i]; t != nil {
			prefix = b.join(t, prefix)
			b.forest[i] = nil
		}
	}
	if prefix != nil {
		r = b.join(prefix, r)
	}

	for {
		n = lengthClass(r.ByteLength())
		merged := false
		for i := 0; i <= n; i++ {
			if t := b.forest[i]; t != nil {
				r = b.join(t, r)
				b.forest[i] = nil
				merged = true
			}
		}
		if !merged {
			b.forest[n] = r
			return
		}
	}
}

// join concatenates left and right under the negotiated encoding. A nil
// right operand returns left.
func (b *Builder) join(left, right Rope) Rope {
	if right == nil {
		return left
	}
	b.joins++
	return join(left, right, b.resultEnc)
}

// codeRange resolves the code range of the content appended so far.
func (b *Builder) codeRange() encoding.CodeRange {
	cr := encoding.ASCIIOnly
	for _, t := range b.forest {
		if t != nil {
			cr = encoding.Merge(cr, CodeRangeOf(t))
		}
	}
	return cr
}

// lengthClass returns the forest slot for a tree of byteLength bytes: the
// largest depth d at which such a tree meets the balance criterion.
func lengthClass(byteLength int) int {
	d := sort.Search(MaxBalancedDepth+1, func(d int) bool {
		return int64(byteLength) < fib[d+2]-1
	}) - 1
	return max(d, 0)
}

// Len returns the total number of bytes written.
func (b *Builder) Len() int {
	return b.length + len(b.buffer)
}

// Depth returns the depth of the rope Build would return, excluding
// buffered bytes.
func (b *Builder) Depth() int {
	depth := -1
	for _, t := range b.forest {
		if t == nil {
			continue
		}
		if depth < 0 {
			depth = t.Depth()
		} else {
			depth = 1 + max(t.Depth(), depth)
		}
	}
	return max(depth, 0)
}

// Rebalances returns how many appended subtrees had to be rebalanced.
func (b *Builder) Rebalances() int {
	return b.rebalances
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.forest = [MaxBalancedDepth + 1]Rope{}
	b.resultEnc = b.enc
	b.length = 0
	b.buffer = b.buffer[:0]
	b.rebalances = 0
	b.joins = 0
}

// Build returns the rope built from all writes and resets the builder.
func (b *Builder) Build() (Rope, error) {
	if err := b.flushBuffer(true); err != nil {
		return nil, err
	}

	var r Rope
	for _, t := range b.forest {
		if t != nil {
			r = b.join(t, r)
		}
	}
	if r == nil {
		r = Empty(b.enc)
	} else if r.Encoding() != b.resultEnc {
		r = retag(r, b.resultEnc)
	}
	b.Reset()
	return r, nil
}

// ReadFrom implements io.ReaderFrom.
func (b *Builder) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, 64*1024)
	var total int64

	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := b.Write(buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// FromReader creates a rope in enc from everything r produces.
func FromReader(r io.Reader, enc encoding.Encoding, opts ...BuilderOption) (Rope, error) {
	b := NewBuilder(enc, opts...)
	if _, err := b.ReadFrom(r); err != nil {
		return nil, err
	}
	return b.Build()
}

// Join concatenates ropes with sep between each pair. The result is
// rebalanced once at the end.
func Join(ropes []Rope, sep Rope) (Rope, error) {
	if len(ropes) == 0 {
		if sep != nil {
			return Empty(sep.Encoding()), nil
		}
		return Empty(encoding.Binary), nil
	}

	result := ropes[0]
	for _, r := range ropes[1:] {
		var err error
		if sep != nil && !sep.IsEmpty() {
			if result, err = Append(result, sep); err != nil {
				return nil, err
			}
		}
		if result, err = Append(result, r); err != nil {
			return nil, err
		}
	}
	return Rebalance(result, MinChunkSize), nil
}
