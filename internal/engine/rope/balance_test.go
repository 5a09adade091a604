package rope

import (
	"math/bits"
	"strings"
	"testing"

	"github.com/dshills/ropecore/internal/engine/encoding"
)

func TestIsBalanced(t *testing.T) {
	tests := []struct {
		depth, length int
		want          bool
	}{
		{0, 0, true},
		{1, 1, true},
		{1, 0, false},
		{2, 2, true},
		{3, 4, true},
		{4, 5, false},
		{4, 7, true},
		{MaxBalancedDepth, 1 << 62, false},
		{MaxBalancedDepth + 1, 1 << 62, false},
		{-1, 10, false},
	}

	for _, tt := range tests {
		if got := IsBalanced(tt.depth, tt.length); got != tt.want {
			t.Errorf("IsBalanced(%d, %d) = %t, want %t", tt.depth, tt.length, got, tt.want)
		}
	}
}

func TestFibTable(t *testing.T) {
	if fib[10] != 55 {
		t.Errorf("fib[10] = %d, want 55", fib[10])
	}
	last := fib[len(fib)-1]
	if last <= 0 || last < fib[len(fib)-2] {
		t.Errorf("fib table overflowed: %d", last)
	}
}

func appendBytes(t *testing.T, n int) Rope {
	t.Helper()
	var r Rope = Empty(encoding.UTF8)
	for i := 0; i < n; i++ {
		r = mustAppend(t, r, leaf(string(rune('a'+i%26))))
	}
	return r
}

func TestRepeatedAppendThenRebalance(t *testing.T) {
	const n = 10000
	r := appendBytes(t, n)

	if r.Depth() != n-1 {
		t.Fatalf("Depth() = %d, want %d", r.Depth(), n-1)
	}
	if IsBalanced(r.Depth(), r.ByteLength()) {
		t.Fatal("left-leaning append chain should not be balanced")
	}

	tests := []struct {
		name      string
		chunkSize int
		leaves    int
	}{
		{"single bytes", 1, n},
		{"default chunks", 0, (n + MinChunkSize - 1) / MinChunkSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Rebalance(r, tt.chunkSize)

			if b.ByteLength() != n {
				t.Errorf("ByteLength() = %d, want %d", b.ByteLength(), n)
			}
			if !Equal(b, r) {
				t.Error("rebalanced content differs")
			}
			if b.CodeRange() != encoding.ASCIIOnly {
				t.Errorf("CodeRange() = %s, want ascii-only", b.CodeRange())
			}
			maxDepth := bits.Len(uint(tt.leaves - 1))
			if b.Depth() > maxDepth {
				t.Errorf("Depth() = %d, want <= %d", b.Depth(), maxDepth)
			}
			if !IsBalanced(b.Depth(), b.ByteLength()) {
				t.Errorf("depth %d not balanced for %d bytes", b.Depth(), b.ByteLength())
			}
			if got := Inspect(b).Leaves; got != tt.leaves {
				t.Errorf("Leaves = %d, want %d", got, tt.leaves)
			}
		})
	}
}

func TestRebalanceReturnsBalancedTree(t *testing.T) {
	r := mustAppend(t, leaf("abc"), leaf("def"))
	if got := Rebalance(r, 0); got != r {
		t.Error("balanced tree should be returned unchanged")
	}

	l := leaf("abc")
	if got := Rebalance(l, 0); got != Rope(l) {
		t.Error("leaf should be returned unchanged")
	}
}

func TestRebalanceMaterialized(t *testing.T) {
	r := appendBytes(t, 100)
	Bytes(r)

	b := Rebalance(r, 0)
	if _, ok := b.(*Leaf); !ok {
		t.Fatalf("materialized tree should flatten to a leaf, got %T", b)
	}
	if !Equal(b, r) {
		t.Error("content differs")
	}
}

func TestRebalanceKeepsDeclaredCodeRange(t *testing.T) {
	left := NewLeaf([]byte("é"), encoding.UTF8, encoding.Unknown)
	right := leaf("ü")
	c := NewConcat(left, right, encoding.UTF8, encoding.Valid, false)

	b := Rebalance(c, 0)
	if b.CodeRange() != encoding.Valid {
		t.Errorf("CodeRange() = %s, want valid", b.CodeRange())
	}
	if String(b) != "éü" {
		t.Errorf("content = %q", String(b))
	}
}

func TestRebalanceLargeLeavesShared(t *testing.T) {
	big := leaf(strings.Repeat("x", 2*MinChunkSize))
	var r Rope = big
	for i := 0; i < 10; i++ {
		r = NewConcat(r, leaf("y"), encoding.UTF8, encoding.ASCIIOnly, false)
	}

	b := Rebalance(r, 0)
	it := Segments(b)
	if !it.Next() {
		t.Fatal("no segments")
	}
	if &it.Segment()[0] != &big.bytes[0] {
		t.Error("leaf at or above the chunk size should be shared, not copied")
	}
	if it.Next(); string(it.Segment()) != strings.Repeat("y", 10) {
		t.Errorf("small leaves should coalesce, got %q", it.Segment())
	}
}

func TestRebalanceRetagsChildren(t *testing.T) {
	latin1 := encoding.MustLookup("ISO-8859-1")
	r, err := Append(leaf("abc"), FromBytes([]byte("\xe9t\xe9"), latin1))
	if err != nil {
		t.Fatal(err)
	}
	r = NewConcat(r, FromBytes([]byte("!"), latin1), latin1, encoding.Valid, false)

	b := Rebalance(r, 0)
	if b.Encoding() != latin1 {
		t.Errorf("Encoding() = %s, want %s", b.Encoding().Name(), latin1.Name())
	}
	if b.CodeRange() != encoding.Valid {
		t.Errorf("CodeRange() = %s, want valid", b.CodeRange())
	}
	if b.CharacterLength() != 7 {
		t.Errorf("CharacterLength() = %d, want 7", b.CharacterLength())
	}
}
