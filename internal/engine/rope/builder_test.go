package rope

import (
	"strings"
	"testing"

	"github.com/dshills/ropecore/internal/engine/encoding"
	"github.com/dshills/ropecore/internal/engine/native"
)

func TestBuilderEmpty(t *testing.T) {
	b := NewBuilder(encoding.UTF8)
	r, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsEmpty() || r.Encoding() != encoding.UTF8 {
		t.Errorf("empty build = %s", describe(r))
	}
}

func TestBuilderWrites(t *testing.T) {
	b := NewBuilder(encoding.UTF8)
	b.WriteString("hello")
	b.WriteByte(' ')
	b.Write([]byte("world"))

	if b.Len() != 11 {
		t.Errorf("Len() = %d, want 11", b.Len())
	}

	r, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if got := String(r); got != "hello world" {
		t.Errorf("got %q, want %q", got, "hello world")
	}
	if b.Len() != 0 {
		t.Error("Build should reset the builder")
	}
}

func TestBuilderLargeInputSplitsIntoLeaves(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 500)
	b := NewBuilder(encoding.UTF8)
	b.WriteString(text)
	r, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	if String(r) != text {
		t.Fatal("content mismatch")
	}
	if r.CodeRange() != encoding.Valid {
		t.Errorf("CodeRange() = %s, want valid", r.CodeRange())
	}
	if r.CharacterLength() != 7*500 {
		t.Errorf("CharacterLength() = %d, want %d", r.CharacterLength(), 7*500)
	}
	if Inspect(r).Leaves < 2 {
		t.Error("large input should be split into several leaves")
	}
}

func TestBuilderKeepsSplitCharacters(t *testing.T) {
	text := "a日b本c語"
	b := NewBuilder(encoding.UTF8, WithChunkSize(2))
	for i := 0; i < len(text); i++ {
		b.WriteByte(text[i])
	}
	r, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	if String(r) != text {
		t.Errorf("got %q, want %q", String(r), text)
	}
	if r.CodeRange() != encoding.Valid {
		t.Errorf("no leaf should cut a character, CodeRange() = %s", r.CodeRange())
	}
	if r.CharacterLength() != 6 {
		t.Errorf("CharacterLength() = %d, want 6", r.CharacterLength())
	}
}

func TestBuilderAppendLoopStaysShallow(t *testing.T) {
	const n = 10000
	b := NewBuilder(encoding.UTF8)
	x := leaf("x")
	for i := 0; i < n; i++ {
		if err := b.Append(x); err != nil {
			t.Fatal(err)
		}
		if i%97 == 0 && b.Depth() > DefaultMaxDepth {
			t.Fatalf("depth %d exceeds %d after %d appends", b.Depth(), DefaultMaxDepth, i+1)
		}
	}

	if b.Rebalances() != 0 {
		t.Errorf("Rebalances() = %d, leaves never need rebalancing", b.Rebalances())
	}
	r, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if r.ByteLength() != n || String(r) != strings.Repeat("x", n) {
		t.Error("content mismatch")
	}
	if r.Depth() > DefaultMaxDepth {
		t.Errorf("Depth() = %d, want at most %d", r.Depth(), DefaultMaxDepth)
	}
}

// appendJoins appends n copies of piece and returns the number of joins
// the builder performed along with the built rope.
func appendJoins(t *testing.T, piece Rope, n int) (int, Rope) {
	t.Helper()
	b := NewBuilder(encoding.UTF8)
	for i := 0; i < n; i++ {
		if err := b.Append(piece); err != nil {
			t.Fatal(err)
		}
	}
	joins := b.joins
	r, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return joins, r
}

func TestBuilderAppendWorkIsLinear(t *testing.T) {
	piece := leaf(strings.Repeat("a", 256))

	for _, n := range []int{10000, 20000, 40000} {
		joins, r := appendJoins(t, piece, n)
		if joins > n {
			t.Errorf("n=%d: %d joins, want at most one per append", n, joins)
		}
		if r.ByteLength() != 256*n {
			t.Errorf("n=%d: ByteLength() = %d, want %d", n, r.ByteLength(), 256*n)
		}
		if r.Depth() > DefaultMaxDepth {
			t.Errorf("n=%d: Depth() = %d, want at most %d", n, r.Depth(), DefaultMaxDepth)
		}
		if s := Inspect(r); s.Leaves != n || s.Nodes != n-1 {
			t.Errorf("n=%d: %d leaves and %d nodes, want %d and %d", n, s.Leaves, s.Nodes, n, n-1)
		}
	}
}

func TestBuilderSharesAppendedSubtrees(t *testing.T) {
	piece := leaf(strings.Repeat("b", 100))
	var sub Rope = join(join(piece, piece, encoding.UTF8), piece, encoding.UTF8)
	if !IsBalanced(sub.Depth(), sub.ByteLength()) {
		t.Fatal("setup: subtree should be balanced")
	}

	b := NewBuilder(encoding.UTF8, WithMaxDepth(1))
	for i := 0; i < 10; i++ {
		if err := b.Append(sub); err != nil {
			t.Fatal(err)
		}
	}
	if b.Rebalances() != 0 {
		t.Errorf("Rebalances() = %d, a balanced subtree is kept as is", b.Rebalances())
	}
	r, _ := b.Build()
	if String(r) != strings.Repeat("b", 3000) {
		t.Error("content mismatch")
	}
}

func TestBuilderRebalancesDeepSubtrees(t *testing.T) {
	var chain Rope = Empty(encoding.UTF8)
	for i := 0; i < 20; i++ {
		chain = mustAppend(t, chain, leaf("ab"))
	}
	if IsBalanced(chain.Depth(), chain.ByteLength()) {
		t.Fatal("setup: chain should be unbalanced")
	}

	b := NewBuilder(encoding.UTF8, WithChunkSize(2))
	b.WriteString("<")
	if err := b.Append(chain); err != nil {
		t.Fatal(err)
	}
	b.WriteString(">")
	if b.Rebalances() != 1 {
		t.Errorf("Rebalances() = %d, want 1", b.Rebalances())
	}

	r, _ := b.Build()
	if want := "<" + strings.Repeat("ab", 20) + ">"; String(r) != want {
		t.Errorf("got %q, want %q", String(r), want)
	}
	if r.Depth() >= chain.Depth() {
		t.Errorf("Depth() = %d, want less than the appended chain's %d", r.Depth(), chain.Depth())
	}
}

func TestBuilderEncodingNegotiation(t *testing.T) {
	latin1 := encoding.MustLookup("ISO-8859-1")

	b := NewBuilder(encoding.UTF8)
	if err := b.Append(leaf("abc")); err != nil {
		t.Fatal(err)
	}
	if err := b.Append(FromBytes([]byte("caf\xe9"), latin1)); err != nil {
		t.Fatal(err)
	}
	if err := b.Append(leaf("!")); err != nil {
		t.Fatal(err)
	}
	r, _ := b.Build()

	if r.Encoding() != latin1 {
		t.Errorf("Encoding() = %s, want %s", r.Encoding().Name(), latin1.Name())
	}
	if String(r) != "abccaf\xe9!" {
		t.Errorf("content = %q", String(r))
	}
}

func TestBuilderAppendNative(t *testing.T) {
	svc := native.NewManualService()
	defer svc.ReleaseAll()

	n, err := NewNative(svc, []byte("native"), encoding.UTF8, 6, encoding.ASCIIOnly)
	if err != nil {
		t.Fatal(err)
	}

	b := NewBuilder(encoding.UTF8)
	b.WriteString("from ")
	if err := b.Append(n); err != nil {
		t.Fatal(err)
	}
	r, _ := b.Build()

	n.Pointer().SetByte(0, 'N')
	if got := String(r); got != "from native" {
		t.Errorf("builder should snapshot native content, got %q", got)
	}
}

func TestBuilderIncompatibleAppend(t *testing.T) {
	latin1 := encoding.MustLookup("ISO-8859-1")
	b := NewBuilder(encoding.UTF8)
	b.WriteString("é")
	if err := b.Append(FromBytes([]byte("\xe9"), latin1)); err == nil {
		t.Error("expected error appending incompatible encoding")
	}
}

func TestFromReader(t *testing.T) {
	text := generateText(100000)
	r, err := FromReader(strings.NewReader(text), encoding.UTF8)
	if err != nil {
		t.Fatal(err)
	}
	if String(r) != text {
		t.Error("content mismatch")
	}
	if r.CodeRange() != encoding.ASCIIOnly {
		t.Errorf("CodeRange() = %s, want ascii-only", r.CodeRange())
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		sep   Rope
		want  string
	}{
		{"empty", nil, leaf(","), ""},
		{"single", []string{"a"}, leaf(","), "a"},
		{"separated", []string{"a", "b", "c"}, leaf(", "), "a, b, c"},
		{"no separator", []string{"a", "b", "c"}, nil, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ropes := make([]Rope, len(tt.parts))
			for i, p := range tt.parts {
				ropes[i] = leaf(p)
			}
			r, err := Join(ropes, tt.sep)
			if err != nil {
				t.Fatal(err)
			}
			if got := String(r); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
