package rope

import (
	"strings"
	"testing"
	"testing/quick"

	"github.com/cockroachdb/errors"

	"github.com/dshills/ropecore/internal/engine/encoding"
)

func TestHashShapeIndependent(t *testing.T) {
	flat := leaf("abcdef")
	left := mustAppend(t, mustAppend(t, leaf("ab"), leaf("cd")), leaf("ef"))
	right := mustAppend(t, leaf("a"), mustAppend(t, leaf("bcd"), leaf("ef")))

	for _, alg := range []HashAlgorithm{Murmur3, XXHash64} {
		h := NewHasher(alg)
		want := h.Hash(flat, 42, 0, 6)
		if got := h.Hash(left, 42, 0, 6); got != want {
			t.Errorf("%s: left-leaning hash %x, want %x", alg, got, want)
		}
		if got := h.Hash(right, 42, 0, 6); got != want {
			t.Errorf("%s: right-leaning hash %x, want %x", alg, got, want)
		}
	}

	if HashCode(flat) != HashCode(left) || HashCode(left) != HashCode(right) {
		t.Error("HashCode should not depend on tree shape")
	}
}

func TestHashSubrange(t *testing.T) {
	r := mustAppend(t, leaf("hello "), leaf("world"))
	if Hash(r, 7, 3, 5) != Hash(leaf("lo wo"), 7, 0, 5) {
		t.Error("subrange hash should equal hash of a leaf holding the range")
	}
	if Hash(r, 7, 0, 5) == Hash(r, 8, 0, 5) {
		t.Error("seed should affect the hash")
	}
	expectPanic(t, ErrOutOfRange, func() { Hash(r, 0, 8, 4) })
}

func TestHashMaterializedMatches(t *testing.T) {
	r := mustAppend(t, leaf(strings.Repeat("a", 300)), leaf(strings.Repeat("b", 300)))
	before := Hash(r, 1, 100, 400)
	Bytes(r)
	if after := Hash(r, 1, 100, 400); after != before {
		t.Errorf("hash changed after materialization: %x != %x", after, before)
	}
}

func TestHashProperty(t *testing.T) {
	f := func(a, b []byte, seed uint64) bool {
		r, err := Append(FromBytes(a, encoding.Binary), FromBytes(b, encoding.Binary))
		if err != nil {
			return false
		}
		flat := FromBytes(append(append([]byte{}, a...), b...), encoding.Binary)
		return Hash(r, seed, 0, r.ByteLength()) == Hash(flat, seed, 0, flat.ByteLength())
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestHashCodeMemoized(t *testing.T) {
	r := mustAppend(t, leaf("ab"), leaf("cd")).(*Concat)
	if r.hashed.Load() {
		t.Fatal("hash should be computed lazily")
	}
	h := HashCode(r)
	if !r.hashed.Load() || r.hash.Load() != h {
		t.Error("hash should be memoized after first use")
	}
}

func TestParseHashAlgorithm(t *testing.T) {
	tests := []struct {
		input string
		want  HashAlgorithm
	}{
		{"", Murmur3},
		{"murmur3", Murmur3},
		{"xxhash", XXHash64},
		{"xxhash64", XXHash64},
	}
	for _, tt := range tests {
		got, err := ParseHashAlgorithm(tt.input)
		if err != nil || got != tt.want {
			t.Errorf("ParseHashAlgorithm(%q) = %s, %v; want %s", tt.input, got, err, tt.want)
		}
	}

	if _, err := ParseHashAlgorithm("md5"); !errors.Is(err, ErrUnknownHashAlgorithm) {
		t.Errorf("error = %v, want ErrUnknownHashAlgorithm", err)
	}
}

func TestHashAlgorithmsDiffer(t *testing.T) {
	r := leaf("some content")
	if NewHasher(Murmur3).Hash(r, 1, 0, r.ByteLength()) == NewHasher(XXHash64).Hash(r, 1, 0, r.ByteLength()) {
		t.Error("different algorithms should produce different hashes")
	}
}
