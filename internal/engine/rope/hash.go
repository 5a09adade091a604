package rope

import (
	"hash"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/spaolacci/murmur3"
)

// HashSeed is mixed into every finished hash.
const HashSeed uint64 = 0x5bd1e9955bd1e995

// HashAlgorithm selects the streaming hash used over rope bytes.
type HashAlgorithm uint8

const (
	// Murmur3 is MurmurHash3 x64, seeded with the low and high halves of
	// the seed folded into 32 bits.
	Murmur3 HashAlgorithm = iota

	// XXHash64 is xxHash64 with the full 64-bit seed.
	XXHash64
)

// ErrUnknownHashAlgorithm indicates an unsupported algorithm name.
var ErrUnknownHashAlgorithm = errors.New("unknown hash algorithm")

// String returns the configuration name of the algorithm.
func (a HashAlgorithm) String() string {
	switch a {
	case Murmur3:
		return "murmur3"
	case XXHash64:
		return "xxhash"
	default:
		return "unknown"
	}
}

// ParseHashAlgorithm parses a configuration name.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	switch name {
	case "", "murmur3":
		return Murmur3, nil
	case "xxhash", "xxhash64":
		return XXHash64, nil
	default:
		return 0, errors.Wrapf(ErrUnknownHashAlgorithm, "%q", name)
	}
}

// Hasher hashes byte ranges of ropes. The result depends only on the
// bytes in the range, the seed and the algorithm, never on tree shape.
type Hasher struct {
	alg HashAlgorithm
}

// NewHasher creates a hasher using alg.
func NewHasher(alg HashAlgorithm) Hasher {
	return Hasher{alg: alg}
}

// Algorithm returns the hasher's algorithm.
func (h Hasher) Algorithm() HashAlgorithm {
	return h.alg
}

// Hash hashes length bytes of r starting at start. Bytes are streamed
// through the digest in order; materialized nodes are used directly and
// native content is read fresh. Hash panics with ErrOutOfRange if the range
// exceeds r.
func (h Hasher) Hash(r Rope, seed uint64, start, length int) uint64 {
	checkRange(r, start, length)
	d := h.digest(seed)
	forEachSegment(r, start, start+length, func(seg []byte) {
		_, _ = d.Write(seg)
	})
	return mix(d.Sum64() ^ HashSeed)
}

func (h Hasher) digest(seed uint64) hash.Hash64 {
	switch h.alg {
	case XXHash64:
		return xxhash.NewWithSeed(seed)
	default:
		return murmur3.New64WithSeed(uint32(seed) ^ uint32(seed>>32))
	}
}

// mix is the 64-bit finalizer of MurmurHash3.
func mix(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}

var defaultHasher = NewHasher(Murmur3)

// Hash hashes a byte range of r with MurmurHash3. See Hasher.Hash.
func Hash(r Rope, seed uint64, start, length int) uint64 {
	return defaultHasher.Hash(r, seed, start, length)
}

// HashCode returns the hash of all of r's bytes with seed 1. It is
// memoized for Leaf and Concat and recomputed for Native.
func HashCode(r Rope) uint64 {
	compute := func() uint64 { return Hash(r, 1, 0, r.ByteLength()) }
	switch n := r.(type) {
	case *Leaf:
		return n.hashCode(compute)
	case *Concat:
		return n.hashCode(compute)
	case *Native:
		return compute()
	default:
		panicUnknownVariant(r)
		return 0
	}
}
