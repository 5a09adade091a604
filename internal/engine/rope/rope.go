package rope

import (
	"sync/atomic"

	"github.com/dshills/ropecore/internal/engine/encoding"
)

// Rope is an immutable string representation. The set of implementations
// is closed: *Leaf, *Concat and *Native.
type Rope interface {
	// Encoding returns the encoding governing byte interpretation.
	Encoding() encoding.Encoding

	// CodeRange returns the code range declared at construction. It may
	// be encoding.Unknown; use CodeRangeOf to resolve it.
	CodeRange() encoding.CodeRange

	// ByteLength returns the number of bytes.
	ByteLength() int

	// CharacterLength returns the number of characters under Encoding,
	// scanning the bytes on first use if needed.
	CharacterLength() int

	// SingleByteOptimizable returns true if every character is one byte.
	SingleByteOptimizable() bool

	// Depth returns the distance to the deepest leaf; 0 for flat ropes.
	Depth() int

	// IsEmpty returns true if the rope has no bytes.
	IsEmpty() bool

	// knownCharacterLength returns the character length if it is known
	// without scanning.
	knownCharacterLength() (int, bool)

	isRope()
}

// header holds the metadata shared by all variants. It is fixed at
// construction.
type header struct {
	enc        encoding.Encoding
	cr         encoding.CodeRange
	singleByte bool
	byteLength int
	depth      int
}

func newHeader(enc encoding.Encoding, cr encoding.CodeRange, byteLength, depth int) header {
	return header{
		enc:        enc,
		cr:         cr,
		singleByte: cr == encoding.ASCIIOnly || encoding.IsSingleByte(enc),
		byteLength: byteLength,
		depth:      depth,
	}
}

func (h *header) Encoding() encoding.Encoding   { return h.enc }
func (h *header) CodeRange() encoding.CodeRange { return h.cr }
func (h *header) ByteLength() int               { return h.byteLength }
func (h *header) SingleByteOptimizable() bool   { return h.singleByte }
func (h *header) Depth() int                    { return h.depth }
func (h *header) IsEmpty() bool                 { return h.byteLength == 0 }

// managed holds the write-once memo cells of interpreter-owned ropes
// (Leaf and Concat). Native ropes never memoize because their bytes may
// change underneath them.
type managed struct {
	header
	charLength atomic.Int64  // -1 until known
	scanned    atomic.Uint32 // resolved code range when cr is Unknown
	hash       atomic.Uint64
	hashed     atomic.Bool
}

func (m *managed) init(h header, charLength int) {
	m.header = h
	switch {
	case h.cr == encoding.ASCIIOnly:
		charLength = h.byteLength
	case charLength < 0 && encoding.IsSingleByte(h.enc):
		charLength = h.byteLength
	}
	m.charLength.Store(int64(charLength))
}

func (m *managed) knownCharacterLength() (int, bool) {
	n := m.charLength.Load()
	return int(n), n >= 0
}

// resolve returns the effective code range and the character length,
// scanning content on first use.
func (m *managed) resolve(content func() []byte) (encoding.CodeRange, int) {
	cr := m.cr
	if !cr.IsKnown() {
		cr = encoding.CodeRange(m.scanned.Load())
	}
	if cr.IsKnown() {
		if n := m.charLength.Load(); n >= 0 {
			return cr, int(n)
		}
	}

	scannedCR, n := m.enc.Scan(content())
	m.charLength.Store(int64(n))
	if !m.cr.IsKnown() {
		m.scanned.Store(uint32(scannedCR))
		return scannedCR, n
	}
	return m.cr, n
}

func (m *managed) hashCode(compute func() uint64) uint64 {
	if m.hashed.Load() {
		return m.hash.Load()
	}
	h := compute()
	m.hash.Store(h)
	m.hashed.Store(true)
	return h
}
