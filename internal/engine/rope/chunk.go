package rope

import (
	"unicode/utf8"

	"github.com/dshills/ropecore/internal/engine/encoding"
)

// Chunk size constants control the granularity of leaves built from bulk
// input and of leaves produced by Rebalance.
const (
	// MinChunkSize is the size below which Rebalance coalesces leaves.
	MinChunkSize = 128

	// MaxChunkSize is the largest leaf built from bulk input.
	MaxChunkSize = 256

	// TargetChunkSize is the preferred leaf size when splitting input.
	TargetChunkSize = (MinChunkSize + MaxChunkSize) / 2
)

// splitIntoLeaves splits b into classified leaves of about target bytes.
// For multi-byte encodings splits never fall inside a character, so each
// leaf classifies the same as the whole would.
func splitIntoLeaves(b []byte, enc encoding.Encoding, target int) []*Leaf {
	if len(b) == 0 {
		return nil
	}
	if target <= 0 {
		target = TargetChunkSize
	}

	var leaves []*Leaf
	remaining := b
	for len(remaining) > 0 {
		if len(remaining) <= target+target/3 {
			leaves = append(leaves, FromBytes(remaining, enc))
			break
		}
		split := target
		if !encoding.IsSingleByte(enc) {
			split = findCharBoundary(remaining, target)
		}
		leaves = append(leaves, FromBytes(remaining[:split], enc))
		remaining = remaining[split:]
	}
	return leaves
}

// findCharBoundary finds a character boundary near target, moving forward
// at most utf8.UTFMax bytes and otherwise backward.
func findCharBoundary(b []byte, target int) int {
	if target >= len(b) {
		return len(b)
	}
	if target <= 0 {
		return 0
	}

	pos := target
	for pos < len(b) && pos < target+utf8.UTFMax && !isCharStart(b[pos]) {
		pos++
	}
	if pos == len(b) || isCharStart(b[pos]) {
		return pos
	}

	// Broken input with no boundary nearby; any split keeps it broken.
	return target
}

// incompleteTail returns the length of a trailing multi-byte sequence in b
// that is not complete yet and may be finished by a later write.
func incompleteTail(b []byte) int {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if c < utf8.RuneSelf {
			return 0
		}
		if isCharStart(c) {
			if utf8.FullRune(b[len(b)-i:]) {
				return 0
			}
			return i
		}
	}
	return 0
}

// isCharStart returns true if the byte is not a UTF-8 continuation byte.
func isCharStart(b byte) bool {
	// Continuation bytes look like 10xxxxxx.
	return b&0xC0 != 0x80
}
