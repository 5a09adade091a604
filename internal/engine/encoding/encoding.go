package encoding

import (
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// Errors returned by encoding lookups.
var (
	// ErrUnknownEncoding indicates no encoding is registered under a name.
	ErrUnknownEncoding = errors.New("unknown encoding")

	// ErrDuplicateEncoding indicates a name is already registered.
	ErrDuplicateEncoding = errors.New("encoding already registered")
)

// Encoding is the authority on validity and character boundaries for a
// text encoding. Implementations must be comparable and immutable; two
// ropes share an encoding when their Encoding values are ==.
type Encoding interface {
	// Name returns the canonical name, e.g. "UTF-8".
	Name() string

	// ASCIICompatible returns true if bytes below 0x80 mean ASCII.
	ASCIICompatible() bool

	// MinLength is the minimum byte length of one character.
	MinLength() int

	// MaxLength is the maximum byte length of one character.
	MaxLength() int

	// Scan classifies b and counts its characters. Each byte of an
	// invalid sequence counts as one character. Scan never returns
	// Unknown.
	Scan(b []byte) (CodeRange, int)
}

// IsSingleByte returns true if every character of enc occupies one byte.
func IsSingleByte(enc Encoding) bool {
	return enc.MaxLength() == 1
}

// IsASCII returns true if every byte of b is below 0x80.
func IsASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Compatible returns the encoding of the concatenation of content in
// encoding a (code range crA) followed by content in encoding b (code
// range crB). It returns false when the bytes cannot share one encoding
// without transcoding.
func Compatible(a Encoding, crA CodeRange, b Encoding, crB CodeRange) (Encoding, bool) {
	if a == b {
		return a, true
	}
	if !a.ASCIICompatible() || !b.ASCIICompatible() {
		return nil, false
	}
	if crB == ASCIIOnly {
		return a, true
	}
	if crA == ASCIIOnly {
		return b, true
	}
	return nil, false
}

// Built-in encodings.
var (
	// UTF8 is the UTF-8 encoding.
	UTF8 Encoding = &utf8Encoding{}

	// USASCII is 7-bit ASCII; bytes at or above 0x80 are invalid.
	USASCII Encoding = &asciiEncoding{}

	// Binary is ASCII-8BIT: every byte is a valid character.
	Binary Encoding = &binaryEncoding{}
)

type utf8Encoding struct{}

func (*utf8Encoding) Name() string          { return "UTF-8" }
func (*utf8Encoding) ASCIICompatible() bool { return true }
func (*utf8Encoding) MinLength() int        { return 1 }
func (*utf8Encoding) MaxLength() int        { return utf8.UTFMax }

func (*utf8Encoding) Scan(b []byte) (CodeRange, int) {
	cr := ASCIIOnly
	chars := 0
	for i := 0; i < len(b); {
		c := b[i]
		if c < utf8.RuneSelf {
			i++
			chars++
			continue
		}
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			cr = Broken
			size = 1
		} else if cr == ASCIIOnly {
			cr = Valid
		}
		i += size
		chars++
	}
	return cr, chars
}

type asciiEncoding struct{}

func (*asciiEncoding) Name() string          { return "US-ASCII" }
func (*asciiEncoding) ASCIICompatible() bool { return true }
func (*asciiEncoding) MinLength() int        { return 1 }
func (*asciiEncoding) MaxLength() int        { return 1 }

func (*asciiEncoding) Scan(b []byte) (CodeRange, int) {
	if IsASCII(b) {
		return ASCIIOnly, len(b)
	}
	return Broken, len(b)
}

type binaryEncoding struct{}

func (*binaryEncoding) Name() string          { return "ASCII-8BIT" }
func (*binaryEncoding) ASCIICompatible() bool { return true }
func (*binaryEncoding) MinLength() int        { return 1 }
func (*binaryEncoding) MaxLength() int        { return 1 }

func (*binaryEncoding) Scan(b []byte) (CodeRange, int) {
	if IsASCII(b) {
		return ASCIIOnly, len(b)
	}
	return Valid, len(b)
}
