package encoding

// CodeRange classifies a byte sequence relative to its encoding.
type CodeRange uint8

const (
	// Unknown means the bytes have not been scanned yet.
	Unknown CodeRange = iota

	// ASCIIOnly means every byte is 7-bit ASCII.
	ASCIIOnly

	// Valid means every character is well formed under the encoding.
	Valid

	// Broken means at least one byte sequence is invalid.
	Broken
)

// String returns the name of the code range.
func (cr CodeRange) String() string {
	switch cr {
	case Unknown:
		return "unknown"
	case ASCIIOnly:
		return "ascii-only"
	case Valid:
		return "valid"
	case Broken:
		return "broken"
	default:
		return "invalid-code-range"
	}
}

// IsKnown returns true if the bytes have been classified.
func (cr CodeRange) IsKnown() bool {
	return cr != Unknown
}

// IsValid returns true for ASCIIOnly and Valid.
func (cr CodeRange) IsValid() bool {
	return cr == ASCIIOnly || cr == Valid
}

// Merge returns the code range of the concatenation of two byte sequences
// with code ranges a and b.
//
// Validity is decided byte-locally for every registered encoding, so two
// valid halves always join into a valid whole.
func Merge(a, b CodeRange) CodeRange {
	switch {
	case a == Broken || b == Broken:
		return Broken
	case a == ASCIIOnly && b == ASCIIOnly:
		return ASCIIOnly
	case a.IsValid() && b.IsValid():
		return Valid
	default:
		return Unknown
	}
}
