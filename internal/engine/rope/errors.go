package rope

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Errors reported by rope operations.
//
// ErrOutOfRange and ErrInvariantViolation indicate caller or construction
// bugs. They are raised as panics carrying an assertion failure and are not
// meant to be recovered in normal operation.
var (
	// ErrOutOfRange indicates a byte index or range outside the rope.
	ErrOutOfRange = errors.New("byte index out of range")

	// ErrUnsupportedTransition indicates an encoding change with no
	// byte-preserving fast path. Rebuild the rope from re-encoded bytes.
	ErrUnsupportedTransition = errors.New("unsupported encoding transition")

	// ErrInvariantViolation indicates a malformed rope was constructed.
	ErrInvariantViolation = errors.New("rope invariant violated")

	// ErrIncompatibleEncodings indicates two ropes cannot be concatenated
	// without transcoding.
	ErrIncompatibleEncodings = errors.New("incompatible encodings")

	// ErrNativeOperand indicates a native rope was passed where only
	// managed ropes are allowed. Snapshot it with ToLeaf first.
	ErrNativeOperand = errors.New("native rope operand")
)

func panicOutOfRange(format string, args ...any) {
	panic(errors.WithAssertionFailure(errors.Wrapf(ErrOutOfRange, format, args...)))
}

func panicInvariant(format string, args ...any) {
	panic(errors.WithAssertionFailure(errors.Wrapf(ErrInvariantViolation, format, args...)))
}

func panicUnknownVariant(r Rope) {
	panicInvariant("unknown rope variant %T", r)
}

// IsAssertionFailure reports whether a recovered panic value is a fatal
// assertion raised by this package.
func IsAssertionFailure(v any) bool {
	err, ok := v.(error)
	return ok && errors.HasAssertionFailure(err)
}

func checkIndex(r Rope, index int) {
	if index < 0 || index >= r.ByteLength() {
		panicOutOfRange("index %d, length %d", index, r.ByteLength())
	}
}

func checkRange(r Rope, start, length int) {
	if start < 0 || length < 0 || start > r.ByteLength()-length {
		panicOutOfRange("range [%d, %d), length %d", start, start+length, r.ByteLength())
	}
}

func unsupportedTransition(r Rope, reason string) error {
	return errors.Wrapf(ErrUnsupportedTransition, "%s (%s, %s)", reason, r.Encoding().Name(), r.CodeRange())
}

func describe(r Rope) string {
	return fmt.Sprintf("%T(len=%d)", r, r.ByteLength())
}
