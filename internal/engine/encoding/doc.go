// Package encoding classifies byte sequences relative to a text encoding.
//
// Every rope carries an Encoding and a CodeRange. The CodeRange records what
// is known about the bytes under that encoding:
//
//   - Unknown: not yet scanned; classification is deferred to first use
//   - ASCIIOnly: every byte is below 0x80 (implies Valid)
//   - Valid: every character is well formed
//   - Broken: at least one byte sequence is invalid
//
// Code ranges of concatenated content are merged with Merge rather than
// rescanned. Encodings are resolved by name through a Registry, which knows
// UTF-8, US-ASCII, ASCII-8BIT and the single-byte code pages from
// golang.org/x/text/encoding/charmap.
//
// Basic usage:
//
//	enc := encoding.MustLookup("UTF-8")
//	cr, chars := enc.Scan([]byte("héllo"))   // Valid, 5
//	encoding.Merge(encoding.ASCIIOnly, cr)    // Valid
package encoding
