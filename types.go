// Package iso8583 builds byte-exact ISO 8583 authorization request
// messages (MTI 0100) from structured transaction data: bitmap
// computation, per-field encoding, and the BER-TLV stream carried in
// DE 55. The codec is purely functional; a Registry is immutable after
// construction and every build call is independent, so the package is
// safe for concurrent use without locking.
package iso8583

// FormatClass defines the wire encoding of a data element.
type FormatClass int

const (
	// FixedNumeric is an ASCII digit string, left-padded with '0' to
	// the definition's fixed length.
	FixedNumeric FormatClass = iota
	// FixedAlpha is printable ASCII, right-padded with spaces.
	FixedAlpha
	// VarNumeric is an ASCII digit string prefixed with a 2-digit
	// decimal ASCII length indicator counting characters (LLVAR).
	VarNumeric
	// VarBinary is raw bytes prefixed with a 3-digit decimal ASCII
	// length indicator counting bytes (LLLVAR).
	VarBinary
	// RawBinary is exactly Length raw bytes, no prefix.
	RawBinary
)

func (fc FormatClass) String() string {
	switch fc {
	case FixedNumeric:
		return "fixed-numeric"
	case FixedAlpha:
		return "fixed-alpha"
	case VarNumeric:
		return "var-numeric"
	case VarBinary:
		return "var-binary"
	case RawBinary:
		return "raw-binary"
	default:
		return "unknown"
	}
}

// FieldDefinition describes a single data element in the message format.
type FieldDefinition struct {
	Name      string
	Format    FormatClass
	Length    int // fixed length, or max length for variable formats
	MinLength int // lower bound for variable formats, 0 if none
	Mandatory bool
}

// MTIAuthorizationRequest is the message type produced by this package.
const MTIAuthorizationRequest = "0100"

const (
	// MinFieldNumber is the lowest settable data element. Field 1 is
	// the secondary-bitmap indicator and is managed by the bitmap
	// itself, never by callers.
	MinFieldNumber = 2
	MaxFieldNumber = 128

	primaryBitmapSize   = 8
	secondaryBitmapSize = 8
)
