package iso8583

import "fmt"

var (
	ErrInvalidInputFormat    = fmt.Errorf("invalid input format")
	ErrMissingMandatoryField = fmt.Errorf("missing mandatory field")
	ErrUnsupportedField      = fmt.Errorf("unsupported field")
	ErrFieldIDOutOfRange     = fmt.Errorf("field id out of range")
	ErrFieldTooLong          = fmt.Errorf("field too long")
	ErrLengthMismatch        = fmt.Errorf("field length mismatch")
	ErrOddHexLength          = fmt.Errorf("hex data must have even length")

	ErrInvalidTag            = fmt.Errorf("invalid TLV tag")
	ErrLengthOverflow        = fmt.Errorf("TLV value too long for short-form length")
	ErrUnsupportedLengthForm = fmt.Errorf("unsupported long-form TLV length")
	ErrTruncatedTLV          = fmt.Errorf("truncated TLV data")

	ErrInvalidMTI     = fmt.Errorf("invalid MTI")
	ErrInvalidBitmap  = fmt.Errorf("invalid bitmap")
	ErrFieldNotFound  = fmt.Errorf("field not found")
	ErrBufferTooSmall = fmt.Errorf("buffer too small")
)

// FieldError wraps an error with the data element it occurred on, so
// callers can branch on both the error kind and the offending field.
type FieldError struct {
	Field int
	Err   error
}

func (fe *FieldError) Error() string {
	return fmt.Sprintf("field %d: %v", fe.Field, fe.Err)
}

func (fe *FieldError) Unwrap() error {
	return fe.Err
}

// TLVError wraps a TLV codec error with the byte offset at which
// encoding or decoding failed.
type TLVError struct {
	Offset int
	Err    error
}

func (te *TLVError) Error() string {
	return fmt.Sprintf("TLV at offset %d: %v", te.Offset, te.Err)
}

func (te *TLVError) Unwrap() error {
	return te.Err
}
