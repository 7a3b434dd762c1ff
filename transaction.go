package iso8583

import (
	"encoding/hex"
	"fmt"

	"go.uber.org/multierr"
)

// Transaction is the caller-supplied input for one authorization
// request. String fields hold ASCII digits; PINBlock and ChipData hold
// hex-encoded binary. A Transaction is treated as immutable once it
// has passed Validate.
type Transaction struct {
	PAN            string // DE 2, 13-19 digits
	ProcessingCode string // DE 3, 6 digits
	Amount         int64  // DE 4, minor currency units
	STAN           string // DE 11, 6 digits
	LocalTime      string // DE 12, HHMMSS
	LocalDate      string // DE 13, MMDD
	Expiry         string // DE 14, YYMM, optional
	POSEntryMode   string // DE 22, 3 digits
	AcquirerID     string // DE 32, up to 11 digits
	PINBlock       string // DE 52, 16 hex chars (8 bytes), optional
	ChipData       string // DE 55, hex TLV stream, optional
}

// TransactionOption configures a Transaction during construction.
type TransactionOption func(*Transaction)

// WithExpiry adds the card expiration date (YYMM, DE 14).
func WithExpiry(yymm string) TransactionOption {
	return func(t *Transaction) { t.Expiry = yymm }
}

// WithPINBlock adds a pre-formed 8-byte PIN block as hex (DE 52).
func WithPINBlock(hexBlock string) TransactionOption {
	return func(t *Transaction) { t.PINBlock = hexBlock }
}

// WithChipData adds a pre-built EMV TLV stream as hex (DE 55).
func WithChipData(hexTLV string) TransactionOption {
	return func(t *Transaction) { t.ChipData = hexTLV }
}

// NewTransaction builds and validates a transaction record. Unlike the
// assembler stages, which fail on the first violation, construction
// reports every invalid field at once.
func NewTransaction(pan, processingCode string, amount int64, stan, localTime, localDate, posEntryMode, acquirerID string, opts ...TransactionOption) (*Transaction, error) {
	t := &Transaction{
		PAN:            pan,
		ProcessingCode: processingCode,
		Amount:         amount,
		STAN:           stan,
		LocalTime:      localTime,
		LocalDate:      localDate,
		POSEntryMode:   posEntryMode,
		AcquirerID:     acquirerID,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the format of every populated field: digit-only
// content, length bounds, hex parity, and the structural integrity of
// the chip data TLV stream. Absent optional fields and empty mandatory
// fields pass here; mandatory presence is the assembler's job.
func (t *Transaction) Validate() error {
	var err error
	err = multierr.Append(err, checkDigits(2, t.PAN, 13, 19))
	err = multierr.Append(err, checkDigits(3, t.ProcessingCode, 6, 6))
	if t.Amount < 0 || t.Amount > 999999999999 {
		err = multierr.Append(err, &FieldError{Field: 4, Err: fmt.Errorf("%w: amount out of range", ErrInvalidInputFormat)})
	}
	err = multierr.Append(err, checkDigits(11, t.STAN, 6, 6))
	err = multierr.Append(err, checkDigits(12, t.LocalTime, 6, 6))
	err = multierr.Append(err, checkDigits(13, t.LocalDate, 4, 4))
	err = multierr.Append(err, checkDigits(14, t.Expiry, 4, 4))
	err = multierr.Append(err, checkDigits(22, t.POSEntryMode, 3, 3))
	err = multierr.Append(err, checkDigits(32, t.AcquirerID, 1, 11))
	err = multierr.Append(err, checkHex(52, t.PINBlock, 16, 16))
	err = multierr.Append(err, checkHex(55, t.ChipData, 2, 999*2))
	if t.ChipData != "" && len(t.ChipData)%2 == 0 && isHexDigits(t.ChipData) {
		if _, derr := DecodeTLV(mustHex(t.ChipData)); derr != nil {
			err = multierr.Append(err, &FieldError{Field: 55, Err: derr})
		}
	}
	return err
}

// mustHex is only called after hex parity and charset have been
// checked, so the decode cannot fail.
func mustHex(s string) []byte {
	b, _ := hex.DecodeString(s)
	return b
}

func checkDigits(fieldNum int, s string, min, max int) error {
	if s == "" {
		return nil
	}
	if !isDigits([]byte(s)) || len(s) < min || len(s) > max {
		return &FieldError{Field: fieldNum, Err: ErrInvalidInputFormat}
	}
	return nil
}

func checkHex(fieldNum int, s string, minChars, maxChars int) error {
	if s == "" {
		return nil
	}
	if len(s)%2 != 0 {
		return &FieldError{Field: fieldNum, Err: ErrOddHexLength}
	}
	if !isHexDigits(s) || len(s) < minChars || len(s) > maxChars {
		return &FieldError{Field: fieldNum, Err: ErrInvalidInputFormat}
	}
	return nil
}
