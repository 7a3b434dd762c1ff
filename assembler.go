package iso8583

import (
	"encoding/hex"
	"strconv"

	"go.uber.org/multierr"
)

// Assembler turns validated transaction records into wire messages.
// It runs three linear stages: validate, compute bitmap, serialize.
// The zero-allocation-per-stage style follows the message packer; the
// assembler itself is stateless and safe for concurrent use.
type Assembler struct {
	registry *Registry
}

// NewAssembler creates an assembler over the given registry.
func NewAssembler(registry *Registry) *Assembler {
	return &Assembler{registry: registry}
}

// Build produces the complete MTI-0100 message for tx, or an error and
// no bytes. There is no partial output: the caller receives either a
// full message or the first violation encountered.
func (a *Assembler) Build(tx *Transaction) ([]byte, error) {
	// Stage 1: validate. The record is re-checked here because the
	// assembler treats its caller as untrusted.
	if err := tx.Validate(); err != nil {
		return nil, firstError(err)
	}
	values, err := a.fieldValues(tx)
	if err != nil {
		return nil, err
	}
	for _, fieldNum := range a.registry.MandatoryFields() {
		if len(values[fieldNum]) == 0 {
			return nil, &FieldError{Field: fieldNum, Err: ErrMissingMandatoryField}
		}
	}

	// Stages 2 and 3: the message computes the bitmap as fields are
	// set and serializes them in ascending id order.
	msg := NewMessage(a.registry)
	if err := msg.SetMTI(MTIAuthorizationRequest); err != nil {
		return nil, err
	}
	for fieldNum := MinFieldNumber; fieldNum <= MaxFieldNumber; fieldNum++ {
		value, ok := values[fieldNum]
		if !ok {
			continue
		}
		if err := msg.SetField(fieldNum, value); err != nil {
			return nil, err
		}
	}
	return msg.Bytes()
}

// fieldValues maps the record onto data element values: ASCII digits
// for numeric elements, raw bytes for DE 52 and DE 55. Optional
// elements are present only when supplied.
func (a *Assembler) fieldValues(tx *Transaction) (map[int][]byte, error) {
	values := map[int][]byte{
		3:  []byte(tx.ProcessingCode),
		4:  []byte(strconv.FormatInt(tx.Amount, 10)),
		11: []byte(tx.STAN),
		12: []byte(tx.LocalTime),
		13: []byte(tx.LocalDate),
		22: []byte(tx.POSEntryMode),
	}
	if tx.PAN != "" {
		values[2] = []byte(tx.PAN)
	}
	if tx.AcquirerID != "" {
		values[32] = []byte(tx.AcquirerID)
	}
	if tx.Expiry != "" {
		values[14] = []byte(tx.Expiry)
	}
	if tx.PINBlock != "" {
		block, err := hex.DecodeString(tx.PINBlock)
		if err != nil {
			return nil, &FieldError{Field: 52, Err: ErrOddHexLength}
		}
		values[52] = block
	}
	if tx.ChipData != "" {
		icc, err := hex.DecodeString(tx.ChipData)
		if err != nil {
			return nil, &FieldError{Field: 55, Err: ErrOddHexLength}
		}
		// Structural check before the stream is forwarded; corrupt
		// DE 55 must be rejected, not passed through.
		if _, err := DecodeTLV(icc); err != nil {
			return nil, &FieldError{Field: 55, Err: err}
		}
		values[55] = icc
	}
	// Drop empty mandatory digits so presence checking sees absence.
	for fieldNum, v := range values {
		if len(v) == 0 {
			delete(values, fieldNum)
		}
	}
	return values, nil
}

// firstError unwraps an aggregate from record validation down to the
// first violation, per the assembler's single-error contract.
func firstError(err error) error {
	if errs := multierr.Errors(err); len(errs) > 0 {
		return errs[0]
	}
	return err
}
