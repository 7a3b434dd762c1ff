package iso8583

import (
	"encoding/hex"
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Message is a single ISO 8583 message keyed by a Registry. Fields
// hold logical values: ASCII digits for numeric formats, raw bytes for
// binary formats. Messages are value-per-call scratch state; nothing
// is shared between builds.
type Message struct {
	mti      [4]byte
	fields   [MaxFieldNumber + 1][]byte // index 0 and 1 unused
	bitmap   Bitmap
	registry *Registry
}

// NewMessage creates an empty message bound to a registry.
func NewMessage(registry *Registry) *Message {
	return &Message{registry: registry}
}

// SetMTI sets the 4-digit message type indicator.
func (m *Message) SetMTI(mti string) error {
	if len(mti) != 4 || !isDigits([]byte(mti)) {
		return ErrInvalidMTI
	}
	copy(m.mti[:], mti)
	return nil
}

// MTI returns the message type indicator.
func (m *Message) MTI() string {
	return string(m.mti[:])
}

// SetField stores a field value by copying it and sets its bitmap bit.
// The field must be defined in the registry.
func (m *Message) SetField(fieldNum int, value []byte) error {
	if fieldNum < MinFieldNumber || fieldNum > MaxFieldNumber {
		return &FieldError{Field: fieldNum, Err: ErrFieldIDOutOfRange}
	}
	if !m.registry.Has(fieldNum) {
		return &FieldError{Field: fieldNum, Err: ErrUnsupportedField}
	}
	if err := m.bitmap.Set(fieldNum); err != nil {
		return err
	}
	m.fields[fieldNum] = make([]byte, len(value))
	copy(m.fields[fieldNum], value)
	return nil
}

// GetField returns the stored value of a present field.
func (m *Message) GetField(fieldNum int) ([]byte, error) {
	if fieldNum < MinFieldNumber || fieldNum > MaxFieldNumber {
		return nil, &FieldError{Field: fieldNum, Err: ErrFieldIDOutOfRange}
	}
	if !m.bitmap.IsSet(fieldNum) {
		return nil, &FieldError{Field: fieldNum, Err: ErrFieldNotFound}
	}
	return m.fields[fieldNum], nil
}

// HasField reports field presence.
func (m *Message) HasField(fieldNum int) bool {
	return m.bitmap.IsSet(fieldNum)
}

// PresentFields returns the present field ids in ascending order.
func (m *Message) PresentFields() []int {
	return m.bitmap.PresentFields()
}

// Pack serializes MTI, bitmap, and all present fields in ascending id
// order into buf and returns the number of bytes written. Field wire
// order always matches bitmap bit order.
func (m *Message) Pack(buf []byte) (int, error) {
	if len(buf) < 4 {
		return 0, ErrBufferTooSmall
	}
	if m.mti == [4]byte{} {
		return 0, ErrInvalidMTI
	}
	copy(buf, m.mti[:])
	pos := 4

	n, err := m.bitmap.Pack(buf[pos:])
	if err != nil {
		return 0, err
	}
	pos += n

	for fieldNum := MinFieldNumber; fieldNum <= MaxFieldNumber; fieldNum++ {
		if !m.bitmap.IsSet(fieldNum) {
			continue
		}
		def, err := m.registry.Lookup(fieldNum)
		if err != nil {
			return 0, err
		}
		n, err := encodeField(fieldNum, def, m.fields[fieldNum], buf[pos:])
		if err != nil {
			return 0, err
		}
		pos += n
	}
	return pos, nil
}

// Bytes packs the message into a freshly allocated buffer.
func (m *Message) Bytes() ([]byte, error) {
	buf := make([]byte, 4096)
	n, err := m.Pack(buf)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, nil
}

// Unpack parses a raw message produced by Pack. Field values are
// copied out of data; the input is not retained.
func (m *Message) Unpack(data []byte) error {
	if len(data) < 4 {
		return ErrInvalidMTI
	}
	m.bitmap.Reset()
	for i := range m.fields {
		m.fields[i] = nil
	}
	copy(m.mti[:], data[:4])
	pos := 4

	n, err := m.bitmap.Unpack(data[pos:])
	if err != nil {
		return err
	}
	pos += n

	for fieldNum := MinFieldNumber; fieldNum <= MaxFieldNumber; fieldNum++ {
		if !m.bitmap.IsSet(fieldNum) {
			continue
		}
		def, err := m.registry.Lookup(fieldNum)
		if err != nil {
			return err
		}
		pos, err = m.unpackField(fieldNum, def, data, pos)
		if err != nil {
			return err
		}
	}
	if pos != len(data) {
		return fmt.Errorf("%w: %d trailing bytes", ErrInvalidInputFormat, len(data)-pos)
	}
	return nil
}

func (m *Message) unpackField(fieldNum int, def FieldDefinition, data []byte, pos int) (int, error) {
	var length int
	switch def.Format {
	case FixedNumeric, FixedAlpha, RawBinary:
		length = def.Length
	case VarNumeric:
		if len(data) < pos+2 {
			return pos, &FieldError{Field: fieldNum, Err: ErrLengthMismatch}
		}
		n, err := parseASCIIToInt(data[pos : pos+2])
		if err != nil {
			return pos, &FieldError{Field: fieldNum, Err: err}
		}
		length = n
		pos += 2
	case VarBinary:
		if len(data) < pos+3 {
			return pos, &FieldError{Field: fieldNum, Err: ErrLengthMismatch}
		}
		n, err := parseASCIIToInt(data[pos : pos+3])
		if err != nil {
			return pos, &FieldError{Field: fieldNum, Err: err}
		}
		length = n
		pos += 3
	}
	if len(data) < pos+length {
		return pos, &FieldError{Field: fieldNum, Err: ErrLengthMismatch}
	}
	m.fields[fieldNum] = make([]byte, length)
	copy(m.fields[fieldNum], data[pos:pos+length])
	return pos + length, nil
}

// MarshalLogObject implements zapcore.ObjectMarshaler. Card and PIN
// data are masked before they reach a log sink.
func (m *Message) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("mti", m.MTI())
	for _, fieldNum := range m.PresentFields() {
		key := fmt.Sprintf("de%03d", fieldNum)
		value := m.fields[fieldNum]
		def, err := m.registry.Lookup(fieldNum)
		if err != nil {
			continue
		}
		switch {
		case fieldNum == 2:
			enc.AddString(key, maskPAN(string(value)))
		case fieldNum == 52:
			enc.AddString(key, "********")
		case def.Format == RawBinary || def.Format == VarBinary:
			enc.AddString(key, hex.EncodeToString(value))
		default:
			enc.AddString(key, string(value))
		}
	}
	return nil
}

// maskPAN keeps the issuer prefix and the last four digits.
func maskPAN(pan string) string {
	if len(pan) < 11 {
		return "****"
	}
	masked := []byte(pan)
	for i := 6; i < len(masked)-4; i++ {
		masked[i] = '*'
	}
	return string(masked)
}
