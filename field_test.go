package iso8583

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFixedNumeric(t *testing.T) {
	def := FieldDefinition{Format: FixedNumeric, Length: 12}
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"left pad to length", "12345", "000000012345"},
		{"exact length", "123456789012", "123456789012"},
		{"zero", "0", "000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 32)
			n, err := encodeField(4, def, []byte(tt.value), buf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(buf[:n]))
		})
	}
}

func TestEncodeFixedNumericErrors(t *testing.T) {
	def := FieldDefinition{Format: FixedNumeric, Length: 6}
	buf := make([]byte, 32)

	_, err := encodeField(11, def, []byte("12a456"), buf)
	assert.True(t, errors.Is(err, ErrInvalidInputFormat))

	_, err = encodeField(11, def, []byte(""), buf)
	assert.True(t, errors.Is(err, ErrInvalidInputFormat))

	_, err = encodeField(11, def, []byte("1234567"), buf)
	assert.True(t, errors.Is(err, ErrFieldTooLong))

	_, err = encodeField(11, def, []byte("123456"), make([]byte, 3))
	assert.True(t, errors.Is(err, ErrBufferTooSmall))
}

func TestEncodeFixedAlpha(t *testing.T) {
	def := FieldDefinition{Format: FixedAlpha, Length: 8}
	buf := make([]byte, 32)

	n, err := encodeField(37, def, []byte("ABC12"), buf)
	require.NoError(t, err)
	assert.Equal(t, "ABC12   ", string(buf[:n]))

	_, err = encodeField(37, def, []byte("AB\x01C"), buf)
	assert.True(t, errors.Is(err, ErrInvalidInputFormat))
}

func TestEncodeVarNumeric(t *testing.T) {
	def := FieldDefinition{Format: VarNumeric, Length: 19, MinLength: 13}
	buf := make([]byte, 32)

	n, err := encodeField(2, def, []byte("4111111111111111"), buf)
	require.NoError(t, err)
	// The 2-digit prefix counts characters.
	assert.Equal(t, "164111111111111111", string(buf[:n]))

	// Below the lower bound.
	_, err = encodeField(2, def, []byte("411111111111"), buf)
	assert.True(t, errors.Is(err, ErrInvalidInputFormat))

	// Above the upper bound.
	_, err = encodeField(2, def, []byte("41111111111111111111"), buf)
	assert.True(t, errors.Is(err, ErrFieldTooLong))
}

func TestEncodeVarBinary(t *testing.T) {
	def := FieldDefinition{Format: VarBinary, Length: 999}
	value := mustDecode(t, "9f0206000000012345")
	buf := make([]byte, 32)

	n, err := encodeField(55, def, value, buf)
	require.NoError(t, err)
	// The 3-digit prefix counts bytes, not hex characters.
	assert.Equal(t, "009", string(buf[:3]))
	assert.Equal(t, value, buf[3:n])
}

func TestEncodeVarBinaryTooLong(t *testing.T) {
	def := FieldDefinition{Format: VarBinary, Length: 16}
	buf := make([]byte, 64)
	_, err := encodeField(55, def, make([]byte, 17), buf)
	assert.True(t, errors.Is(err, ErrFieldTooLong))
}

func TestEncodeRawBinary(t *testing.T) {
	def := FieldDefinition{Format: RawBinary, Length: 8}
	value := mustDecode(t, "1122334455667788")
	buf := make([]byte, 32)

	n, err := encodeField(52, def, value, buf)
	require.NoError(t, err)
	assert.Equal(t, value, buf[:n])

	// Raw binary is exact-length, never padded or truncated.
	_, err = encodeField(52, def, value[:7], buf)
	assert.True(t, errors.Is(err, ErrLengthMismatch))
	_, err = encodeField(52, def, append(value, 0x99), buf)
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestEncodeFieldCarriesFieldNumber(t *testing.T) {
	def := FieldDefinition{Format: FixedNumeric, Length: 6}
	_, err := encodeField(11, def, []byte("abc"), make([]byte, 8))

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, 11, fieldErr.Field)
}

func TestWriteIntToASCII(t *testing.T) {
	buf := make([]byte, 3)
	writeIntToASCII(buf, 7, 3)
	assert.Equal(t, "007", string(buf))
	writeIntToASCII(buf, 999, 3)
	assert.Equal(t, "999", string(buf))
}

func TestParseASCIIToInt(t *testing.T) {
	n, err := parseASCIIToInt([]byte("016"))
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	_, err = parseASCIIToInt([]byte("0x6"))
	assert.True(t, errors.Is(err, ErrInvalidInputFormat))
}
