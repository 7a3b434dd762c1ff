package iso8583

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestMessageSetMTI(t *testing.T) {
	msg := NewMessage(DefaultRegistry())
	require.NoError(t, msg.SetMTI("0100"))
	assert.Equal(t, "0100", msg.MTI())

	for _, mti := range []string{"", "010", "01000", "01a0"} {
		assert.True(t, errors.Is(msg.SetMTI(mti), ErrInvalidMTI), "mti %q", mti)
	}
}

func TestMessageSetField(t *testing.T) {
	msg := NewMessage(DefaultRegistry())
	require.NoError(t, msg.SetField(3, []byte("000000")))
	assert.True(t, msg.HasField(3))
	assert.False(t, msg.HasField(4))

	got, err := msg.GetField(3)
	require.NoError(t, err)
	assert.Equal(t, []byte("000000"), got)

	_, err = msg.GetField(4)
	assert.True(t, errors.Is(err, ErrFieldNotFound))

	err = msg.SetField(39, []byte("00"))
	assert.True(t, errors.Is(err, ErrUnsupportedField))

	err = msg.SetField(1, []byte("x"))
	assert.True(t, errors.Is(err, ErrFieldIDOutOfRange))
	err = msg.SetField(129, []byte("x"))
	assert.True(t, errors.Is(err, ErrFieldIDOutOfRange))
}

func TestMessageSetFieldCopiesValue(t *testing.T) {
	msg := NewMessage(DefaultRegistry())
	value := []byte("000000")
	require.NoError(t, msg.SetField(3, value))
	value[0] = '9'

	got, err := msg.GetField(3)
	require.NoError(t, err)
	assert.Equal(t, []byte("000000"), got)
}

func TestMessagePackRequiresMTI(t *testing.T) {
	msg := NewMessage(DefaultRegistry())
	require.NoError(t, msg.SetField(3, []byte("000000")))
	_, err := msg.Bytes()
	assert.True(t, errors.Is(err, ErrInvalidMTI))
}

func TestMessagePackWireOrder(t *testing.T) {
	msg := NewMessage(DefaultRegistry())
	require.NoError(t, msg.SetMTI("0100"))
	// Set out of order; the wire carries ascending field order.
	require.NoError(t, msg.SetField(22, []byte("051")))
	require.NoError(t, msg.SetField(3, []byte("000000")))
	require.NoError(t, msg.SetField(11, []byte("123456")))
	require.NoError(t, msg.SetField(4, []byte("12345")))
	require.NoError(t, msg.SetField(12, []byte("104530")))
	require.NoError(t, msg.SetField(13, []byte("1125")))
	require.NoError(t, msg.SetField(2, []byte("4111111111111111")))
	require.NoError(t, msg.SetField(32, []byte("123456")))

	raw, err := msg.Bytes()
	require.NoError(t, err)

	want := append([]byte("0100"), mustDecode(t, "7038040100000000")...)
	want = append(want, []byte("164111111111111111"+"000000"+"000000012345"+"123456"+"104530"+"1125"+"051"+"06123456")...)
	assert.Equal(t, want, raw)
}

func TestMessageUnpackRoundTrip(t *testing.T) {
	registry := DefaultRegistry()
	msg := NewMessage(registry)
	require.NoError(t, msg.SetMTI("0100"))
	require.NoError(t, msg.SetField(2, []byte("4111111111111111")))
	require.NoError(t, msg.SetField(3, []byte("000000")))
	require.NoError(t, msg.SetField(4, []byte("12345")))
	require.NoError(t, msg.SetField(11, []byte("123456")))
	require.NoError(t, msg.SetField(12, []byte("104530")))
	require.NoError(t, msg.SetField(13, []byte("1125")))
	require.NoError(t, msg.SetField(22, []byte("051")))
	require.NoError(t, msg.SetField(32, []byte("123456")))
	require.NoError(t, msg.SetField(52, mustDecode(t, "1122334455667788")))
	require.NoError(t, msg.SetField(55, mustDecode(t, "9a032311259c0100")))

	raw, err := msg.Bytes()
	require.NoError(t, err)

	out := NewMessage(registry)
	require.NoError(t, out.Unpack(raw))
	assert.Equal(t, "0100", out.MTI())
	assert.Equal(t, []int{2, 3, 4, 11, 12, 13, 22, 32, 52, 55}, out.PresentFields())

	pan, err := out.GetField(2)
	require.NoError(t, err)
	assert.Equal(t, []byte("4111111111111111"), pan)

	amount, err := out.GetField(4)
	require.NoError(t, err)
	// Fixed fields come back padded to wire length.
	assert.Equal(t, []byte("000000012345"), amount)

	pin, err := out.GetField(52)
	require.NoError(t, err)
	assert.Equal(t, mustDecode(t, "1122334455667788"), pin)

	icc, err := out.GetField(55)
	require.NoError(t, err)
	assert.Equal(t, mustDecode(t, "9a032311259c0100"), icc)
}

func TestMessageUnpackTrailingBytes(t *testing.T) {
	msg := NewMessage(DefaultRegistry())
	require.NoError(t, msg.SetMTI("0100"))
	require.NoError(t, msg.SetField(3, []byte("000000")))
	raw, err := msg.Bytes()
	require.NoError(t, err)

	err = NewMessage(DefaultRegistry()).Unpack(append(raw, 'X'))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInputFormat))
}

func TestMessageUnpackTruncatedField(t *testing.T) {
	msg := NewMessage(DefaultRegistry())
	require.NoError(t, msg.SetMTI("0100"))
	require.NoError(t, msg.SetField(3, []byte("000000")))
	raw, err := msg.Bytes()
	require.NoError(t, err)

	err = NewMessage(DefaultRegistry()).Unpack(raw[:len(raw)-2])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestMessageMarshalLogObjectMasksSecrets(t *testing.T) {
	msg := NewMessage(DefaultRegistry())
	require.NoError(t, msg.SetMTI("0100"))
	require.NoError(t, msg.SetField(2, []byte("4111111111111111")))
	require.NoError(t, msg.SetField(4, []byte("000000012345")))
	require.NoError(t, msg.SetField(52, mustDecode(t, "1122334455667788")))
	require.NoError(t, msg.SetField(55, mustDecode(t, "9c0100")))

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, msg.MarshalLogObject(enc))

	assert.Equal(t, "0100", enc.Fields["mti"])
	assert.Equal(t, "411111******1111", enc.Fields["de002"])
	assert.Equal(t, "000000012345", enc.Fields["de004"])
	assert.Equal(t, "********", enc.Fields["de052"])
	assert.Equal(t, "9c0100", enc.Fields["de055"])
}

func TestMaskPAN(t *testing.T) {
	assert.Equal(t, "411111******1111", maskPAN("4111111111111111"))
	assert.Equal(t, "****", maskPAN("4111"))
}
