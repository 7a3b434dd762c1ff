package iso8583

// encodeField serializes one data element into buf according to its
// registry definition and returns the number of bytes written. The
// value is the logical field content: ASCII digits for numeric
// formats, raw (already hex-decoded) bytes for binary formats.
func encodeField(fieldNum int, def FieldDefinition, value []byte, buf []byte) (int, error) {
	switch def.Format {
	case FixedNumeric:
		return encodeFixedNumeric(fieldNum, def, value, buf)
	case FixedAlpha:
		return encodeFixedAlpha(fieldNum, def, value, buf)
	case VarNumeric:
		return encodeVarNumeric(fieldNum, def, value, buf)
	case VarBinary:
		return encodeVarBinary(fieldNum, def, value, buf)
	case RawBinary:
		return encodeRawBinary(fieldNum, def, value, buf)
	default:
		return 0, &FieldError{Field: fieldNum, Err: ErrUnsupportedField}
	}
}

func encodeFixedNumeric(fieldNum int, def FieldDefinition, value, buf []byte) (int, error) {
	if !isDigits(value) {
		return 0, &FieldError{Field: fieldNum, Err: ErrInvalidInputFormat}
	}
	if len(value) > def.Length {
		return 0, &FieldError{Field: fieldNum, Err: ErrFieldTooLong}
	}
	if len(buf) < def.Length {
		return 0, ErrBufferTooSmall
	}
	pad := def.Length - len(value)
	for i := 0; i < pad; i++ {
		buf[i] = '0'
	}
	copy(buf[pad:], value)
	return def.Length, nil
}

func encodeFixedAlpha(fieldNum int, def FieldDefinition, value, buf []byte) (int, error) {
	if !isPrintableASCII(value) {
		return 0, &FieldError{Field: fieldNum, Err: ErrInvalidInputFormat}
	}
	if len(value) > def.Length {
		return 0, &FieldError{Field: fieldNum, Err: ErrFieldTooLong}
	}
	if len(buf) < def.Length {
		return 0, ErrBufferTooSmall
	}
	copy(buf, value)
	for i := len(value); i < def.Length; i++ {
		buf[i] = ' '
	}
	return def.Length, nil
}

func encodeVarNumeric(fieldNum int, def FieldDefinition, value, buf []byte) (int, error) {
	if !isDigits(value) || len(value) < def.MinLength {
		return 0, &FieldError{Field: fieldNum, Err: ErrInvalidInputFormat}
	}
	if len(value) > def.Length {
		return 0, &FieldError{Field: fieldNum, Err: ErrFieldTooLong}
	}
	if len(buf) < 2+len(value) {
		return 0, ErrBufferTooSmall
	}
	writeIntToASCII(buf[:2], len(value), 2)
	copy(buf[2:], value)
	return 2 + len(value), nil
}

func encodeVarBinary(fieldNum int, def FieldDefinition, value, buf []byte) (int, error) {
	if len(value) > def.Length {
		return 0, &FieldError{Field: fieldNum, Err: ErrFieldTooLong}
	}
	if len(buf) < 3+len(value) {
		return 0, ErrBufferTooSmall
	}
	// The prefix counts value bytes, not hex characters.
	writeIntToASCII(buf[:3], len(value), 3)
	copy(buf[3:], value)
	return 3 + len(value), nil
}

func encodeRawBinary(fieldNum int, def FieldDefinition, value, buf []byte) (int, error) {
	if len(value) != def.Length {
		return 0, &FieldError{Field: fieldNum, Err: ErrLengthMismatch}
	}
	if len(buf) < def.Length {
		return 0, ErrBufferTooSmall
	}
	copy(buf, value)
	return def.Length, nil
}

func isDigits(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isPrintableASCII(b []byte) bool {
	for _, c := range b {
		if c < 32 || c > 126 {
			return false
		}
	}
	return true
}

func isHexDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

// writeIntToASCII formats val into buf as exactly digits zero-padded
// decimal characters, without allocating.
func writeIntToASCII(buf []byte, val, digits int) {
	for i := digits - 1; i >= 0; i-- {
		buf[i] = byte(val%10 + '0')
		val /= 10
	}
}

// parseASCIIToInt parses a fixed run of ASCII decimal digits.
func parseASCIIToInt(b []byte) (int, error) {
	n := 0
	for _, ch := range b {
		if ch < '0' || ch > '9' {
			return 0, ErrInvalidInputFormat
		}
		n = n*10 + int(ch-'0')
	}
	return n, nil
}
