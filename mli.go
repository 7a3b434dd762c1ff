package iso8583

// MLIType selects how a message length indicator is framed ahead of a
// packed message when handing it to a transport.
type MLIType int

const (
	MLINone   MLIType = iota
	MLIBinary         // 2-byte big-endian binary length
	MLIASCII          // 4-digit ASCII decimal length
)

// WriteMLI writes the length indicator for a message of msgLen bytes
// into buf and returns the number of bytes written.
func WriteMLI(msgLen int, buf []byte, mliType MLIType) (int, error) {
	switch mliType {
	case MLINone:
		return 0, nil

	case MLIBinary:
		if len(buf) < 2 {
			return 0, ErrBufferTooSmall
		}
		if msgLen > 0xFFFF {
			return 0, ErrLengthMismatch
		}
		buf[0] = byte(msgLen >> 8)
		buf[1] = byte(msgLen)
		return 2, nil

	case MLIASCII:
		if len(buf) < 4 {
			return 0, ErrBufferTooSmall
		}
		if msgLen > 9999 {
			return 0, ErrLengthMismatch
		}
		writeIntToASCII(buf[:4], msgLen, 4)
		return 4, nil
	}
	return 0, ErrLengthMismatch
}

// ReadMLI reads a length indicator from buf. It returns the message
// length and the number of bytes the indicator consumed.
func ReadMLI(buf []byte, mliType MLIType) (int, int, error) {
	switch mliType {
	case MLINone:
		return len(buf), 0, nil

	case MLIBinary:
		if len(buf) < 2 {
			return 0, 0, ErrLengthMismatch
		}
		return int(buf[0])<<8 | int(buf[1]), 2, nil

	case MLIASCII:
		if len(buf) < 4 {
			return 0, 0, ErrLengthMismatch
		}
		n, err := parseASCIIToInt(buf[:4])
		if err != nil {
			return 0, 0, err
		}
		return n, 4, nil
	}
	return 0, 0, ErrLengthMismatch
}

// Frame prepends the chosen length indicator to a packed message.
func Frame(msg []byte, mliType MLIType) ([]byte, error) {
	var head [4]byte
	n, err := WriteMLI(len(msg), head[:], mliType)
	if err != nil {
		return nil, err
	}
	framed := make([]byte, 0, n+len(msg))
	framed = append(framed, head[:n]...)
	framed = append(framed, msg...)
	return framed, nil
}
