package iso8583

import "bytes"

// Node is a single tag-length-value entry in a BER-TLV stream.
// Tag is the raw tag bytes (1 or 2), Value the raw value bytes.
type Node struct {
	Tag   []byte
	Value []byte
}

// tagHasContinuation reports whether a first tag byte declares a continuation
// byte: low five bits all set means the tag number lives in the next byte.
func tagHasContinuation(b byte) bool {
	return b&0x1F == 0x1F
}

// EncodeTLV concatenates tag||length||value for each node in input
// order. Only short-form (single byte, 0-127) lengths are emitted;
// a longer value fails with ErrLengthOverflow. Tags must be well formed
// 1- or 2-byte BER tags, otherwise ErrInvalidTag. Errors carry the
// output byte offset of the offending node.
func EncodeTLV(nodes []Node) ([]byte, error) {
	buf := make([]byte, 0, 64)
	for _, n := range nodes {
		if err := checkTag(n.Tag); err != nil {
			return nil, &TLVError{Offset: len(buf), Err: err}
		}
		if len(n.Value) > 0x7F {
			return nil, &TLVError{Offset: len(buf), Err: ErrLengthOverflow}
		}
		buf = append(buf, n.Tag...)
		buf = append(buf, byte(len(n.Value)))
		buf = append(buf, n.Value...)
	}
	return buf, nil
}

func checkTag(tag []byte) error {
	switch len(tag) {
	case 1:
		if tagHasContinuation(tag[0]) {
			// Continuation declared but no continuation byte supplied.
			return ErrInvalidTag
		}
	case 2:
		if !tagHasContinuation(tag[0]) {
			return ErrInvalidTag
		}
		if tag[1]&0x80 != 0 {
			// A set MSB would declare a third tag byte.
			return ErrInvalidTag
		}
	default:
		return ErrInvalidTag
	}
	return nil
}

// DecodeTLV parses a BER-TLV stream into its ordered nodes. Duplicate
// tags are legal and not merged; input order is preserved. A long-form
// length byte (MSB set) is rejected with ErrUnsupportedLengthForm
// rather than mis-parsed, and missing value bytes fail with
// ErrTruncatedTLV. Every error carries the offset it occurred at.
// The returned nodes reference freshly copied bytes, not the input.
func DecodeTLV(data []byte) ([]Node, error) {
	nodes := make([]Node, 0, 8)
	offset := 0
	for offset < len(data) {
		tagStart := offset
		first := data[offset]
		if first == 0x00 {
			// 0x00 is not a valid tag byte; padding is not forwarded.
			return nil, &TLVError{Offset: offset, Err: ErrInvalidTag}
		}
		offset++
		if tagHasContinuation(first) {
			if offset >= len(data) {
				return nil, &TLVError{Offset: tagStart, Err: ErrInvalidTag}
			}
			if data[offset]&0x80 != 0 {
				// Tags longer than two bytes are outside this profile.
				return nil, &TLVError{Offset: tagStart, Err: ErrInvalidTag}
			}
			offset++
		}
		tag := data[tagStart:offset]

		if offset >= len(data) {
			return nil, &TLVError{Offset: offset, Err: ErrTruncatedTLV}
		}
		lengthByte := data[offset]
		if lengthByte&0x80 != 0 {
			return nil, &TLVError{Offset: offset, Err: ErrUnsupportedLengthForm}
		}
		offset++

		length := int(lengthByte)
		if offset+length > len(data) {
			return nil, &TLVError{Offset: offset, Err: ErrTruncatedTLV}
		}
		value := data[offset : offset+length]
		offset += length

		node := Node{Tag: make([]byte, len(tag)), Value: make([]byte, len(value))}
		copy(node.Tag, tag)
		copy(node.Value, value)
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// FindTag returns the first node with the given tag.
func FindTag(nodes []Node, tag []byte) (Node, bool) {
	for _, n := range nodes {
		if bytes.Equal(n.Tag, tag) {
			return n, true
		}
	}
	return Node{}, false
}
