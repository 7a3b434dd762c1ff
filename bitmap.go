package iso8583

// Bitmap tracks which data elements are present in a message and packs
// itself to the 8- or 16-byte wire form. Field id k maps to byte
// (k-1)/8, bit 7-((k-1)%8) (MSB first). Bit 1 is the secondary-bitmap
// indicator and is maintained automatically.
type Bitmap struct {
	primary      [primaryBitmapSize]byte
	secondary    [secondaryBitmapSize]byte
	hasSecondary bool
}

// Set marks the data element as present. Ids outside 2..128 fail with
// ErrFieldIDOutOfRange: id 1 is reserved for the indicator bit and is
// never settable by callers.
func (b *Bitmap) Set(fieldNum int) error {
	if fieldNum < MinFieldNumber || fieldNum > MaxFieldNumber {
		return &FieldError{Field: fieldNum, Err: ErrFieldIDOutOfRange}
	}
	if fieldNum <= 64 {
		byteIdx := (fieldNum - 1) / 8
		bitIdx := 7 - ((fieldNum - 1) % 8)
		b.primary[byteIdx] |= 1 << bitIdx
		return nil
	}
	b.hasSecondary = true
	b.primary[0] |= 0x80 // bit 1: secondary bitmap present
	adjusted := fieldNum - 64
	byteIdx := (adjusted - 1) / 8
	bitIdx := 7 - ((adjusted - 1) % 8)
	b.secondary[byteIdx] |= 1 << bitIdx
	return nil
}

// IsSet reports whether the data element's bit is set.
func (b *Bitmap) IsSet(fieldNum int) bool {
	if fieldNum < 1 || fieldNum > MaxFieldNumber {
		return false
	}
	if fieldNum <= 64 {
		byteIdx := (fieldNum - 1) / 8
		bitIdx := 7 - ((fieldNum - 1) % 8)
		return b.primary[byteIdx]&(1<<bitIdx) != 0
	}
	if !b.hasSecondary {
		return false
	}
	adjusted := fieldNum - 64
	byteIdx := (adjusted - 1) / 8
	bitIdx := 7 - ((adjusted - 1) % 8)
	return b.secondary[byteIdx]&(1<<bitIdx) != 0
}

// PresentFields returns the set data elements in ascending order.
func (b *Bitmap) PresentFields() []int {
	fields := make([]int, 0, 16)
	for id := MinFieldNumber; id <= MaxFieldNumber; id++ {
		if b.IsSet(id) {
			fields = append(fields, id)
		}
	}
	return fields
}

// HasSecondary reports whether the secondary bitmap is present.
func (b *Bitmap) HasSecondary() bool {
	return b.hasSecondary
}

// Size returns the packed size in bytes: 8, or 16 with a secondary.
func (b *Bitmap) Size() int {
	if b.hasSecondary {
		return primaryBitmapSize + secondaryBitmapSize
	}
	return primaryBitmapSize
}

// Pack writes the bitmap's wire form into buf and returns the number
// of bytes written.
func (b *Bitmap) Pack(buf []byte) (int, error) {
	if len(buf) < b.Size() {
		return 0, ErrBufferTooSmall
	}
	copy(buf, b.primary[:])
	if !b.hasSecondary {
		return primaryBitmapSize, nil
	}
	copy(buf[primaryBitmapSize:], b.secondary[:])
	return primaryBitmapSize + secondaryBitmapSize, nil
}

// Unpack reads the bitmap's wire form from data and returns the number
// of bytes consumed.
func (b *Bitmap) Unpack(data []byte) (int, error) {
	if len(data) < primaryBitmapSize {
		return 0, ErrInvalidBitmap
	}
	copy(b.primary[:], data[:primaryBitmapSize])
	b.hasSecondary = b.primary[0]&0x80 != 0
	if !b.hasSecondary {
		b.secondary = [secondaryBitmapSize]byte{}
		return primaryBitmapSize, nil
	}
	if len(data) < primaryBitmapSize+secondaryBitmapSize {
		return 0, ErrInvalidBitmap
	}
	copy(b.secondary[:], data[primaryBitmapSize:primaryBitmapSize+secondaryBitmapSize])
	return primaryBitmapSize + secondaryBitmapSize, nil
}

// Reset clears all bits.
func (b *Bitmap) Reset() {
	b.primary = [primaryBitmapSize]byte{}
	b.secondary = [secondaryBitmapSize]byte{}
	b.hasSecondary = false
}
