package iso8583

import (
	"crypto/des"
	"encoding/hex"
	"fmt"
	"strings"
)

// GeneratePVV derives the 4-digit Visa PIN Verification Value from a
// PAN, PIN, single-digit key index, and the PIN verification key.
//
// The transformed security parameter is the 11 right-most PAN digits
// excluding the check digit, the PVKI, and the first 4 PIN digits,
// packed as 8 bytes and encrypted with single DES under the first 8
// key bytes. The PVV is the first four decimal digits of the
// uppercase-hex ciphertext. If fewer than four decimal digits appear,
// generation fails; the secondary derivation path of the full Visa
// specification is not implemented.
func GeneratePVV(pan, pin, pvki string, pvk []byte) (string, error) {
	if !isDigits([]byte(pan)) || len(pan) < 12 || len(pan) > 19 {
		return "", fmt.Errorf("%w: PAN must be 12-19 digits", ErrInvalidInputFormat)
	}
	if !isDigits([]byte(pin)) || len(pin) < 4 || len(pin) > 12 {
		return "", fmt.Errorf("%w: PIN must be 4-12 digits", ErrInvalidInputFormat)
	}
	if len(pvki) != 1 || !isDigits([]byte(pvki)) {
		return "", fmt.Errorf("%w: PVKI must be a single digit", ErrInvalidInputFormat)
	}
	if len(pvk) < 8 {
		return "", fmt.Errorf("%w: PVK must be at least 8 bytes", ErrInvalidInputFormat)
	}

	tsp := pan[len(pan)-12:len(pan)-1] + pvki + pin[:4]
	tspBytes, err := hex.DecodeString(tsp)
	if err != nil {
		return "", fmt.Errorf("%w: TSP is not a valid block", ErrInvalidInputFormat)
	}

	block, err := des.NewCipher(pvk[:8])
	if err != nil {
		return "", err
	}
	var ciphertext [8]byte
	block.Encrypt(ciphertext[:], tspBytes)

	ctHex := strings.ToUpper(hex.EncodeToString(ciphertext[:]))
	var pvv []byte
	for i := 0; i < len(ctHex) && len(pvv) < 4; i++ {
		if ctHex[i] >= '0' && ctHex[i] <= '9' {
			pvv = append(pvv, ctHex[i])
		}
	}
	if len(pvv) < 4 {
		return "", fmt.Errorf("could not extract 4 decimal digits from ciphertext %s", ctHex)
	}
	return string(pvv), nil
}
