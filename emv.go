package iso8583

import (
	"crypto/aes"
	"crypto/des"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/aead/cmac"
)

// EMV tag constants for the DE 55 objects this package emits.
var (
	tagAmountAuthorized    = []byte{0x9F, 0x02}
	tagAmountOther         = []byte{0x9F, 0x03}
	tagTerminalCountry     = []byte{0x9F, 0x1A}
	tagTVR                 = []byte{0x95}
	tagTransactionCurrency = []byte{0x5F, 0x2A}
	tagTransactionDate     = []byte{0x9A}
	tagTransactionType     = []byte{0x9C}
	tagUnpredictableNumber = []byte{0x9F, 0x37}
	tagATC                 = []byte{0x9F, 0x36}
	tagARQC                = []byte{0x9F, 0x26}
)

// DeriveSessionKey derives a 16-byte session key from a 16-byte master
// derivation key and the application transaction counter, by 3DES-ECB
// encrypting ATC||00*6 and ATC||FF*6 under MDK||MDK[:8]. This is a
// simplified derivation scheme; a production issuer host follows its
// network's own scheme.
func DeriveSessionKey(mdk []byte, atc uint16) ([]byte, error) {
	if len(mdk) != 16 {
		return nil, fmt.Errorf("%w: MDK must be 16 bytes", ErrInvalidInputFormat)
	}
	key := make([]byte, 0, 24)
	key = append(key, mdk...)
	key = append(key, mdk[:8]...)
	block, err := des.NewTripleDESCipher(key)
	if err != nil {
		return nil, err
	}

	var atcBytes [2]byte
	binary.BigEndian.PutUint16(atcBytes[:], atc)

	in1 := [8]byte{atcBytes[0], atcBytes[1]}
	in2 := [8]byte{atcBytes[0], atcBytes[1], 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

	session := make([]byte, 16)
	block.Encrypt(session[:8], in1[:])
	block.Encrypt(session[8:], in2[:])
	return session, nil
}

// GenerateARQC computes an 8-byte application cryptogram over the
// concatenated transaction data: ISO 9797-1 method-2 padding followed
// by AES-CMAC under the session key, truncated to 8 bytes.
func GenerateARQC(sessionKey, transactionData []byte) ([]byte, error) {
	block, err := aes.NewCipher(sessionKey)
	if err != nil {
		return nil, err
	}
	padded := make([]byte, 0, len(transactionData)+aes.BlockSize)
	padded = append(padded, transactionData...)
	padded = append(padded, 0x80)
	for len(padded)%aes.BlockSize != 0 {
		padded = append(padded, 0x00)
	}
	mac, err := cmac.Sum(padded, block, aes.BlockSize)
	if err != nil {
		return nil, err
	}
	return mac[:8], nil
}

// ChipDataParams carries the transaction details authenticated by the
// cryptogram. CurrencyCode and CountryCode are 4 hex digits (e.g.
// "0840"), Date is YYMMDD, UnpredictableNumber is 8 hex digits.
type ChipDataParams struct {
	Amount              int64
	CurrencyCode        string
	CountryCode         string
	Date                string
	ATC                 uint16
	UnpredictableNumber string
}

// BuildChipData assembles a complete DE 55 TLV stream, including a
// freshly generated ARQC, ready to be carried in an authorization
// request. The terminal verification results and transaction type are
// fixed sample values.
func BuildChipData(mdk []byte, params ChipDataParams) ([]byte, error) {
	const (
		tvr         = "0000008000"
		txType      = "00"
		amountOther = "000000000000"
	)
	amount := fmt.Sprintf("%012d", params.Amount)
	atcHex := fmt.Sprintf("%04x", params.ATC)

	for _, s := range []string{params.CurrencyCode, params.CountryCode, params.Date, params.UnpredictableNumber} {
		if len(s)%2 != 0 || !isHexDigits(s) {
			return nil, fmt.Errorf("%w: chip data parameters must be even-length hex", ErrInvalidInputFormat)
		}
	}

	sessionKey, err := DeriveSessionKey(mdk, params.ATC)
	if err != nil {
		return nil, err
	}

	// CDOL1-ordered data over which the cryptogram is computed.
	arqcInput, err := hex.DecodeString(amount + amountOther + params.CountryCode +
		tvr + params.CurrencyCode + params.Date + txType +
		params.UnpredictableNumber + atcHex)
	if err != nil {
		return nil, fmt.Errorf("%w: chip data parameters must be hex", ErrInvalidInputFormat)
	}
	arqc, err := GenerateARQC(sessionKey, arqcInput)
	if err != nil {
		return nil, err
	}

	nodes := []Node{
		{Tag: tagAmountAuthorized, Value: mustHex(amount)},
		{Tag: tagAmountOther, Value: mustHex(amountOther)},
		{Tag: tagTerminalCountry, Value: mustHex(params.CountryCode)},
		{Tag: tagTVR, Value: mustHex(tvr)},
		{Tag: tagTransactionCurrency, Value: mustHex(params.CurrencyCode)},
		{Tag: tagTransactionDate, Value: mustHex(params.Date)},
		{Tag: tagTransactionType, Value: mustHex(txType)},
		{Tag: tagUnpredictableNumber, Value: mustHex(params.UnpredictableNumber)},
		{Tag: tagATC, Value: mustHex(atcHex)},
		{Tag: tagARQC, Value: arqc},
	}
	return EncodeTLV(nodes)
}
