package cipher

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Base64 Operations

// Base64DecodeOp decodes standard Base64 data. Whitespace anywhere is
// ignored and padding is optional, so "SGVsbG8" and "SGVs bG8=" both decode.
type Base64DecodeOp struct {
	BaseOperation
}

func (op *Base64DecodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	text := stripSpace(string(input))
	if len(text)%4 == 0 {
		for i := 0; i < 2 && strings.HasSuffix(text, "="); i++ {
			text = text[:len(text)-1]
		}
	}
	if len(text)%4 == 1 {
		return nil, &DecodeError{Format: FormatBase64, Err: ErrInvalidBase64}
	}
	decoded, err := base64.RawStdEncoding.DecodeString(text)
	if err != nil {
		return nil, &DecodeError{Format: FormatBase64, Err: ErrInvalidBase64}
	}
	return decoded, nil
}

// Base64EncodeOp encodes data as standard Base64
type Base64EncodeOp struct {
	BaseOperation
}

func (op *Base64EncodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return []byte(base64.StdEncoding.EncodeToString(input)), nil
}

// Hex Operations

// HexDecodeOp decodes hexadecimal text. All whitespace is ignored.
type HexDecodeOp struct {
	BaseOperation
}

func (op *HexDecodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	digits := stripSpace(string(input))
	if len(digits)%2 != 0 {
		return nil, &DecodeError{Format: FormatHex, Err: ErrOddLength}
	}
	decoded, err := hex.DecodeString(digits)
	if err != nil {
		token := ""
		if invalid, ok := err.(hex.InvalidByteError); ok {
			token = string(rune(invalid))
		}
		return nil, &DecodeError{Format: FormatHex, Token: token, Err: ErrInvalidHex}
	}
	return decoded, nil
}

// HexEncodeOp encodes bytes as lowercase hexadecimal text
type HexEncodeOp struct {
	BaseOperation
}

func (op *HexEncodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return []byte(hex.EncodeToString(input)), nil
}

// Numeral Operations

// NumeralDecodeOp decodes whitespace separated numerals in a fixed base. The
// "policy" parameter selects the NumeralPolicy for values outside 0..255.
type NumeralDecodeOp struct {
	BaseOperation
	Format Format
	Base   int
}

func (op *NumeralDecodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	policy := policyParam(params)
	tokens := strings.Fields(string(input))
	out := make([]byte, 0, len(tokens))
	for _, tok := range tokens {
		v, ok := new(big.Int).SetString(tok, op.Base)
		if !ok {
			return nil, &DecodeError{Format: op.Format, Token: tok, Err: ErrInvalidNumeral}
		}
		b, ok := policy.byteValue(v)
		if !ok {
			return nil, &DecodeError{Format: op.Format, Token: tok, Err: ErrNumeralRange}
		}
		out = append(out, b)
	}
	return out, nil
}

// NumeralEncodeOp renders bytes as space separated numerals. Binary output
// is padded to eight digits.
type NumeralEncodeOp struct {
	BaseOperation
	Base int
}

func (op *NumeralEncodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	parts := make([]string, len(input))
	for i, b := range input {
		s := strconv.FormatUint(uint64(b), op.Base)
		if op.Base == 2 {
			s = strings.Repeat("0", 8-len(s)) + s
		}
		parts[i] = s
	}
	return []byte(strings.Join(parts, " ")), nil
}

// ASCII Operations

// ASCIIDecodeOp maps every character of the trimmed input to one byte holding
// its code point. Code points above 255 follow the "policy" parameter.
type ASCIIDecodeOp struct {
	BaseOperation
}

func (op *ASCIIDecodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	policy := policyParam(params)
	text := strings.TrimSpace(string(input))
	out := make([]byte, 0, len(text))
	for _, r := range text {
		b, ok := policy.byteValue(big.NewInt(int64(r)))
		if !ok {
			return nil, &DecodeError{Format: FormatASCII, Token: string(r), Err: ErrNumeralRange}
		}
		out = append(out, b)
	}
	return out, nil
}

// ASCIIEncodeOp renders each byte as the character with that code point.
type ASCIIEncodeOp struct {
	BaseOperation
}

func (op *ASCIIEncodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	var sb strings.Builder
	for _, b := range input {
		sb.WriteRune(rune(b))
	}
	return []byte(sb.String()), nil
}

// Text Operations

// ReverseTextOp reverses text character by character.
type ReverseTextOp struct {
	BaseOperation
}

func (op *ReverseTextOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return []byte(ReverseText(string(input))), nil
}

// ReverseText reverses s by character, not by byte.
func ReverseText(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func pair(decode, encode Operation, decodeBase, encodeBase *BaseOperation) {
	decodeBase.ReverseOp = encode
	encodeBase.ReverseOp = decode
	mustRegister(decode)
	mustRegister(encode)
}

func mustRegister(op Operation) {
	if err := RegisterOperation(op); err != nil {
		panic(err)
	}
}

// init registers the decode and encode operation for every format plus the
// text reversal used by --reverse.
func init() {
	base64Decode := &Base64DecodeOp{BaseOperation{
		NameValue:        FormatBase64.DecodeOperation(),
		TypeValue:        OperationTypeDecode,
		DescriptionValue: "Decode standard Base64 text",
	}}
	base64Encode := &Base64EncodeOp{BaseOperation{
		NameValue:        FormatBase64.EncodeOperation(),
		TypeValue:        OperationTypeEncode,
		DescriptionValue: "Encode bytes as standard Base64",
	}}
	pair(base64Decode, base64Encode, &base64Decode.BaseOperation, &base64Encode.BaseOperation)

	hexDecode := &HexDecodeOp{BaseOperation{
		NameValue:        FormatHex.DecodeOperation(),
		TypeValue:        OperationTypeDecode,
		DescriptionValue: "Decode hexadecimal text, ignoring whitespace",
	}}
	hexEncode := &HexEncodeOp{BaseOperation{
		NameValue:        FormatHex.EncodeOperation(),
		TypeValue:        OperationTypeEncode,
		DescriptionValue: "Encode bytes as hexadecimal text",
	}}
	pair(hexDecode, hexEncode, &hexDecode.BaseOperation, &hexEncode.BaseOperation)

	for _, nf := range []struct {
		format Format
		base   int
		label  string
	}{
		{FormatDecimal, 10, "decimal"},
		{FormatOctal, 8, "octal"},
		{FormatBinary, 2, "binary"},
	} {
		decode := &NumeralDecodeOp{
			BaseOperation: BaseOperation{
				NameValue:        nf.format.DecodeOperation(),
				TypeValue:        OperationTypeDecode,
				DescriptionValue: "Decode whitespace separated " + nf.label + " numerals",
			},
			Format: nf.format,
			Base:   nf.base,
		}
		encode := &NumeralEncodeOp{
			BaseOperation: BaseOperation{
				NameValue:        nf.format.EncodeOperation(),
				TypeValue:        OperationTypeEncode,
				DescriptionValue: "Encode bytes as " + nf.label + " numerals",
			},
			Base: nf.base,
		}
		pair(decode, encode, &decode.BaseOperation, &encode.BaseOperation)
	}

	asciiDecode := &ASCIIDecodeOp{BaseOperation{
		NameValue:        FormatASCII.DecodeOperation(),
		TypeValue:        OperationTypeDecode,
		DescriptionValue: "Map each character to its code point",
	}}
	asciiEncode := &ASCIIEncodeOp{BaseOperation{
		NameValue:        FormatASCII.EncodeOperation(),
		TypeValue:        OperationTypeEncode,
		DescriptionValue: "Map each byte to the character with that code point",
	}}
	pair(asciiDecode, asciiEncode, &asciiDecode.BaseOperation, &asciiEncode.BaseOperation)

	reverse := &ReverseTextOp{BaseOperation{
		NameValue:        ReverseOperation,
		TypeValue:        OperationTypeTransform,
		DescriptionValue: "Reverse text character by character",
	}}
	reverse.ReverseOp = reverse
	mustRegister(reverse)
}

// ReverseOperation is the registry name of the text reversal.
const ReverseOperation = "reverse_text"
