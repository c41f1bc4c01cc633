package cipher

import (
	"context"
	"strings"

	"github.com/RowanDark/xorsift/internal/observability/metrics"
)

// Decoder turns text into bytes. The zero value wraps out-of-range numerals
// and does not reverse input.
type Decoder struct {
	// Policy handles numerals and code points outside 0..255.
	Policy NumeralPolicy
	// Reverse reverses the text character by character before detection
	// and decoding.
	Reverse bool
}

// Decoded is the outcome of a decode.
type Decoded struct {
	Bytes  []byte `json:"bytes"`
	Format Format `json:"format"`
}

// Decode resolves format against the (possibly reversed) text and decodes it.
func (d Decoder) Decode(ctx context.Context, text string, format Format) (Decoded, error) {
	trimmed := strings.TrimSpace(text)

	var ops []OperationConfig
	detectOn := trimmed
	if d.Reverse {
		ops = append(ops, OperationConfig{Name: ReverseOperation})
		detectOn = ReverseText(trimmed)
	}
	resolved := DetectFormat(detectOn, format)
	if _, err := codecFor(resolved, OperationTypeDecode); err != nil {
		metrics.RecordDecode("unknown", ErrUnknownFormat)
		return Decoded{Format: resolved}, err
	}

	policy := d.Policy
	if policy == "" {
		policy = PolicyWrap
	}
	ops = append(ops, OperationConfig{
		Name:       resolved.DecodeOperation(),
		Parameters: map[string]interface{}{"policy": policy},
	})
	out, err := (&Pipeline{Operations: ops}).Execute(ctx, []byte(trimmed))
	metrics.RecordDecode(string(resolved), err)
	if err != nil {
		return Decoded{Format: resolved}, err
	}
	if out == nil {
		out = []byte{}
	}
	return Decoded{Bytes: out, Format: resolved}, nil
}

// Decode decodes text with the default Decoder.
func Decode(text string, format Format) ([]byte, error) {
	res, err := Decoder{}.Decode(context.Background(), text, format)
	if err != nil {
		return nil, err
	}
	return res.Bytes, nil
}

// Encode renders data in a concrete format through its registered encode
// operation.
func Encode(data []byte, format Format) (string, error) {
	op, err := codecFor(format, OperationTypeEncode)
	if err != nil {
		return "", err
	}
	out, err := op.Execute(context.Background(), data, nil)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
