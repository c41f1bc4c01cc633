package cipher

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBase64  = errors.New("invalid base64 input")
	ErrOddLength      = errors.New("hex string must have even length")
	ErrInvalidHex     = errors.New("invalid hex digit")
	ErrInvalidNumeral = errors.New("unparseable numeral")
	ErrNumeralRange   = errors.New("value outside 0..255")
	ErrUnknownFormat  = errors.New("unknown format")
)

// DecodeError describes why input text could not be decoded. Token is the
// offending token or character when one can be named.
type DecodeError struct {
	Format Format
	Token  string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("decode %s: %v: %q", e.Format, e.Err, e.Token)
	}
	return fmt.Sprintf("decode %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
