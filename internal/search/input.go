package search

import (
	"context"
	"errors"
	"strings"

	"github.com/RowanDark/xorsift/internal/cipher"
	"github.com/RowanDark/xorsift/internal/logging"
)

// Input is the ciphertext and key as text, before decoding.
type Input struct {
	Ciphertext       string
	Key              string
	CiphertextFormat cipher.Format
	KeyFormat        cipher.Format
	Policy           cipher.NumeralPolicy
	// Reverse reverses the ciphertext text before it is decoded. The key is
	// never reversed.
	Reverse bool
}

// Decoded holds the byte sequences an Input decoded to.
type Decoded struct {
	Ciphertext       []byte        `json:"-"`
	Key              []byte        `json:"-"`
	CiphertextFormat cipher.Format `json:"ciphertext_format"`
	KeyFormat        cipher.Format `json:"key_format"`
}

// Decode turns both texts into bytes. Blank text fails with ErrEmptyInput.
// Decode failures are returned as *cipher.DecodeError and recorded in the
// run journal when opts carries one.
func (in Input) Decode(ctx context.Context, opts Options) (Decoded, error) {
	if strings.TrimSpace(in.Ciphertext) == "" || strings.TrimSpace(in.Key) == "" {
		return Decoded{}, ErrEmptyInput
	}

	ct, err := cipher.Decoder{Policy: in.Policy, Reverse: in.Reverse}.Decode(ctx, in.Ciphertext, in.CiphertextFormat)
	if err != nil {
		recordDecodeFailure(opts, "ciphertext", err)
		return Decoded{}, err
	}
	key, err := cipher.Decoder{Policy: in.Policy}.Decode(ctx, in.Key, in.KeyFormat)
	if err != nil {
		recordDecodeFailure(opts, "key", err)
		return Decoded{}, err
	}
	return Decoded{
		Ciphertext:       ct.Bytes,
		Key:              key.Bytes,
		CiphertextFormat: ct.Format,
		KeyFormat:        key.Format,
	}, nil
}

func recordDecodeFailure(opts Options, field string, err error) {
	meta := map[string]any{"field": field}
	reason := err.Error()
	var decodeErr *cipher.DecodeError
	if errors.As(err, &decodeErr) {
		meta["format"] = string(decodeErr.Format)
		if field == "key" {
			// the offending token is key material
			reason = decodeErr.Err.Error()
		}
	}
	if opts.Logger != nil {
		opts.Logger.Warn("decode failed", "field", field, "error", reason)
	}
	opts.journal(logging.AuditEvent{
		EventType: logging.EventDecodeFailed,
		RunID:     opts.RunID,
		Metadata:  meta,
		Reason:    reason,
	})
}
