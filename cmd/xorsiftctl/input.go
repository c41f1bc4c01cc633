package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/RowanDark/xorsift/internal/cipher"
	"github.com/RowanDark/xorsift/internal/search"
)

// inputFlags are the decoding flags shared by every command that takes a
// ciphertext and key.
type inputFlags struct {
	ciphertextFormat string
	keyFormat        string
	policy           string
	reverse          bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.ciphertextFormat, "ct-format", "", "ciphertext format (auto, base64, hex, decimal, octal, binary, ascii)")
	cmd.Flags().StringVar(&f.keyFormat, "key-format", "", "key format (auto, base64, hex, decimal, octal, binary, ascii)")
	cmd.Flags().StringVar(&f.policy, "policy", "", "numeral range policy (wrap, clamp, reject)")
	cmd.Flags().BoolVar(&f.reverse, "reverse", false, "reverse the ciphertext text before decoding")
}

// decode resolves flag values against the configured defaults and decodes
// both texts.
func (f *inputFlags) decode(ctx context.Context, a *app, ciphertext, key string, opts search.Options) (search.Decoded, error) {
	ctFormat, err := cipher.ParseFormat(firstNonEmpty(f.ciphertextFormat, a.cfg.Decode.CiphertextFormat))
	if err != nil {
		return search.Decoded{}, err
	}
	keyFormat, err := cipher.ParseFormat(firstNonEmpty(f.keyFormat, a.cfg.Decode.KeyFormat))
	if err != nil {
		return search.Decoded{}, err
	}
	policy, err := a.policy(f.policy)
	if err != nil {
		return search.Decoded{}, err
	}
	in := search.Input{
		Ciphertext:       ciphertext,
		Key:              key,
		CiphertextFormat: ctFormat,
		KeyFormat:        keyFormat,
		Policy:           policy,
		Reverse:          f.reverse,
	}
	return in.Decode(ctx, opts)
}

func (a *app) policy(flagValue string) (cipher.NumeralPolicy, error) {
	return cipher.ParseNumeralPolicy(firstNonEmpty(flagValue, a.cfg.Decode.NumeralPolicy))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
