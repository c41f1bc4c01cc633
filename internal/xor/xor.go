// Package xor applies repeating-key XOR to byte sequences.
package xor

import "errors"

// ErrEmptyKey is returned when a repeating-key XOR is requested with no key.
var ErrEmptyKey = errors.New("xor key cannot be empty")

// Repeating XORs data with key, cycling the key so that result[i] is
// data[i] ^ key[i%len(key)]. The input slices are not modified.
func Repeating(data, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out, nil
}

// KeyByteAt returns the key byte that lines up with position i.
func KeyByteAt(key []byte, i int) byte {
	return key[i%len(key)]
}
