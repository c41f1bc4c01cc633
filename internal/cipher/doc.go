// Package cipher turns user supplied text into the byte sequences the search
// engine works on.
//
// Six input formats are understood: base64, hex, decimal, octal, binary and
// ascii. Each format is a pair of registered operations ("hex_decode",
// "hex_encode", ...) looked up through the operation registry, so the
// command line and HTTP layers can list and run them by name.
//
// # Detection
//
// DetectFormat picks the first format whose shape matches the trimmed input,
// trying base64, hex, decimal, octal and binary in that order and falling back
// to ascii. Hex is tried before the numeral formats and every decimal, octal
// or binary string is also valid hex, so those three are only used when named
// explicitly. SmartDetector reports every matching format, not just the first.
//
// # Numerals
//
// Decimal, octal and binary input is a whitespace separated list of tokens.
// A token outside 0..255 is handled by a NumeralPolicy: wrapped modulo 256
// (the default), clamped, or rejected with ErrNumeralRange. The same policy
// applies to ascii characters whose code point exceeds 255.
//
// # Errors
//
// Every decoding failure is a *DecodeError wrapping one of the sentinel
// errors, so callers can use errors.Is and errors.As. Decoding is all or
// nothing: no partial output is returned with an error.
package cipher
