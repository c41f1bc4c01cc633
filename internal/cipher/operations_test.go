package cipher

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
		want   []byte
		wantAs Format
	}{
		{"auto hex", "48656C6C6F", FormatAuto, []byte("Hello"), FormatHex},
		{"auto hex with spaces", "  48 65 6c 6c 6f ", FormatAuto, []byte("Hello"), FormatHex},
		{"auto base64", "SGVsbG8=", FormatAuto, []byte("Hello"), FormatBase64},
		{"auto ascii", "Hello", FormatAuto, []byte("Hello"), FormatASCII},
		{"explicit base64 unpadded", "SGVsbG8", FormatBase64, []byte("Hello"), FormatBase64},
		{"explicit base64 inner space", "SGVs bG8=", FormatBase64, []byte("Hello"), FormatBase64},
		{"explicit base64 inner tab", "SGVs\tbG8=", FormatBase64, []byte("Hello"), FormatBase64},
		{"explicit decimal", "72 101 108 108 111", FormatDecimal, []byte("Hello"), FormatDecimal},
		{"explicit octal", "110 145 154 154 157", FormatOctal, []byte("Hello"), FormatOctal},
		{"explicit binary", "01001000 01100101", FormatBinary, []byte("He"), FormatBinary},
		{"explicit binary short tokens", "1 10 11", FormatBinary, []byte{1, 2, 3}, FormatBinary},
		{"explicit ascii latin1", "é", FormatASCII, []byte{233}, FormatASCII},
		{"empty auto", "", FormatAuto, []byte{}, FormatASCII},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decoder{}.Decode(context.Background(), tt.input, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Bytes)
			assert.Equal(t, tt.wantAs, got.Format)
		})
	}
}

func TestDecodeNumeralPolicies(t *testing.T) {
	tests := []struct {
		input  string
		format Format
		policy NumeralPolicy
		want   []byte
	}{
		{"999", FormatDecimal, PolicyWrap, []byte{231}},
		{"999", FormatDecimal, PolicyClamp, []byte{255}},
		{"-1", FormatDecimal, PolicyWrap, []byte{255}},
		{"-1", FormatDecimal, PolicyClamp, []byte{0}},
		{"256 257", FormatDecimal, PolicyWrap, []byte{0, 1}},
		{"777", FormatOctal, PolicyWrap, []byte{0xff}}, // 511 mod 256
		{"100000001", FormatBinary, PolicyWrap, []byte{1}},
		{"340282366920938463463374607431768211457", FormatDecimal, PolicyWrap, []byte{1}},
		{"€", FormatASCII, PolicyWrap, []byte{172}}, // U+20AC mod 256
		{"€", FormatASCII, PolicyClamp, []byte{255}},
		{"255", FormatDecimal, PolicyReject, []byte{255}},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy)+" "+tt.input, func(t *testing.T) {
			got, err := Decoder{Policy: tt.policy}.Decode(context.Background(), tt.input, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Bytes)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		format    Format
		policy    NumeralPolicy
		wantErr   error
		wantToken string
	}{
		{"odd hex", "abc", FormatHex, "", ErrOddLength, ""},
		{"auto odd hex", "123", FormatAuto, "", ErrOddLength, ""},
		{"bad hex digit", "zz", FormatHex, "", ErrInvalidHex, "z"},
		{"bad base64", "!!!!", FormatBase64, "", ErrInvalidBase64, ""},
		{"base64 one char over", "SGVsb", FormatBase64, "", ErrInvalidBase64, ""},
		{"base64 excess padding", "SGVsbG8===", FormatBase64, "", ErrInvalidBase64, ""},
		{"bad decimal", "72 12abc", FormatDecimal, "", ErrInvalidNumeral, "12abc"},
		{"bad octal digit", "8", FormatOctal, "", ErrInvalidNumeral, "8"},
		{"bad binary digit", "2", FormatBinary, "", ErrInvalidNumeral, "2"},
		{"reject large", "999", FormatDecimal, PolicyReject, ErrNumeralRange, "999"},
		{"reject negative", "-1", FormatDecimal, PolicyReject, ErrNumeralRange, "-1"},
		{"reject wide rune", "a€", FormatASCII, PolicyReject, ErrNumeralRange, "€"},
		{"unknown format", "x", Format("rot13"), "", ErrUnknownFormat, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decoder{Policy: tt.policy}.Decode(context.Background(), tt.input, tt.format)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr), "expected *DecodeError, got %T", err)
			assert.Equal(t, tt.wantToken, decodeErr.Token)
			assert.Contains(t, decodeErr.Error(), "decode ")
		})
	}
}

func TestDecodeReverse(t *testing.T) {
	got, err := Decoder{Reverse: true}.Decode(context.Background(), "F6C6C65684", FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, FormatHex, got.Format)
	assert.Equal(t, []byte("Hello"), got.Bytes)

	// reversal happens before decoding, so ascii comes back reversed
	got, err = Decoder{Reverse: true}.Decode(context.Background(), "olleH", FormatASCII)
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello"), got.Bytes)
}

func TestReverseTextIsRuneWise(t *testing.T) {
	assert.Equal(t, "c€ba", ReverseText("ab€c"))
	assert.Equal(t, "", ReverseText(""))
}

func TestEncode(t *testing.T) {
	data := []byte("Hi")
	tests := []struct {
		format Format
		want   string
	}{
		{FormatBase64, "SGk="},
		{FormatHex, "4869"},
		{FormatDecimal, "72 105"},
		{FormatOctal, "110 151"},
		{FormatBinary, "01001000 01101001"},
		{FormatASCII, "Hi"},
	}
	for _, tt := range tests {
		got, err := Encode(data, tt.format)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.format)
	}

	_, err := Encode(data, FormatAuto)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	data := make([]byte, 64)
	rng.Read(data)

	for _, f := range []Format{FormatBase64, FormatHex, FormatDecimal, FormatOctal, FormatBinary} {
		encoded, err := Encode(data, f)
		require.NoError(t, err)
		decoded, err := Decode(encoded, f)
		require.NoError(t, err)
		if !bytes.Equal(decoded, data) {
			t.Fatalf("%s round trip mismatch", f)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	got, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatAuto, got)

	_, err = ParseFormat("rot13")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseNumeralPolicy(t *testing.T) {
	got, err := ParseNumeralPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyWrap, got)

	got, err = ParseNumeralPolicy(" Clamp ")
	require.NoError(t, err)
	assert.Equal(t, PolicyClamp, got)

	_, err = ParseNumeralPolicy("saturate")
	assert.Error(t, err)
}
