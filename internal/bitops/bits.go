// Package bitops converts byte sequences to bit strings and back, and applies
// the two bit-level permutations the search explores: cyclic rotation and
// matrix read-out.
//
// A Bits value holds one element per bit, each 0 or 1, most significant bit of
// every source byte first. Transforms never modify their receiver; each
// returns a freshly allocated value so that branches of a search never alias.
package bitops

import (
	"fmt"
	"strings"
)

// Bits is an ordered sequence of single-bit values.
type Bits []byte

// FromBytes expands each byte into eight bits, most significant bit first.
func FromBytes(data []byte) Bits {
	out := make(Bits, 0, len(data)*8)
	for _, by := range data {
		for i := 7; i >= 0; i-- {
			out = append(out, (by>>uint(i))&1)
		}
	}
	return out
}

// Parse reads a string of '0' and '1' characters. Any other character is an
// error.
func Parse(s string) (Bits, error) {
	out := make(Bits, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			out[i] = 0
		case '1':
			out[i] = 1
		default:
			return nil, fmt.Errorf("invalid bit %q at position %d", s[i], i)
		}
	}
	return out, nil
}

// Bytes packs the bits into bytes, eight at a time in order. A trailing group
// shorter than eight bits is dropped.
func (b Bits) Bytes() []byte {
	out := make([]byte, 0, len(b)/8)
	for i := 0; i+8 <= len(b); i += 8 {
		var v byte
		for _, bit := range b[i : i+8] {
			v = v<<1 | bit&1
		}
		out = append(out, v)
	}
	return out
}

// Rotate returns the bits cyclically shifted left by n mod len(b). Bits that
// fall off the left end reappear on the right. Negative n rotates right.
func (b Bits) Rotate(n int) Bits {
	out := make(Bits, len(b))
	if len(b) == 0 {
		return out
	}
	n %= len(b)
	if n < 0 {
		n += len(b)
	}
	copy(out, b[n:])
	copy(out[len(b)-n:], b[:n])
	return out
}

// Equal reports whether both sequences hold the same bits.
func (b Bits) Equal(other Bits) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if b[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the bits as '0' and '1' characters.
func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, bit := range b {
		sb.WriteByte('0' + bit&1)
	}
	return sb.String()
}

// ByteString renders a single byte as eight binary digits.
func ByteString(v byte) string {
	return fmt.Sprintf("%08b", v)
}
