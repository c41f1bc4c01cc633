package candidates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphabetOrder(t *testing.T) {
	require.Len(t, Alphabet, 62)
	assert.Equal(t, byte('A'), Alphabet[0])
	assert.Equal(t, byte('Z'), Alphabet[25])
	assert.Equal(t, byte('a'), Alphabet[26])
	assert.Equal(t, byte('z'), Alphabet[51])
	assert.Equal(t, byte('0'), Alphabet[52])
	assert.Equal(t, byte('9'), Alphabet[61])
}

func TestIsAlphabet(t *testing.T) {
	for v := 0; v < 256; v++ {
		b := byte(v)
		want := (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
		if IsAlphabet(b) != want {
			t.Fatalf("IsAlphabet(%#x) = %v, want %v", b, !want, want)
		}
	}
}

func TestBuildZeroKeyIsIdentity(t *testing.T) {
	c := Build([]byte{0})
	assert.Empty(t, c.Collisions())

	set, ok := c.XorSet(0)
	require.True(t, ok)
	assert.Equal(t, 62, set.Len())
	for _, code := range Alphabet {
		assert.True(t, set.Has(code))
		assert.Equal(t, []byte{code}, c.Candidates(code))
	}
}

func TestBuildSingleByteKeysNeverCollide(t *testing.T) {
	for k := 0; k < 256; k++ {
		c := Build([]byte{byte(k)})
		if len(c.Collisions()) != 0 {
			t.Fatalf("key byte %#x produced collisions %v", k, c.Collisions())
		}
	}
}

func TestBuildCollisionsAcrossKeyBytes(t *testing.T) {
	c := Build([]byte("AB"))
	collisions := c.Collisions()
	require.NotEmpty(t, collisions)

	// 'B'^'A' and 'A'^'B' both give 0x03; 'B' is found first while scanning key byte 'A'.
	assert.Equal(t, byte(0x03), collisions[0])
	assert.Equal(t, []byte{'B', 'A'}, c.Candidates(0x03))

	assert.ElementsMatch(t, bruteForceCollisions([]byte("AB")), collisions)
}

func TestBuildMatchesBruteForceReference(t *testing.T) {
	keys := [][]byte{
		[]byte("key"),
		{0x20, 0x00},
		{0x01, 0x02, 0x03, 0x04},
		[]byte("ICE"),
	}
	for _, key := range keys {
		c := Build(key)
		assert.ElementsMatch(t, bruteForceCollisions(key), c.Collisions(), "key %q", key)

		for _, kb := range key {
			set, ok := c.XorSet(kb)
			require.True(t, ok)
			for v := 0; v < 256; v++ {
				want := IsAlphabet(byte(v) ^ kb)
				assert.Equal(t, want, set.Has(byte(v)), "key byte %#x value %#x", kb, v)
			}
		}
	}
}

func TestBuildDeduplicatesKeyBytes(t *testing.T) {
	c := Build([]byte("AABA"))
	assert.Equal(t, []byte("AB"), c.KeyBytes())
	assert.Equal(t, 2, c.SetCount())
}

func TestContainsUnknownKeyByte(t *testing.T) {
	c := Build([]byte("A"))
	_, ok := c.XorSet('Z')
	assert.False(t, ok)
	assert.False(t, c.Contains('Z', 0x00))
	assert.True(t, c.Contains('A', 'B'^'A'))
}

func TestCandidatesReturnsCopy(t *testing.T) {
	c := Build([]byte("AB"))
	list := c.Candidates(0x03)
	list[0] = 0
	assert.Equal(t, []byte{'B', 'A'}, c.Candidates(0x03))
	assert.Nil(t, c.Candidates('|'))
}

func TestSummarize(t *testing.T) {
	c := Build([]byte("AB"))
	s := c.Summarize(2)
	assert.Equal(t, 2, s.KeyLength)
	assert.Equal(t, 2, s.UniqueSets)
	assert.Equal(t, len(c.Collisions()), s.Collisions)
}

func bruteForceCollisions(key []byte) []byte {
	producers := make(map[byte]map[byte]struct{})
	for _, kb := range key {
		for _, code := range Alphabet {
			r := code ^ kb
			if producers[r] == nil {
				producers[r] = make(map[byte]struct{})
			}
			producers[r][code] = struct{}{}
		}
	}
	var out []byte
	for r, codes := range producers {
		if len(codes) > 1 {
			out = append(out, r)
		}
	}
	return out
}
