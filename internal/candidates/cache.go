// Package candidates precomputes, for one key, which XOR results each key
// byte can produce from a plausible plaintext character, and which plaintext
// characters could have produced each result.
package candidates

// Cache is built once per key and is read-only afterwards, so it may be shared
// by concurrent scorers.
type Cache struct {
	keyBytes   []byte
	xorSets    map[byte]*ByteSet
	candidates map[byte][]byte
	collisions []byte
}

// Build scans every distinct key byte against the Alphabet. For each pair it
// records code^keyByte in that key byte's set and appends code to the
// candidate list of the result unless already present. A result joins the
// collision list the first time a second distinct code maps to it.
func Build(key []byte) *Cache {
	c := &Cache{
		xorSets:    make(map[byte]*ByteSet),
		candidates: make(map[byte][]byte),
	}

	var seenCollision ByteSet
	for _, keyByte := range key {
		if _, ok := c.xorSets[keyByte]; ok {
			continue
		}
		set := &ByteSet{}
		c.xorSets[keyByte] = set
		c.keyBytes = append(c.keyBytes, keyByte)

		for _, code := range Alphabet {
			result := code ^ keyByte
			set.Add(result)

			existing := c.candidates[result]
			if containsByte(existing, code) {
				continue
			}
			existing = append(existing, code)
			c.candidates[result] = existing
			if len(existing) > 1 && !seenCollision.Has(result) {
				seenCollision.Add(result)
				c.collisions = append(c.collisions, result)
			}
		}
	}
	return c
}

// XorSet returns the set of code^keyByte values for a key byte present in the
// key.
func (c *Cache) XorSet(keyByte byte) (*ByteSet, bool) {
	set, ok := c.xorSets[keyByte]
	return set, ok
}

// Contains reports whether v is in the XOR set of keyByte. Key bytes absent
// from the key have no set and never contain anything.
func (c *Cache) Contains(keyByte, v byte) bool {
	set, ok := c.xorSets[keyByte]
	return ok && set.Has(v)
}

// Candidates returns the plaintext codes that produce result under some key
// byte, in Alphabet scan order of first discovery.
func (c *Cache) Candidates(result byte) []byte {
	list := c.candidates[result]
	if len(list) == 0 {
		return nil
	}
	out := make([]byte, len(list))
	copy(out, list)
	return out
}

// Collisions returns the results reachable from more than one distinct code,
// in the order they were discovered.
func (c *Cache) Collisions() []byte {
	out := make([]byte, len(c.collisions))
	copy(out, c.collisions)
	return out
}

// KeyBytes returns the distinct key bytes in first-seen order.
func (c *Cache) KeyBytes() []byte {
	out := make([]byte, len(c.keyBytes))
	copy(out, c.keyBytes)
	return out
}

// SetCount is the number of distinct XOR result sets, one per distinct key byte.
func (c *Cache) SetCount() int {
	return len(c.xorSets)
}

// Summary describes a cache for display.
type Summary struct {
	KeyLength    int    `json:"key_length"`
	UniqueSets   int    `json:"unique_sets"`
	Collisions   int    `json:"collisions"`
	CollisionSet []byte `json:"collision_bytes,omitempty"`
}

// Summarize reports the cache shape for a key of keyLength bytes.
func (c *Cache) Summarize(keyLength int) Summary {
	return Summary{
		KeyLength:    keyLength,
		UniqueSets:   c.SetCount(),
		Collisions:   len(c.collisions),
		CollisionSet: c.Collisions(),
	}
}

func containsByte(list []byte, b byte) bool {
	for _, v := range list {
		if v == b {
			return true
		}
	}
	return false
}
