package candidates

// Alphabet holds the plaintext codes treated as plausible, in scan order:
// 'A'..'Z', then 'a'..'z', then '0'..'9'. The order fixes the order of every
// candidate list the cache produces.
var Alphabet = func() []byte {
	codes := make([]byte, 0, 62)
	for c := byte('A'); c <= 'Z'; c++ {
		codes = append(codes, c)
	}
	for c := byte('a'); c <= 'z'; c++ {
		codes = append(codes, c)
	}
	for c := byte('0'); c <= '9'; c++ {
		codes = append(codes, c)
	}
	return codes
}()

var alphabetSet = func() ByteSet {
	var s ByteSet
	for _, c := range Alphabet {
		s.Add(c)
	}
	return s
}()

// IsAlphabet reports whether b is one of the Alphabet codes.
func IsAlphabet(b byte) bool {
	return alphabetSet.Has(b)
}

// ByteSet is a membership table over all 256 byte values.
type ByteSet [256]bool

// Add inserts b.
func (s *ByteSet) Add(b byte) {
	s[b] = true
}

// Has reports whether b is a member.
func (s *ByteSet) Has(b byte) bool {
	return s[b]
}

// Len returns the number of members.
func (s *ByteSet) Len() int {
	n := 0
	for _, ok := range s {
		if ok {
			n++
		}
	}
	return n
}

// Members returns the members in ascending byte order.
func (s *ByteSet) Members() []byte {
	out := make([]byte, 0, 62)
	for i, ok := range s {
		if ok {
			out = append(out, byte(i))
		}
	}
	return out
}
