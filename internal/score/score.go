// Package score measures how plausibly a byte sequence decodes to common
// alphanumeric text under a repeating key.
package score

import (
	"github.com/RowanDark/xorsift/internal/analysis"
	"github.com/RowanDark/xorsift/internal/candidates"
	"github.com/RowanDark/xorsift/internal/xor"
)

// Report is the outcome of scoring one byte sequence.
type Report struct {
	Matches         []bool
	MatchingBytes   []analysis.ByteMatch
	MatchCount      int
	TotalBytes      int
	MatchPercentage float64
}

// Score checks every position of data. At position i the aligned key byte k
// is looked up, probe = data[i]^k is computed, and the position matches when
// probe is in the cache's XOR set for k.
//
// That set is exactly {code^k : code in Alphabet}, so the two XORs with k
// cancel: a position matches iff data[i] is itself an Alphabet code, for every
// key byte.
//
// key must not be empty.
func Score(data, key []byte, cache *candidates.Cache) (Report, error) {
	if len(key) == 0 {
		return Report{}, xor.ErrEmptyKey
	}

	r := Report{
		Matches:    make([]bool, len(data)),
		TotalBytes: len(data),
	}
	for i, b := range data {
		keyByte := xor.KeyByteAt(key, i)
		probe := b ^ keyByte
		if !cache.Contains(keyByte, probe) {
			continue
		}
		r.Matches[i] = true
		r.MatchCount++
		r.MatchingBytes = append(r.MatchingBytes, analysis.ByteMatch{
			Index:      i,
			Byte:       b,
			Candidates: cache.Candidates(probe),
		})
	}
	r.MatchPercentage = Percentage(r.MatchCount, r.TotalBytes)
	return r, nil
}

// Percentage is count/total*100, or 0 when total is 0.
func Percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// Apply copies the report's statistics onto a result.
func (r Report) Apply(res *analysis.Result) {
	res.Matches = r.Matches
	res.MatchingBytes = r.MatchingBytes
	res.MatchCount = r.MatchCount
	res.TotalBytes = r.TotalBytes
	res.MatchPercentage = r.MatchPercentage
}
