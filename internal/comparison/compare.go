package comparison

import (
	"errors"
	"fmt"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/RowanDark/xorsift/internal/analysis"
	"github.com/RowanDark/xorsift/internal/bitops"
	"github.com/RowanDark/xorsift/internal/candidates"
	"github.com/RowanDark/xorsift/internal/search"
)

// ErrLengthMismatch is returned when the two results were not produced from
// inputs of the same length.
var ErrLengthMismatch = errors.New("results cover inputs of different length")

// Compare compares two results and returns the differences. A is the
// reference side: Gained lists positions that match only in B, Lost those
// that match only in A.
func Compare(a, b analysis.Result, opts CompareOptions) (*ComparisonResult, error) {
	if len(a.Bytes) != len(b.Bytes) || len(a.Matches) != len(b.Matches) {
		return nil, fmt.Errorf("%w: %d and %d bytes", ErrLengthMismatch, len(a.Bytes), len(b.Bytes))
	}

	result := &ComparisonResult{
		A:          sideOf(a),
		B:          sideOf(b),
		ComparedAt: time.Now().UTC(),
	}

	candA := candidateMap(a)
	candB := candidateMap(b)
	for i := range a.Matches {
		if i < len(a.Bytes) && a.Bytes[i] != b.Bytes[i] {
			result.Summary.DifferingBytes++
		}
		switch {
		case a.Matches[i] && b.Matches[i]:
			result.Summary.BothCount++
		case b.Matches[i]:
			result.Gained = append(result.Gained, ByteChange{Index: i, A: a.Bytes[i], B: b.Bytes[i], Candidates: candB[i]})
		case a.Matches[i]:
			result.Lost = append(result.Lost, ByteChange{Index: i, A: a.Bytes[i], B: b.Bytes[i], Candidates: candA[i]})
		}
	}
	result.Summary.GainedCount = len(result.Gained)
	result.Summary.LostCount = len(result.Lost)
	result.Summary.MatchDelta = b.MatchCount - a.MatchCount
	result.Summary.PercentDelta = b.MatchPercentage - a.MatchPercentage

	if !opts.SkipDiff {
		diff, err := unifiedDiff(a, b, opts.Context)
		if err != nil {
			return nil, fmt.Errorf("diff byte views: %w", err)
		}
		result.Diff = diff
	}
	return result, nil
}

// CompareCombinations evaluates two combinations over the same ciphertext
// and key and compares the results.
func CompareCombinations(ciphertext, key []byte, a, b analysis.Combination, opts CompareOptions) (*ComparisonResult, error) {
	cache := candidates.Build(key)
	resA, err := search.Evaluate(ciphertext, key, cache, a)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", a, err)
	}
	resB, err := search.Evaluate(ciphertext, key, cache, b)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", b, err)
	}
	return Compare(resA, resB, opts)
}

// ByteView renders one line per byte: index, binary, hex, printable
// character and whether it matched. The lines keep their newline so they
// can be fed to a unified diff.
func ByteView(r analysis.Result) []string {
	lines := make([]string, len(r.Bytes))
	for i, b := range r.Bytes {
		mark := "-"
		if i < len(r.Matches) && r.Matches[i] {
			mark = "match"
		}
		lines[i] = fmt.Sprintf("%4d %s %02x %c %s\n", i, bitops.ByteString(b), b, printable(b), mark)
	}
	return lines
}

func unifiedDiff(a, b analysis.Result, context int) (string, error) {
	if context <= 0 {
		context = DefaultCompareOptions().Context
	}
	u := difflib.UnifiedDiff{
		A:        ByteView(a),
		B:        ByteView(b),
		FromFile: a.Combination.String(),
		ToFile:   b.Combination.String(),
		Context:  context,
	}
	return difflib.GetUnifiedDiffString(u)
}

func sideOf(r analysis.Result) Side {
	return Side{
		Combination:     r.Combination.String(),
		Label:           r.Combination.Label(),
		MatchCount:      r.MatchCount,
		TotalBytes:      r.TotalBytes,
		MatchPercentage: r.MatchPercentage,
	}
}

func candidateMap(r analysis.Result) map[int]analysis.ByteSeq {
	m := make(map[int]analysis.ByteSeq, len(r.MatchingBytes))
	for _, mb := range r.MatchingBytes {
		m[mb.Index] = mb.Candidates
	}
	return m
}

func printable(b byte) rune {
	if b >= 0x20 && b < 0x7f {
		return rune(b)
	}
	return '.'
}
