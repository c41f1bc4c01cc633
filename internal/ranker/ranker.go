package ranker

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RowanDark/xorsift/internal/analysis"
	"github.com/RowanDark/xorsift/internal/env"
)

// RankedResult is an analysis result annotated with its position in the
// ranking. The embedded analysis.Result fields are kept as-is so the ranked
// output can be written to JSONL without translation.
type RankedResult struct {
	analysis.Result
	Rank        int    `json:"rank"`
	Combination string `json:"combination"`
	Label       string `json:"label"`
	// High is set when the percentage exceeds the highlight threshold passed
	// to Annotate.
	High bool `json:"high,omitempty"`
}

// RankedFilename is the file name used when only a directory is known.
const RankedFilename = "ranked.jsonl"

// DefaultOutputPath is where the full ranking goes when --out is given
// without a value: $XORSIFT_OUT/ranked.jsonl, or ./ranked.jsonl when the
// variable is unset.
func DefaultOutputPath() string {
	dir, ok := env.Get("OUT")
	if !ok {
		dir = "."
	}
	return filepath.Join(dir, RankedFilename)
}

// Rank sorts results by match percentage, highest first. The sort is stable:
// results with equal percentages keep the order they were supplied in, which
// for the search engine is enumeration order. The input slice is not
// modified.
func Rank(results []analysis.Result) []analysis.Result {
	if len(results) == 0 {
		return nil
	}
	ranked := make([]analysis.Result, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchPercentage > ranked[j].MatchPercentage
	})
	return ranked
}

// Annotate numbers an already ranked slice starting at 1 and flags entries
// whose percentage is strictly above highMatch.
func Annotate(ranked []analysis.Result, highMatch float64) []RankedResult {
	out := make([]RankedResult, len(ranked))
	for i, r := range ranked {
		out[i] = RankedResult{
			Result:      r,
			Rank:        i + 1,
			Combination: r.Combination.String(),
			Label:       r.Combination.Label(),
			High:        r.MatchPercentage > highMatch,
		}
	}
	return out
}

// Top returns at most n leading entries. n <= 0 returns everything.
func Top[T any](ranked []T, n int) []T {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

// WriteJSONL persists the ranked results to a JSON Lines file at the provided
// path, one RankedResult per line.
func WriteJSONL(path string, ranked []RankedResult) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("output path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ranked output: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, entry := range ranked {
		if err := encoder.Encode(entry); err != nil {
			return fmt.Errorf("encode ranked result: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush ranked output: %w", err)
	}
	return nil
}
