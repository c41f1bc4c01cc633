package comparison

import (
	"time"

	"github.com/RowanDark/xorsift/internal/analysis"
)

// ComparisonResult is the outcome of comparing two analysis results over the
// same input.
type ComparisonResult struct {
	A          Side         `json:"a"`
	B          Side         `json:"b"`
	Summary    Summary      `json:"summary"`
	Gained     []ByteChange `json:"gained"`
	Lost       []ByteChange `json:"lost"`
	Diff       string       `json:"diff,omitempty"`
	ComparedAt time.Time    `json:"compared_at"`
}

// Side describes one of the compared results.
type Side struct {
	Combination     string  `json:"combination"`
	Label           string  `json:"label"`
	MatchCount      int     `json:"match_count"`
	TotalBytes      int     `json:"total_bytes"`
	MatchPercentage float64 `json:"match_percentage"`
}

// Summary provides high-level statistics about the comparison.
type Summary struct {
	// MatchDelta is B's match count minus A's.
	MatchDelta   int     `json:"match_delta"`
	PercentDelta float64 `json:"percent_delta"`

	GainedCount    int `json:"gained_count"`
	LostCount      int `json:"lost_count"`
	BothCount      int `json:"both_count"`
	DifferingBytes int `json:"differing_bytes"`
}

// ByteChange is a position whose match flag differs between A and B.
// Candidates belong to whichever side matched.
type ByteChange struct {
	Index      int              `json:"index"`
	A          byte             `json:"a"`
	B          byte             `json:"b"`
	Candidates analysis.ByteSeq `json:"candidates,omitempty"`
}

// Baseline is a saved best result for one ciphertext and key pair.
type Baseline struct {
	InputID         string    `json:"input_id"`
	Combination     string    `json:"combination"`
	MatchPercentage float64   `json:"match_percentage"`
	RunID           string    `json:"run_id,omitempty"`
	SetAt           time.Time `json:"set_at"`
	Name            string    `json:"name,omitempty"`
}

// CompareOptions configures how results are compared.
type CompareOptions struct {
	// Context is the number of unchanged byte lines around each diff hunk.
	Context int

	// SkipDiff omits the unified diff.
	SkipDiff bool
}

// DefaultCompareOptions returns sensible defaults.
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{
		Context: 3,
	}
}
