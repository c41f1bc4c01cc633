package ranker_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/xorsift/internal/analysis"
	"github.com/RowanDark/xorsift/internal/bitops"
	"github.com/RowanDark/xorsift/internal/ranker"
)

func result(rotation int, pct float64) analysis.Result {
	return analysis.Result{
		Combination: analysis.Combination{
			Matrix:   analysis.NoMatrix,
			Mode:     bitops.Standard,
			Scenario: analysis.RotateThenXor,
			Rotation: rotation,
		},
		MatchPercentage: pct,
	}
}

func TestRankDescendingAndStable(t *testing.T) {
	in := []analysis.Result{
		result(0, 10),
		result(1, 40),
		result(2, 10),
		result(3, 40),
		result(4, 0),
	}
	ranked := ranker.Rank(in)

	var rotations []int
	for _, r := range ranked {
		rotations = append(rotations, r.Rotation)
	}
	assert.Equal(t, []int{1, 3, 0, 2, 4}, rotations)
	assert.Equal(t, 0, in[0].Rotation, "input must not be reordered")
}

func TestRankDistinguishesCloseScores(t *testing.T) {
	ranked := ranker.Rank([]analysis.Result{result(0, 50), result(1, 50.0000001)})
	assert.Equal(t, 1, ranked[0].Rotation)
}

func TestRankEmpty(t *testing.T) {
	assert.Nil(t, ranker.Rank(nil))
}

func TestAnnotate(t *testing.T) {
	entries := ranker.Annotate(ranker.Rank([]analysis.Result{result(0, 5), result(7, 12.5)}), 10)
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "none:standard:rotate-then-xor:7", entries[0].Combination)
	assert.True(t, entries[0].High)
	assert.Equal(t, "Rotated then XORed | No matrix | Mode: standard | Rotation: 7 bits", entries[0].Label)

	assert.Equal(t, 2, entries[1].Rank)
	assert.False(t, entries[1].High)
}

func TestTop(t *testing.T) {
	xs := []int{1, 2, 3}
	assert.Equal(t, []int{1, 2}, ranker.Top(xs, 2))
	assert.Equal(t, xs, ranker.Top(xs, 0))
	assert.Equal(t, xs, ranker.Top(xs, 50))
}

func TestWriteJSONL(t *testing.T) {
	entries := ranker.Annotate(ranker.Rank([]analysis.Result{result(2, 75), result(3, 25)}), 10)
	path := filepath.Join(t.TempDir(), "nested", "ranked.jsonl")
	require.NoError(t, ranker.WriteJSONL(path, entries))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 2)
	assert.Equal(t, "none:standard:rotate-then-xor:2", lines[0]["combination"])
	assert.Equal(t, "rotate-then-xor", lines[0]["scenario"])
	assert.Equal(t, 75.0, lines[0]["match_percentage"])
}

func TestWriteJSONLRequiresPath(t *testing.T) {
	assert.Error(t, ranker.WriteJSONL("  ", nil))
}

func TestDefaultOutputPath(t *testing.T) {
	t.Setenv("XORSIFT_OUT", "")
	assert.Equal(t, filepath.Join(".", ranker.RankedFilename), ranker.DefaultOutputPath())

	t.Setenv("XORSIFT_OUT", " /var/tmp/xorsift ")
	assert.Equal(t, "/var/tmp/xorsift/ranked.jsonl", ranker.DefaultOutputPath())
}
