package search

import (
	"fmt"

	"github.com/RowanDark/xorsift/internal/analysis"
	"github.com/RowanDark/xorsift/internal/bitops"
)

// Space is the flat cartesian product of matrix configurations, read modes,
// scenarios and rotations. Index i maps to a combination with the matrix as
// the slowest-varying coordinate and the rotation as the fastest, which is
// the tie-break order of a ranked sweep.
type Space struct {
	matrices []analysis.MatrixConfig
}

// NewSpace builds the space for a ciphertext of n bytes: no matrix followed
// by every factor pair of the n*8 bit count.
func NewSpace(n int) Space {
	pairs := bitops.FactorPairs(n * 8)
	matrices := make([]analysis.MatrixConfig, 0, len(pairs)+1)
	matrices = append(matrices, analysis.NoMatrix)
	for _, d := range pairs {
		matrices = append(matrices, analysis.MatrixOf(d))
	}
	return Space{matrices: matrices}
}

// Matrices returns the matrix coordinate values in order.
func (s Space) Matrices() []analysis.MatrixConfig {
	return append([]analysis.MatrixConfig(nil), s.matrices...)
}

// Len is the number of combinations.
func (s Space) Len() int {
	return len(s.matrices) * len(bitops.Modes) * len(analysis.Scenarios) * analysis.Rotations
}

// At returns the combination at index i. It panics when i is out of range.
func (s Space) At(i int) analysis.Combination {
	if i < 0 || i >= s.Len() {
		panic(fmt.Sprintf("search space index %d out of range [0,%d)", i, s.Len()))
	}
	rotation := i % analysis.Rotations
	i /= analysis.Rotations
	scenario := analysis.Scenarios[i%len(analysis.Scenarios)]
	i /= len(analysis.Scenarios)
	mode := bitops.Modes[i%len(bitops.Modes)]
	i /= len(bitops.Modes)
	return analysis.Combination{
		Matrix:   s.matrices[i],
		Mode:     mode,
		Scenario: scenario,
		Rotation: rotation,
	}
}

// MatrixOptions lists the matrix shapes that exactly cover the bits of
// ciphertext, ascending by rows.
func MatrixOptions(ciphertext []byte) []bitops.Dimension {
	return bitops.FactorPairs(len(ciphertext) * 8)
}
