package search

import (
	"fmt"

	"github.com/RowanDark/xorsift/internal/analysis"
	"github.com/RowanDark/xorsift/internal/bitops"
	"github.com/RowanDark/xorsift/internal/candidates"
	"github.com/RowanDark/xorsift/internal/score"
	"github.com/RowanDark/xorsift/internal/xor"
)

// Evaluate applies one combination to ciphertext and scores the outcome. The
// matrix step, when configured, runs on the ciphertext bits before the
// scenario. A shape that does not cover the bits exactly is returned as a
// *bitops.DimensionMismatchError.
func Evaluate(ciphertext, key []byte, cache *candidates.Cache, c analysis.Combination) (analysis.Result, error) {
	base, err := matrixBits(ciphertext, c.Matrix, c.Mode)
	if err != nil {
		return analysis.Result{}, err
	}
	return evaluateBits(base, key, cache, c)
}

func matrixBits(ciphertext []byte, m analysis.MatrixConfig, mode bitops.MatrixMode) (bitops.Bits, error) {
	bits := bitops.FromBytes(ciphertext)
	if m.None() {
		return bits, nil
	}
	return bitops.ReadMatrix(bits, mode, m.Rows, m.Cols)
}

// evaluateBits runs the scenario of c on bits that already went through the
// matrix step.
func evaluateBits(base bitops.Bits, key []byte, cache *candidates.Cache, c analysis.Combination) (analysis.Result, error) {
	var intermediate, final []byte
	switch c.Scenario {
	case analysis.RotateThenXor:
		intermediate = base.Rotate(c.Rotation).Bytes()
		xored, err := xor.Repeating(intermediate, key)
		if err != nil {
			return analysis.Result{}, err
		}
		final = xored
	case analysis.XorThenRotate:
		xored, err := xor.Repeating(base.Bytes(), key)
		if err != nil {
			return analysis.Result{}, err
		}
		intermediate = xored
		final = bitops.FromBytes(xored).Rotate(c.Rotation).Bytes()
	default:
		return analysis.Result{}, fmt.Errorf("unknown scenario %q", c.Scenario)
	}

	report, err := score.Score(final, key, cache)
	if err != nil {
		return analysis.Result{}, err
	}
	res := analysis.Result{
		Combination:  c,
		Bytes:        final,
		Intermediate: intermediate,
	}
	report.Apply(&res)
	return res, nil
}
