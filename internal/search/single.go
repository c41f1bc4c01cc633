package search

import (
	"context"
	"time"

	"github.com/RowanDark/xorsift/internal/analysis"
	"github.com/RowanDark/xorsift/internal/bitops"
	"github.com/RowanDark/xorsift/internal/candidates"
	"github.com/RowanDark/xorsift/internal/logging"
	"github.com/RowanDark/xorsift/internal/observability/metrics"
	"github.com/RowanDark/xorsift/internal/observability/tracing"
	"github.com/RowanDark/xorsift/internal/xor"
)

// SingleReport is the outcome of a single-configuration run: eight rotations
// for each scenario plus the cache that scored them. Scenario1 holds the
// rotate-then-XOR results and Scenario2 the XOR-then-rotate results, both
// indexed by rotation. MatrixError is set when the requested matrix did not
// fit the ciphertext; the results then come from the untransformed
// ciphertext.
type SingleReport struct {
	RunID       string                              `json:"run_id"`
	Matrix      analysis.MatrixConfig               `json:"matrix"`
	Mode        bitops.MatrixMode                   `json:"mode"`
	Scenario1   [analysis.Rotations]analysis.Result `json:"scenario1"`
	Scenario2   [analysis.Rotations]analysis.Result `json:"scenario2"`
	Summary     candidates.Summary                  `json:"cache"`
	MatrixError string                              `json:"matrix_error,omitempty"`

	Cache *candidates.Cache `json:"-"`
}

// Results returns both scenarios as one slice, scenario one first.
func (r *SingleReport) Results() []analysis.Result {
	out := make([]analysis.Result, 0, 2*analysis.Rotations)
	out = append(out, r.Scenario1[:]...)
	return append(out, r.Scenario2[:]...)
}

// RunSingle evaluates both scenarios across every rotation for one matrix
// configuration. A matrix that does not fit is not fatal: the ciphertext is
// analysed without it and the mismatch is reported in MatrixError. An empty
// key fails with xor.ErrEmptyKey.
func RunSingle(ctx context.Context, ciphertext, key []byte, matrix analysis.MatrixConfig, mode bitops.MatrixMode, opts Options) (report *SingleReport, err error) {
	opts = opts.normalize()
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "search.single", tracing.WithAttributes(map[string]any{
		"run_id":           opts.RunID,
		"ciphertext_bytes": len(ciphertext),
		"matrix":           matrix.String(),
		"mode":             mode.String(),
	}))
	defer func() {
		metrics.RecordRun(ctx, "single", time.Since(start), err)
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	if len(key) == 0 {
		return nil, xor.ErrEmptyKey
	}

	cache := candidates.Build(key)
	report = &SingleReport{
		RunID:   opts.RunID,
		Matrix:  matrix,
		Mode:    mode,
		Summary: cache.Summarize(len(key)),
		Cache:   cache,
	}

	applied := matrix
	base, merr := matrixBits(ciphertext, matrix, mode)
	if merr != nil {
		report.MatrixError = merr.Error()
		applied = analysis.NoMatrix
		base = bitops.FromBytes(ciphertext)
		opts.Logger.Warn("matrix step skipped", "matrix", matrix.String(), "mode", mode.String(), "error", merr)
		span.AddEvent("matrix_fallback", map[string]any{"error": merr.Error()})
		opts.journal(logging.AuditEvent{
			EventType: logging.EventMatrixFallback,
			Reason:    merr.Error(),
			Metadata:  map[string]any{"matrix": matrix.String(), "mode": mode.String()},
		})
	}
	if n := len(report.Summary.CollisionSet); n > 0 {
		opts.Logger.Info("candidate collisions", "count", n)
	}

	for r := 0; r < analysis.Rotations; r++ {
		for _, scenario := range analysis.Scenarios {
			c := analysis.Combination{Matrix: applied, Mode: mode, Scenario: scenario, Rotation: r}
			res, err := evaluateBits(base, key, cache, c)
			if err != nil {
				return nil, err
			}
			if scenario == analysis.RotateThenXor {
				report.Scenario1[r] = res
			} else {
				report.Scenario2[r] = res
			}
		}
	}
	return report, nil
}
