package search

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/RowanDark/xorsift/internal/analysis"
	"github.com/RowanDark/xorsift/internal/candidates"
	"github.com/RowanDark/xorsift/internal/logging"
	"github.com/RowanDark/xorsift/internal/observability/metrics"
	"github.com/RowanDark/xorsift/internal/observability/tracing"
	"github.com/RowanDark/xorsift/internal/ranker"
	"github.com/RowanDark/xorsift/internal/xor"
)

// ExhaustiveReport is the ranked outcome of a full sweep. Results holds every
// evaluated combination, highest match percentage first; equal percentages
// keep enumeration order.
type ExhaustiveReport struct {
	RunID    string             `json:"run_id"`
	Results  []analysis.Result  `json:"results"`
	Total    int                `json:"total"`
	Skipped  int                `json:"skipped"`
	Summary  candidates.Summary `json:"cache"`
	Duration time.Duration      `json:"duration_ns"`
}

type slot struct {
	result analysis.Result
	ok     bool
}

// RunExhaustive evaluates every combination of NewSpace(len(ciphertext)) and
// returns them ranked. A combination that fails is logged and left out; it
// never aborts the run. An empty key fails the whole run with
// xor.ErrEmptyKey, and a cancelled ctx returns ctx.Err() with no results.
func RunExhaustive(ctx context.Context, ciphertext, key []byte, opts Options) (*ExhaustiveReport, error) {
	return runSpace(ctx, ciphertext, key, NewSpace(len(ciphertext)), opts)
}

func runSpace(ctx context.Context, ciphertext, key []byte, space Space, opts Options) (report *ExhaustiveReport, err error) {
	opts = opts.normalize()
	start := time.Now()
	total := space.Len()

	ctx, span := tracing.StartSpan(ctx, "search.exhaustive", tracing.WithAttributes(map[string]any{
		"run_id":           opts.RunID,
		"ciphertext_bytes": len(ciphertext),
		"combinations":     total,
		"workers":          opts.Workers,
	}))
	defer func() {
		metrics.RecordRun(ctx, "exhaustive", time.Since(start), err)
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	if len(key) == 0 {
		return nil, xor.ErrEmptyKey
	}

	opts.journal(logging.AuditEvent{
		EventType: logging.EventRunStarted,
		Metadata: map[string]any{
			"mode":             "exhaustive",
			"ciphertext_bytes": len(ciphertext),
			"key":              key,
			"combinations":     total,
		},
	})
	opts.Logger.Debug("exhaustive run started", "combinations", total, "workers", opts.Workers)

	cache := candidates.Build(key)
	slots := make([]slot, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := 0; i < total; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := space.At(i)
			res, err := Evaluate(ciphertext, key, cache, c)
			metrics.RecordCombination(string(c.Scenario), err != nil)
			if err != nil {
				opts.Logger.Warn("combination skipped",
					"matrix", c.Matrix.String(),
					"mode", c.Mode.String(),
					"scenario", string(c.Scenario),
					"rotation", c.Rotation,
					"error", err,
				)
				opts.journal(logging.AuditEvent{
					EventType: logging.EventCombinationSkipped,
					Reason:    err.Error(),
					Metadata:  map[string]any{"combination": c.String()},
				})
				return nil
			}
			slots[i] = slot{result: res, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]analysis.Result, 0, total)
	for _, s := range slots {
		if s.ok {
			results = append(results, s.result)
		}
	}
	ranked := ranker.Rank(results)
	if len(ranked) > 0 {
		metrics.SetBestMatch(ranked[0].MatchPercentage)
	}

	report = &ExhaustiveReport{
		RunID:    opts.RunID,
		Results:  ranked,
		Total:    total,
		Skipped:  total - len(results),
		Summary:  cache.Summarize(len(key)),
		Duration: time.Since(start),
	}
	span.SetAttribute("skipped", report.Skipped)
	opts.Logger.Info("exhaustive run completed",
		"evaluated", len(results),
		"skipped", report.Skipped,
		"duration", report.Duration,
	)
	opts.journal(logging.AuditEvent{
		EventType: logging.EventRunCompleted,
		Metadata: map[string]any{
			"evaluated": len(results),
			"skipped":   report.Skipped,
			"best":      bestPercentage(ranked),
		},
	})
	return report, nil
}

func bestPercentage(ranked []analysis.Result) float64 {
	if len(ranked) == 0 {
		return 0
	}
	return ranked[0].MatchPercentage
}
