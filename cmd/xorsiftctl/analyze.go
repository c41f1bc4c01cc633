package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RowanDark/xorsift/internal/analysis"
	"github.com/RowanDark/xorsift/internal/bitops"
	"github.com/RowanDark/xorsift/internal/candidates"
	"github.com/RowanDark/xorsift/internal/comparison"
	"github.com/RowanDark/xorsift/internal/ranker"
	"github.com/RowanDark/xorsift/internal/search"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		in        inputFlags
		matrix    string
		mode      string
		showBytes bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <ciphertext> <key>",
		Short: "Score both scenarios over all eight rotations for one matrix configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := analysis.ParseMatrixConfig(matrix)
			if err != nil {
				return err
			}
			md := bitops.Standard
			if strings.TrimSpace(mode) != "" {
				if md, err = bitops.ParseMatrixMode(mode); err != nil {
					return err
				}
			}

			opts := a.searchOptions()
			decoded, err := in.decode(cmd.Context(), a, args[0], args[1], opts)
			if err != nil {
				return err
			}
			report, err := search.RunSingle(cmd.Context(), decoded.Ciphertext, decoded.Key, m, md, opts)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					*search.SingleReport
					Input search.Decoded `json:"input"`
				}{report, decoded})
			}
			a.printer.RenderSingle(report, a.cfg.Search.HighMatch)
			if showBytes {
				best := ranker.Rank(report.Results())[0]
				a.printer.RenderBytes(best)
			}
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&matrix, "matrix", "none", "matrix shape as RxC, or none")
	cmd.Flags().StringVar(&mode, "mode", "standard", "matrix read mode (standard, spin-right, spin-left)")
	cmd.Flags().BoolVar(&showBytes, "bytes", false, "print the byte view of the best result")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

type autoOutput struct {
	RunID      string                `json:"run_id"`
	Total      int                   `json:"total"`
	Skipped    int                   `json:"skipped"`
	DurationMS int64                 `json:"duration_ms"`
	Summary    candidates.Summary    `json:"cache"`
	Results    []ranker.RankedResult `json:"results"`
	Input      search.Decoded        `json:"input"`
}

func newAutoCmd(a *app) *cobra.Command {
	var (
		in           inputFlags
		top          int
		outPath      string
		setBaseline  bool
		baselineName string
		showBytes    bool
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "auto <ciphertext> <key>",
		Short: "Run the exhaustive search and print the best-ranked combinations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("top") {
				top = a.cfg.Search.Top
			}
			if top < 0 {
				return fmt.Errorf("--top must not be negative")
			}

			opts := a.searchOptions()
			decoded, err := in.decode(cmd.Context(), a, args[0], args[1], opts)
			if err != nil {
				return err
			}
			report, err := search.RunExhaustive(cmd.Context(), decoded.Ciphertext, decoded.Key, opts)
			if err != nil {
				return err
			}
			ranked := ranker.Annotate(report.Results, a.cfg.Search.HighMatch)

			if outPath != "" {
				if err := ranker.WriteJSONL(outPath, ranked); err != nil {
					return err
				}
				a.logger.Info("ranking written", "path", outPath, "rows", len(ranked))
			}
			if setBaseline && len(report.Results) > 0 {
				mgr, err := comparison.NewBaselineManager()
				if err != nil {
					return err
				}
				b, err := mgr.SetBaseline(decoded.Ciphertext, decoded.Key, report.Results[0], report.RunID, baselineName)
				if err != nil {
					return err
				}
				a.logger.Info("baseline set", "input_id", b.InputID, "combination", b.Combination)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), autoOutput{
					RunID:      report.RunID,
					Total:      report.Total,
					Skipped:    report.Skipped,
					DurationMS: report.Duration.Milliseconds(),
					Summary:    report.Summary,
					Results:    ranker.Top(ranked, top),
					Input:      decoded,
				})
			}
			a.printer.Title(fmt.Sprintf("Run %s: %d combinations, %d skipped, %s", report.RunID, report.Total, report.Skipped, report.Duration.Round(time.Millisecond)))
			a.printer.RenderRanked(ranked, top)
			if showBytes && len(report.Results) > 0 {
				a.printer.RenderBytes(report.Results[0])
			}
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().IntVar(&top, "top", 50, "number of ranked rows to print, 0 for all (defaults to search.top)")
	cmd.Flags().StringVar(&outPath, "out", "", "write the full ranking as JSON lines; --out=PATH, or bare --out for $XORSIFT_OUT/ranked.jsonl")
	cmd.Flags().Lookup("out").NoOptDefVal = ranker.DefaultOutputPath()
	cmd.Flags().BoolVar(&setBaseline, "set-baseline", false, "store the best result as the baseline for this input")
	cmd.Flags().StringVar(&baselineName, "baseline-name", "", "name recorded with --set-baseline")
	cmd.Flags().BoolVar(&showBytes, "bytes", false, "print the byte view of the best result")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
