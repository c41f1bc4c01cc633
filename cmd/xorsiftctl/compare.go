package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RowanDark/xorsift/internal/analysis"
	"github.com/RowanDark/xorsift/internal/comparison"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		in           inputFlags
		againstStore bool
		context      int
		noDiff       bool
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "compare <ciphertext> <key> <combination> [combination]",
		Short: "Compare two combinations over the same input, or one against the stored baseline",
		Long: `Combinations are written matrix:mode:scenario:rotation, for example
none:standard:rotate-then-xor:0 or 8x8:spin-left:xor-then-rotate:3.

With --baseline the stored baseline for the input is side A and the single
combination given is side B.`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if againstStore && len(args) != 3 {
				return errors.New("--baseline takes exactly one combination")
			}
			if !againstStore && len(args) != 4 {
				return errors.New("two combinations are required without --baseline")
			}
			combos := make([]analysis.Combination, 0, 2)
			for _, raw := range args[2:] {
				c, err := analysis.ParseCombination(raw)
				if err != nil {
					return err
				}
				combos = append(combos, c)
			}

			decoded, err := in.decode(cmd.Context(), a, args[0], args[1], a.searchOptions())
			if err != nil {
				return err
			}
			opts := comparison.DefaultCompareOptions()
			if cmd.Flags().Changed("context") {
				opts.Context = context
			}
			opts.SkipDiff = noDiff

			var result *comparison.ComparisonResult
			if againstStore {
				mgr, err := comparison.NewBaselineManager()
				if err != nil {
					return err
				}
				result, err = mgr.CompareToBaseline(decoded.Ciphertext, decoded.Key, combos[0], opts)
				if err != nil {
					return err
				}
			} else {
				result, err = comparison.CompareCombinations(decoded.Ciphertext, decoded.Key, combos[0], combos[1], opts)
				if err != nil {
					return err
				}
			}

			if asJSON {
				out, err := comparison.FormatJSON(result)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), comparison.FormatComparison(result))
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVar(&againstStore, "baseline", false, "compare against the stored baseline for this input")
	cmd.Flags().IntVar(&context, "context", 3, "lines of context in the unified diff")
	cmd.Flags().BoolVar(&noDiff, "no-diff", false, "omit the unified diff")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
