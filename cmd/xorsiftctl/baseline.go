package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RowanDark/xorsift/internal/comparison"
)

func newBaselineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Inspect the stored best combination per input",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all baselines, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := comparison.NewBaselineManager()
			if err != nil {
				return err
			}
			baselines, err := mgr.ListBaselines()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), comparison.FormatBaselineList(baselines))
			return nil
		},
	}

	var getIn inputFlags
	get := &cobra.Command{
		Use:   "get <ciphertext> <key>",
		Short: "Show the baseline for an input",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			decoded, err := getIn.decode(cmd.Context(), a, args[0], args[1], a.searchOptions())
			if err != nil {
				return err
			}
			mgr, err := comparison.NewBaselineManager()
			if err != nil {
				return err
			}
			b, err := mgr.GetBaseline(decoded.Ciphertext, decoded.Key)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Input:       %s\n", b.InputID)
			if b.Name != "" {
				fmt.Fprintf(out, "Name:        %s\n", b.Name)
			}
			fmt.Fprintf(out, "Combination: %s\n", b.Combination)
			fmt.Fprintf(out, "Match:       %.2f%%\n", b.MatchPercentage)
			fmt.Fprintf(out, "Set at:      %s\n", b.SetAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
	getIn.register(get)

	var delIn inputFlags
	del := &cobra.Command{
		Use:   "delete <ciphertext> <key>",
		Short: "Delete the baseline for an input",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			decoded, err := delIn.decode(cmd.Context(), a, args[0], args[1], a.searchOptions())
			if err != nil {
				return err
			}
			mgr, err := comparison.NewBaselineManager()
			if err != nil {
				return err
			}
			if err := mgr.DeleteBaseline(decoded.Ciphertext, decoded.Key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted baseline %s\n", comparison.InputID(decoded.Ciphertext, decoded.Key))
			return nil
		},
	}
	delIn.register(del)

	cmd.AddCommand(list, get, del)
	return cmd
}
