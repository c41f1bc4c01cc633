package comparison

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
)

// FormatComparison formats a comparison result for display.
func FormatComparison(result *ComparisonResult) string {
	var out strings.Builder

	out.WriteString("┌─ Combination Comparison ─────────────────────────────────┐\n")
	out.WriteString(fmt.Sprintf("│  A: %-53s │\n", truncateString(result.A.Combination, 53)))
	out.WriteString(fmt.Sprintf("│     %-53s │\n", truncateString(sideStats(result.A), 53)))
	out.WriteString(fmt.Sprintf("│  B: %-53s │\n", truncateString(result.B.Combination, 53)))
	out.WriteString(fmt.Sprintf("│     %-53s │\n", truncateString(sideStats(result.B), 53)))

	out.WriteString("├─ Summary ────────────────────────────────────────────────┤\n")
	s := result.Summary
	out.WriteString(fmt.Sprintf("│  %-56s │\n", fmt.Sprintf("Match delta: %+d (%+.2f%%)", s.MatchDelta, s.PercentDelta)))
	out.WriteString(fmt.Sprintf("│  %-56s │\n", fmt.Sprintf("Gained: %d  Lost: %d  Both: %d", s.GainedCount, s.LostCount, s.BothCount)))
	out.WriteString(fmt.Sprintf("│  %-56s │\n", fmt.Sprintf("Differing bytes: %d", s.DifferingBytes)))
	out.WriteString("└──────────────────────────────────────────────────────────┘\n")

	if len(result.Gained) > 0 {
		out.WriteString("\nMatched only in B:\n")
		writeChanges(&out, result.Gained)
	}
	if len(result.Lost) > 0 {
		out.WriteString("\nMatched only in A:\n")
		writeChanges(&out, result.Lost)
	}
	if result.Diff != "" {
		out.WriteString("\n")
		out.WriteString(result.Diff)
	}
	return out.String()
}

func writeChanges(out *strings.Builder, changes []ByteChange) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Index\tA\tB\tCandidates\n")
	fmt.Fprintf(w, "-----\t--\t--\t----------\n")
	for _, c := range changes {
		fmt.Fprintf(w, "%d\t%02x\t%02x\t%s\n", c.Index, c.A, c.B, string(c.Candidates))
	}
	w.Flush()
}

func sideStats(s Side) string {
	return fmt.Sprintf("%d/%d bytes, %.2f%%", s.MatchCount, s.TotalBytes, s.MatchPercentage)
}

// FormatBaselineList formats a list of baselines.
func FormatBaselineList(baselines []Baseline) string {
	if len(baselines) == 0 {
		return "No baselines set"
	}

	var out strings.Builder
	out.WriteString("Baselines:\n\n")

	w := tabwriter.NewWriter(&out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Input\tCombination\tPercent\tSet At\n")
	fmt.Fprintf(w, "-----\t-----------\t-------\t------\n")

	for _, b := range baselines {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n",
			b.InputID,
			truncateString(b.Combination, 40),
			b.MatchPercentage,
			b.SetAt.Format("2006-01-02 15:04"),
		)
	}

	w.Flush()
	return out.String()
}

// FormatJSON exports comparison result as JSON.
func FormatJSON(result *ComparisonResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
