package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/RowanDark/xorsift/internal/perf"
	"github.com/RowanDark/xorsift/internal/search"
)

// historyRows is the number of runs per workload shown in the Markdown history.
const historyRows = 20

func main() {
	var (
		baselinePath  string
		outputPath    string
		threshold     float64
		iterations    int
		reportVersion string
		historyPath   string
		historyMDPath string
		only          string
	)

	flag.StringVar(&baselinePath, "baseline", "", "optional baseline report for regression detection")
	flag.StringVar(&outputPath, "output", "", "where to write the current metrics report (JSON)")
	flag.Float64Var(&threshold, "threshold", 0.10, "maximum allowed regression expressed as a ratio (0.10 = 10%)")
	flag.IntVar(&iterations, "iterations", 1, "number of times to run each workload and average the results")
	flag.StringVar(&reportVersion, "report-version", runtime.Version(), "version label embedded in the metrics report")
	flag.StringVar(&historyPath, "history", "", "optional JSONL file that accumulates metrics over time")
	flag.StringVar(&historyMDPath, "history-markdown", "", "optional Markdown summary generated from the history data")
	flag.StringVar(&only, "workload", "", "comma separated workload names to run (default: all)")
	flag.Parse()

	if threshold <= 0 || threshold >= 1 {
		log.Fatalf("threshold must be between 0 and 1 (got %.3f)", threshold)
	}
	if iterations <= 0 {
		log.Fatalf("iterations must be positive (got %d)", iterations)
	}
	if historyMDPath != "" && historyPath == "" {
		log.Fatalf("--history-markdown requires --history to be set")
	}

	workloads, err := selectWorkloads(only)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := runAll(ctx, workloads, iterations)
	if err != nil {
		log.Fatal(err)
	}

	report := perf.Report{
		Version:   reportVersion,
		Timestamp: time.Now().UTC(),
		GitRef:    gitRef(),
		Workloads: results,
	}

	if outputPath != "" {
		if err := perf.SaveReport(outputPath, report); err != nil {
			log.Fatalf("save report: %v", err)
		}
		fmt.Fprintf(os.Stdout, "Saved metrics report to %s\n", outputPath)
	}

	if historyPath != "" {
		history, err := perf.AppendHistory(historyPath, report)
		if err != nil {
			log.Fatalf("update history: %v", err)
		}
		fmt.Fprintf(os.Stdout, "Appended metrics to history %s\n", historyPath)
		if historyMDPath != "" {
			md := perf.RenderHistoryMarkdown(history, historyRows)
			if err := os.WriteFile(historyMDPath, []byte(md), 0o644); err != nil {
				log.Fatalf("write history markdown: %v", err)
			}
			fmt.Fprintf(os.Stdout, "Rendered history markdown to %s\n", historyMDPath)
		}
	}

	if baselinePath != "" {
		baseline, err := perf.LoadReport(baselinePath)
		if err != nil {
			log.Fatalf("load baseline: %v", err)
		}
		cmp := perf.Compare(baseline, report, threshold)
		fmt.Print(cmp.String())
		if cmp.Failed() {
			log.Fatalf("benchmark gate failed: %d regressions, %d workloads with changed output", len(cmp.Regressions()), len(cmp.Drift))
		}
		return
	}
	printSummary(os.Stdout, report)
}

func selectWorkloads(only string) ([]perf.WorkloadConfig, error) {
	if strings.TrimSpace(only) == "" {
		return perf.DefaultWorkloads, nil
	}
	var out []perf.WorkloadConfig
	for _, name := range strings.Split(only, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		wl, ok := perf.FindWorkload(name)
		if !ok {
			return nil, fmt.Errorf("unknown workload %q", name)
		}
		out = append(out, wl)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no workloads selected")
	}
	return out, nil
}

func runAll(ctx context.Context, workloads []perf.WorkloadConfig, iterations int) ([]perf.WorkloadMetrics, error) {
	results := make([]perf.WorkloadMetrics, 0, len(workloads))
	for _, cfg := range workloads {
		samples := make([]perf.WorkloadMetrics, 0, iterations)
		for i := 0; i < iterations; i++ {
			res, err := perf.RunWorkload(ctx, cfg, search.Options{})
			if err != nil {
				return nil, fmt.Errorf("workload %s iteration %d: %w", cfg.Name, i+1, err)
			}
			samples = append(samples, res)
		}
		results = append(results, perf.AverageMetrics(samples))
	}
	return results, nil
}

func gitRef() string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

func printSummary(w io.Writer, report perf.Report) {
	fmt.Fprintln(w, "Exhaustive search metrics:")
	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Workload\tCombinations/s\tP95 Latency (ms)\tBytes/Combination\tCPU (s)\tBest Match\n")
	for _, wl := range report.Workloads {
		fmt.Fprintf(writer, "%s\t%.0f\t%.2f\t%.0f\t%.2f\t%.2f%%\n",
			wl.Name,
			wl.Throughput,
			wl.Latency.P95,
			wl.Memory.BytesPerCombination,
			wl.CPUSeconds,
			wl.BestMatch,
		)
	}
	_ = writer.Flush()
}
