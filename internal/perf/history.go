package perf

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// maxHistoryRuns bounds the number of runs kept in a history file.
const maxHistoryRuns = 100

// HistoryEntry is one line of the history file: the headline numbers of
// every workload in a single run.
type HistoryEntry struct {
	Timestamp time.Time               `json:"timestamp"`
	GitRef    string                  `json:"git_ref,omitempty"`
	Workloads map[string]HistoryPoint `json:"workloads"`
}

// HistoryPoint holds the numbers tracked over time for a workload.
type HistoryPoint struct {
	Throughput float64 `json:"combinations_per_second"`
	P95        float64 `json:"run_p95_ms"`
	BestMatch  float64 `json:"best_match"`
}

// AppendHistory adds report to the history file at path, drops the oldest
// runs beyond maxHistoryRuns and returns the resulting history, oldest first.
func AppendHistory(path string, report Report) ([]HistoryEntry, error) {
	history, err := LoadHistory(path)
	if err != nil {
		return nil, err
	}
	entry := HistoryEntry{
		Timestamp: report.Timestamp.UTC(),
		GitRef:    report.GitRef,
		Workloads: make(map[string]HistoryPoint, len(report.Workloads)),
	}
	for _, w := range report.Workloads {
		entry.Workloads[w.Name] = HistoryPoint{Throughput: w.Throughput, P95: w.Latency.P95, BestMatch: w.BestMatch}
	}
	history = append(history, entry)
	sort.SliceStable(history, func(i, j int) bool { return history[i].Timestamp.Before(history[j].Timestamp) })
	if len(history) > maxHistoryRuns {
		history = history[len(history)-maxHistoryRuns:]
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, e := range history {
		if err := enc.Encode(e); err != nil {
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return history, nil
}

// LoadHistory reads a history file. A missing file is an empty history.
func LoadHistory(path string) ([]HistoryEntry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var history []HistoryEntry
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var e HistoryEntry
		if err := json.Unmarshal([]byte(text), &e); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		history = append(history, e)
	}
	return history, scanner.Err()
}

// RenderHistoryMarkdown prints one table per workload with the most recent
// runs first. The change column compares throughput with the preceding run.
func RenderHistoryMarkdown(history []HistoryEntry, rows int) string {
	var b strings.Builder
	b.WriteString("# xorsift search benchmarks\n\n")
	if len(history) == 0 {
		b.WriteString("No runs recorded.\n")
		return b.String()
	}

	names := map[string]struct{}{}
	for _, e := range history {
		for name := range e.Workloads {
			names[name] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	for _, name := range sorted {
		fmt.Fprintf(&b, "## %s\n\n", name)
		b.WriteString("| Run | Ref | Combinations/s | Change | P95 (ms) | Best match |\n")
		b.WriteString("|-----|-----|---------------:|-------:|---------:|-----------:|\n")
		written := 0
		for i := len(history) - 1; i >= 0 && (rows <= 0 || written < rows); i-- {
			pt, ok := history[i].Workloads[name]
			if !ok {
				continue
			}
			change := "-"
			if prev, ok := previousPoint(history[:i], name); ok && prev.Throughput > 0 {
				change = fmt.Sprintf("%+.1f%%", (pt.Throughput-prev.Throughput)/prev.Throughput*100)
			}
			ref := history[i].GitRef
			if ref == "" {
				ref = "-"
			}
			fmt.Fprintf(&b, "| %s | %s | %.0f | %s | %.2f | %.2f%% |\n",
				history[i].Timestamp.Format("2006-01-02 15:04"), ref, pt.Throughput, change, pt.P95, pt.BestMatch)
			written++
		}
		b.WriteString("\n")
	}
	return b.String()
}

func previousPoint(history []HistoryEntry, name string) (HistoryPoint, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if pt, ok := history[i].Workloads[name]; ok {
			return pt, true
		}
	}
	return HistoryPoint{}, false
}
