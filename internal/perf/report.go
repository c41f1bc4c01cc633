package perf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Report is one xorsiftbench execution.
type Report struct {
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	GitRef    string            `json:"git_ref"`
	Workloads []WorkloadMetrics `json:"workloads"`
}

// gate is a metric checked between a baseline and a current run. Values are
// normalised by the work done so runs with different Runs counts compare.
type gate struct {
	metric string
	units  string
	higher bool
	value  func(WorkloadMetrics) float64
}

var gates = []gate{
	{"combinations_per_second", "comb/s", true, func(w WorkloadMetrics) float64 { return w.Throughput }},
	{"run_p95_ms", "ms", false, func(w WorkloadMetrics) float64 { return w.Latency.P95 }},
	{"alloc_bytes_per_combination", "B", false, func(w WorkloadMetrics) float64 { return w.Memory.BytesPerCombination }},
	{"cpu_us_per_combination", "us", false, func(w WorkloadMetrics) float64 {
		if w.Combinations == 0 {
			return 0
		}
		return w.CPUSeconds * 1e6 / float64(w.Combinations)
	}},
}

// Check is the outcome of one gate for one workload.
type Check struct {
	Workload       string  `json:"workload"`
	Metric         string  `json:"metric"`
	Units          string  `json:"units"`
	Baseline       float64 `json:"baseline"`
	Current        float64 `json:"current"`
	ChangePercent  float64 `json:"change_percent"`
	HigherIsBetter bool    `json:"higher_is_better"`
	Regressed      bool    `json:"regressed"`
}

// Comparison holds every check of a baseline comparison. Drift lists
// workloads whose seeded search produced a different best match than the
// baseline: the engine's output changed, which no speedup excuses.
// Incomparable lists workloads whose configuration differs between the runs.
type Comparison struct {
	Threshold    float64  `json:"threshold"`
	Checks       []Check  `json:"checks"`
	Drift        []string `json:"drift,omitempty"`
	Incomparable []string `json:"incomparable,omitempty"`
}

// Regressions returns the checks that breached the threshold.
func (c Comparison) Regressions() []Check {
	var out []Check
	for _, ch := range c.Checks {
		if ch.Regressed {
			out = append(out, ch)
		}
	}
	return out
}

// Failed reports whether the run should fail the build.
func (c Comparison) Failed() bool {
	return len(c.Regressions()) > 0 || len(c.Drift) > 0
}

// Compare checks current against baseline workload by workload. Workloads
// present in only one report are ignored.
func Compare(baseline, current Report, threshold float64) Comparison {
	base := make(map[string]WorkloadMetrics, len(baseline.Workloads))
	for _, w := range baseline.Workloads {
		base[w.Name] = w
	}
	cmp := Comparison{Threshold: threshold}
	for _, curr := range current.Workloads {
		prev, ok := base[curr.Name]
		if !ok {
			continue
		}
		if prev.Config != curr.Config {
			cmp.Incomparable = append(cmp.Incomparable, curr.Name)
			continue
		}
		if prev.BestMatch != curr.BestMatch {
			cmp.Drift = append(cmp.Drift, curr.Name)
		}
		for _, g := range gates {
			cmp.Checks = append(cmp.Checks, g.check(curr.Name, g.value(prev), g.value(curr), threshold))
		}
	}
	sort.SliceStable(cmp.Checks, func(i, j int) bool { return cmp.Checks[i].Workload < cmp.Checks[j].Workload })
	sort.Strings(cmp.Drift)
	sort.Strings(cmp.Incomparable)
	return cmp
}

func (g gate) check(workload string, base, curr, threshold float64) Check {
	c := Check{
		Workload:       workload,
		Metric:         g.metric,
		Units:          g.units,
		Baseline:       base,
		Current:        curr,
		HigherIsBetter: g.higher,
	}
	if base == 0 {
		// nothing measured in the baseline
		return c
	}
	c.ChangePercent = (curr - base) / base * 100
	if g.higher {
		c.Regressed = curr < base*(1-threshold)
	} else {
		c.Regressed = curr > base*(1+threshold)
	}
	return c
}

// String renders the comparison for CI logs.
func (c Comparison) String() string {
	if len(c.Checks) == 0 && len(c.Incomparable) == 0 {
		return "No workloads in common with the baseline.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Baseline comparison, threshold %.0f%%\n", c.Threshold*100)
	last := ""
	for _, ch := range c.Checks {
		if ch.Workload != last {
			last = ch.Workload
			fmt.Fprintf(&b, "%s\n", last)
		}
		mark := "ok"
		if ch.Regressed {
			mark = "REGRESSED"
		}
		fmt.Fprintf(&b, "  %-28s %12.2f -> %12.2f %-6s %+7.1f%%  %s\n",
			ch.Metric, ch.Baseline, ch.Current, ch.Units, ch.ChangePercent, mark)
	}
	for _, name := range c.Drift {
		fmt.Fprintf(&b, "%s: best match differs from the baseline, search output changed\n", name)
	}
	for _, name := range c.Incomparable {
		fmt.Fprintf(&b, "%s: workload configuration changed, not compared\n", name)
	}
	return b.String()
}

// LoadReport reads a report written by SaveReport.
func LoadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, err
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return Report{}, fmt.Errorf("parse report %s: %w", path, err)
	}
	return rep, nil
}

// SaveReport writes rep as indented JSON, creating parent directories.
func SaveReport(path string, rep Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
