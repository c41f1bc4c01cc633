package perf

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func metricsFor(name string, throughput float64) WorkloadMetrics {
	return WorkloadMetrics{
		Name:         name,
		Config:       WorkloadConfig{Name: name, CiphertextBytes: 16, KeyBytes: 3, Workers: 4, Runs: 2, Seed: 1},
		Combinations: 1000,
		Throughput:   throughput,
		Latency:      LatencyMetrics{P95: 10},
		Memory:       MemoryMetrics{BytesPerCombination: 256},
		CPUSeconds:   0.5,
		BestMatch:    25,
	}
}

func TestCompareFlagsThroughputDrop(t *testing.T) {
	t.Parallel()
	base := Report{Workloads: []WorkloadMetrics{metricsFor("short_input", 1000), metricsFor("retired", 10)}}
	curr := Report{Workloads: []WorkloadMetrics{metricsFor("short_input", 800), metricsFor("brand_new", 5)}}

	cmp := Compare(base, curr, 0.10)
	if len(cmp.Checks) != len(gates) {
		t.Fatalf("expected %d checks for the shared workload, got %d", len(gates), len(cmp.Checks))
	}
	regs := cmp.Regressions()
	if len(regs) != 1 || regs[0].Metric != "combinations_per_second" {
		t.Fatalf("expected only the throughput gate to fail: %+v", regs)
	}
	if regs[0].ChangePercent > -19.99 || regs[0].ChangePercent < -20.01 {
		t.Fatalf("unexpected change %.2f", regs[0].ChangePercent)
	}
	if !cmp.Failed() {
		t.Fatal("a regression must fail the comparison")
	}
	if out := cmp.String(); !strings.Contains(out, "short_input\n") || !strings.Contains(out, "REGRESSED") {
		t.Fatalf("unexpected text:\n%s", out)
	}
}

func TestCompareLowerIsBetterGates(t *testing.T) {
	t.Parallel()
	base := Report{Workloads: []WorkloadMetrics{metricsFor("w", 1000)}}
	slower := metricsFor("w", 1000)
	slower.Latency.P95 = 12
	slower.CPUSeconds = 0.4

	cmp := Compare(base, Report{Workloads: []WorkloadMetrics{slower}}, 0.10)
	var p95, cpu Check
	for _, c := range cmp.Checks {
		switch c.Metric {
		case "run_p95_ms":
			p95 = c
		case "cpu_us_per_combination":
			cpu = c
		}
	}
	if !p95.Regressed {
		t.Fatalf("p95 up 20%% should regress: %+v", p95)
	}
	if cpu.Regressed || cpu.Baseline != 500 || cpu.Current != 400 {
		t.Fatalf("cpu per combination improved: %+v", cpu)
	}
}

func TestCompareDetectsDriftAndConfigChanges(t *testing.T) {
	t.Parallel()
	base := Report{Workloads: []WorkloadMetrics{metricsFor("a", 100), metricsFor("b", 100)}}
	drifted := metricsFor("a", 100)
	drifted.BestMatch = 30
	resized := metricsFor("b", 100)
	resized.Config.CiphertextBytes = 32

	cmp := Compare(base, Report{Workloads: []WorkloadMetrics{drifted, resized}}, 0.10)
	if len(cmp.Drift) != 1 || cmp.Drift[0] != "a" {
		t.Fatalf("expected drift on a: %+v", cmp.Drift)
	}
	if len(cmp.Incomparable) != 1 || cmp.Incomparable[0] != "b" {
		t.Fatalf("expected b to be incomparable: %+v", cmp.Incomparable)
	}
	if !cmp.Failed() {
		t.Fatal("drift must fail the comparison")
	}
	if len(cmp.Regressions()) != 0 {
		t.Fatalf("no gate regressed: %+v", cmp.Regressions())
	}
}

func TestCompareNoOverlap(t *testing.T) {
	t.Parallel()
	cmp := Compare(Report{}, Report{Workloads: []WorkloadMetrics{metricsFor("x", 1)}}, 0.1)
	if cmp.Failed() {
		t.Fatal("no shared workloads cannot fail")
	}
	if !strings.HasPrefix(cmp.String(), "No workloads in common") {
		t.Fatalf("unexpected text: %s", cmp.String())
	}
}

func TestSaveAndLoadReport(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "report.json")
	rep := Report{
		Version:   "test",
		Timestamp: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Workloads: []WorkloadMetrics{metricsFor("short_input", 42)},
	}
	if err := SaveReport(path, rep); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadReport(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Version != "test" || len(loaded.Workloads) != 1 || loaded.Workloads[0].Config != rep.Workloads[0].Config {
		t.Fatalf("unexpected report: %+v", loaded)
	}
}
