package perf

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"runtime/metrics"
	"sort"
	"strings"
	"time"

	"github.com/RowanDark/xorsift/internal/search"
)

// WorkloadConfig describes one seeded exhaustive-search benchmark. Every run
// searches the same random ciphertext and key, so repeated runs and reports
// taken on different commits measure identical work.
type WorkloadConfig struct {
	Name            string `json:"name"`
	CiphertextBytes int    `json:"ciphertext_bytes"`
	KeyBytes        int    `json:"key_bytes"`
	Workers         int    `json:"workers"`
	Runs            int    `json:"runs"`
	Seed            int64  `json:"seed"`
}

// Validate ensures the workload configuration is well formed.
func (cfg WorkloadConfig) Validate() error {
	if strings.TrimSpace(cfg.Name) == "" {
		return errors.New("name is required")
	}
	if cfg.CiphertextBytes <= 0 {
		return fmt.Errorf("ciphertext_bytes must be positive (got %d)", cfg.CiphertextBytes)
	}
	if cfg.KeyBytes <= 0 {
		return fmt.Errorf("key_bytes must be positive (got %d)", cfg.KeyBytes)
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be positive (got %d)", cfg.Workers)
	}
	if cfg.Runs <= 0 {
		return fmt.Errorf("runs must be positive (got %d)", cfg.Runs)
	}
	return nil
}

// Input returns the seeded ciphertext and key searched by the workload.
func (cfg WorkloadConfig) Input() (ciphertext, key []byte) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	ciphertext = make([]byte, cfg.CiphertextBytes)
	key = make([]byte, cfg.KeyBytes)
	rng.Read(ciphertext)
	rng.Read(key)
	return ciphertext, key
}

// WorkloadMetrics captures the aggregated statistics observed for a
// WorkloadConfig execution.
type WorkloadMetrics struct {
	Name         string         `json:"name"`
	Config       WorkloadConfig `json:"config"`
	Duration     time.Duration  `json:"duration"`
	Runs         int            `json:"runs"`
	Combinations int            `json:"combinations"`
	Skipped      int            `json:"skipped"`
	// Throughput is evaluated combinations per second across all runs.
	Throughput float64        `json:"throughput_cps"`
	Latency    LatencyMetrics `json:"latency"`
	Memory     MemoryMetrics  `json:"memory"`
	CPUSeconds float64        `json:"cpu_seconds"`
	BestMatch  float64        `json:"best_match_percentage"`
}

// LatencyMetrics exposes per-run percentile data in milliseconds.
type LatencyMetrics struct {
	P50 float64 `json:"p50_ms"`
	P95 float64 `json:"p95_ms"`
	P99 float64 `json:"p99_ms"`
	Max float64 `json:"max_ms"`
}

// MemoryMetrics captures allocation statistics for the workload.
type MemoryMetrics struct {
	BytesTotal          uint64  `json:"bytes_total"`
	BytesPerCombination float64 `json:"bytes_per_combination"`
	PeakGoroutines      int     `json:"peak_goroutines"`
	BaselineGoroutines  int     `json:"baseline_goroutines"`
}

// RunWorkload executes the configured workload and returns the aggregated
// metrics. The run stops early when ctx is cancelled.
func RunWorkload(ctx context.Context, cfg WorkloadConfig, opts search.Options) (WorkloadMetrics, error) {
	if err := cfg.Validate(); err != nil {
		return WorkloadMetrics{}, err
	}
	ciphertext, key := cfg.Input()
	opts.Workers = cfg.Workers

	runtime.GC()
	before := runtime.MemStats{}
	runtime.ReadMemStats(&before)
	cpuStart := readCPUSeconds()
	baselineG := runtime.NumGoroutine()
	peakG := baselineG

	out := WorkloadMetrics{Name: cfg.Name, Config: cfg}
	latencies := make([]time.Duration, 0, cfg.Runs)
	var maxLatency time.Duration

	start := time.Now()
	for i := 0; i < cfg.Runs; i++ {
		runStart := time.Now()
		report, err := search.RunExhaustive(ctx, ciphertext, key, opts)
		if err != nil {
			return WorkloadMetrics{}, fmt.Errorf("workload %s run %d: %w", cfg.Name, i+1, err)
		}
		latency := time.Since(runStart)
		latencies = append(latencies, latency)
		if latency > maxLatency {
			maxLatency = latency
		}
		if g := runtime.NumGoroutine(); g > peakG {
			peakG = g
		}
		out.Runs++
		out.Combinations += report.Total - report.Skipped
		out.Skipped += report.Skipped
		if len(report.Results) > 0 {
			out.BestMatch = report.Results[0].MatchPercentage
		}
	}
	duration := time.Since(start)

	runtime.GC()
	after := runtime.MemStats{}
	runtime.ReadMemStats(&after)
	cpuEnd := readCPUSeconds()

	out.Duration = duration
	if duration > 0 {
		out.Throughput = float64(out.Combinations) / duration.Seconds()
	}
	out.Latency = summariseLatencies(latencies, maxLatency)
	allocBytes := after.TotalAlloc - before.TotalAlloc
	out.Memory = MemoryMetrics{
		BytesTotal:          allocBytes,
		BytesPerCombination: safeDivideFloat(float64(allocBytes), float64(out.Combinations)),
		PeakGoroutines:      peakG,
		BaselineGoroutines:  baselineG,
	}
	out.CPUSeconds = safeDifference(cpuEnd, cpuStart)
	return out, nil
}

// AverageMetrics folds repeated executions of one workload into a single
// sample: rates and percentiles are averaged, maxima are kept.
func AverageMetrics(samples []WorkloadMetrics) WorkloadMetrics {
	if len(samples) == 0 {
		return WorkloadMetrics{}
	}
	out := samples[0]
	count := float64(len(samples))

	var (
		durationSum   time.Duration
		throughputSum float64
		p50Sum        float64
		p95Sum        float64
		p99Sum        float64
		bytesTotalSum float64
		bytesPerSum   float64
		cpuSum        float64
	)
	maxLatency := samples[0].Latency.Max
	peakG := samples[0].Memory.PeakGoroutines
	for _, s := range samples {
		durationSum += s.Duration
		throughputSum += s.Throughput
		p50Sum += s.Latency.P50
		p95Sum += s.Latency.P95
		p99Sum += s.Latency.P99
		if s.Latency.Max > maxLatency {
			maxLatency = s.Latency.Max
		}
		bytesTotalSum += float64(s.Memory.BytesTotal)
		bytesPerSum += s.Memory.BytesPerCombination
		if s.Memory.PeakGoroutines > peakG {
			peakG = s.Memory.PeakGoroutines
		}
		cpuSum += s.CPUSeconds
	}

	out.Duration = time.Duration(float64(durationSum) / count)
	out.Throughput = throughputSum / count
	out.Latency = LatencyMetrics{
		P50: p50Sum / count,
		P95: p95Sum / count,
		P99: p99Sum / count,
		Max: maxLatency,
	}
	out.Memory.BytesTotal = uint64(math.Round(bytesTotalSum / count))
	out.Memory.BytesPerCombination = bytesPerSum / count
	out.Memory.PeakGoroutines = peakG
	out.CPUSeconds = cpuSum / count
	return out
}

func summariseLatencies(latencies []time.Duration, max time.Duration) LatencyMetrics {
	if len(latencies) == 0 {
		return LatencyMetrics{}
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	return LatencyMetrics{
		P50: durationToMillis(percentile(latencies, 0.50)),
		P95: durationToMillis(percentile(latencies, 0.95)),
		P99: durationToMillis(percentile(latencies, 0.99)),
		Max: durationToMillis(max),
	}
}

func percentile(values []time.Duration, p float64) time.Duration {
	if len(values) == 0 {
		return 0
	}
	if p <= 0 {
		return values[0]
	}
	if p >= 1 {
		return values[len(values)-1]
	}
	rank := p * float64(len(values)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return values[lower]
	}
	weight := rank - float64(lower)
	low := float64(values[lower])
	high := float64(values[upper])
	return time.Duration(low + (high-low)*weight)
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}

func safeDivideFloat(num, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return num / denom
}

func safeDifference(end, start float64) float64 {
	if end <= 0 {
		return 0
	}
	if start <= 0 {
		return end
	}
	if end < start {
		return 0
	}
	return end - start
}

func readCPUSeconds() float64 {
	names := []string{"/cpu/classes/total:cpu-seconds"}
	samples := make([]metrics.Sample, len(names))
	for i, name := range names {
		samples[i].Name = name
	}
	metrics.Read(samples)
	for _, sample := range samples {
		if sample.Value.Kind() != metrics.KindFloat64 {
			continue
		}
		if v := sample.Value.Float64(); v > 0 {
			return v
		}
	}
	return 0
}
