package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/xorsift/internal/perf"
)

func TestSelectWorkloads(t *testing.T) {
	all, err := selectWorkloads("")
	require.NoError(t, err)
	assert.Len(t, all, len(perf.DefaultWorkloads))

	picked, err := selectWorkloads(" short_input , ")
	require.NoError(t, err)
	require.Len(t, picked, 1)
	assert.Equal(t, "short_input", picked[0].Name)

	_, err = selectWorkloads("missing")
	assert.ErrorContains(t, err, `unknown workload "missing"`)

	_, err = selectWorkloads(" , ")
	assert.Error(t, err)
}

func TestRunAllAndSummary(t *testing.T) {
	workloads := []perf.WorkloadConfig{{Name: "tiny", CiphertextBytes: 2, KeyBytes: 1, Workers: 1, Runs: 1, Seed: 3}}
	results, err := runAll(context.Background(), workloads, 2)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "tiny", results[0].Name)
	assert.Positive(t, results[0].Combinations)

	var buf bytes.Buffer
	printSummary(&buf, perf.Report{Workloads: results})
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Exhaustive search metrics:\n"))
	assert.Contains(t, out, "Combinations/s")
	assert.Contains(t, out, "tiny")
}
