package perf

// DefaultWorkloads enumerates the benchmarks run by xorsiftbench. They stress
// different shapes of the search space: a short input with few matrix
// shapes, a long input whose bit count has many factor pairs, and the same
// long input on a single worker to expose scheduling overhead.
var DefaultWorkloads = []WorkloadConfig{
	{
		Name:            "short_input",
		CiphertextBytes: 16,
		KeyBytes:        3,
		Workers:         4,
		Runs:            20,
		Seed:            42,
	},
	{
		Name:            "many_shapes",
		CiphertextBytes: 90,
		KeyBytes:        8,
		Workers:         4,
		Runs:            5,
		Seed:            84,
	},
	{
		Name:            "single_worker",
		CiphertextBytes: 90,
		KeyBytes:        8,
		Workers:         1,
		Runs:            5,
		Seed:            126,
	},
}

// FindWorkload returns the default workload with the given name.
func FindWorkload(name string) (WorkloadConfig, bool) {
	for _, wl := range DefaultWorkloads {
		if wl.Name == name {
			return wl, true
		}
	}
	return WorkloadConfig{}, false
}
