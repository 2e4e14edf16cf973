package preflight

import (
	"eerecord/internal/config"
	"eerecord/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that need no running audio session: required
// binaries and access to the output directory's parent.
func RunAll(cfg *config.Config, root string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range deps.Missing(CheckSystemDeps(cfg)) {
		results = append(results, Result{Name: status.Name, Detail: status.Detail})
	}
	results = append(results, CheckDirectoryAccess("Working directory", root))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
