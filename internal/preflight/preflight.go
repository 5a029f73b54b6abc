package preflight

import (
	"errors"
	"fmt"
	"strings"

	"bidsmeta/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to converting datasetRoot with cfg.
// An empty datasetRoot skips the dataset checks.
func RunAll(cfg *config.Config, datasetRoot, outputDir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if datasetRoot != "" {
		results = append(results, CheckDirectoryAccess("Dataset", datasetRoot, Read))
		results = append(results, CheckDatasetDescription(datasetRoot))
	}

	if outputDir == "" {
		outputDir = cfg.Paths.OutputDir
	}
	results = append(results, CheckWritableTarget("Output directory", outputDir))

	// Catalog directory (only when runs are stored)
	if cfg.Conversion.StoreRuns && cfg.Paths.CatalogPath != "" {
		results = append(results, CheckWritableTarget("Catalog directory", parentDir(cfg.Paths.CatalogPath)))
	}

	if cfg.Vocabulary.OverridesPath != "" {
		results = append(results, CheckReadableFile("Vocabulary overrides", cfg.Vocabulary.OverridesPath))
	}

	return results
}

// Failed joins the details of failed results into one error, or returns nil.
func Failed(results []Result) error {
	var failures []string
	for _, r := range results {
		if !r.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return errors.New("preflight failed: " + strings.Join(failures, "; "))
}
