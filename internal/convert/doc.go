// Package convert drives one conversion run: it walks the imaging files a
// dataset accessor exposes, reconciles the scanner behind each file and
// builds usage and functional acquisition entities for functional runs.
//
// A Converter owns nothing between runs. Each Run creates a fresh scanner
// registry, so devices are deduplicated within a run and never across runs.
// Data-quality findings are logged and counted; structural failures skip the
// offending file unless the converter is strict.
package convert
