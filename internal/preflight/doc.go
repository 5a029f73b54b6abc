// Package preflight provides readiness checks for the filesystem paths a
// conversion depends on.
//
// The convert command runs RunAll before touching the dataset so that an
// unreadable dataset or an unwritable output directory fails fast with a
// readable message instead of midway through a run. The config validate
// command uses the individual checks to report path health.
package preflight
