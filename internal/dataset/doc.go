// Package dataset reads a BIDS dataset from the local filesystem.
//
// Open walks the dataset tree once, skipping derivative, source and code
// directories as well as hidden ones, and parses every file name into its
// BIDS entities. Per-file metadata follows the inheritance principle: every
// applicable JSON sidecar from the dataset root down to the file's own
// directory is merged, with deeper sidecars overriding shallower ones.
//
// RegisterFiles turns each dataset file into a file entity and records the
// path to identifier table that later lookups through FileRef consult.
package dataset
