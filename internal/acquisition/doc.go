// Package acquisition builds the per-file scanner usage entity and, for
// functional runs, the acquisition summary that points at it.
//
// Usages are never deduplicated: every processed data file yields exactly
// one, even when two files record identical settings.
package acquisition
