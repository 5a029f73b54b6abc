// Package terms is the controlled-term registry: the fixed vocabularies that
// typed metadata fields draw their values from.
//
// Terms are grouped into sets (MR acquisition types, pulse sequences,
// content types). Lookups are case-insensitive within a set; a label that is
// not registered fails with ErrUnknownTerm.
package terms
