// Package metadata translates raw per-file sidecar metadata into typed
// values.
//
// Extract maps a canonical property to the dataset's native field name
// through a fixed bidirectional table and returns the raw value with
// explicit presence. The Normalizer turns raw values into quantities,
// booleans, integers and free text, and reconstructs echo times with their
// recorded shape.
//
// Two failure tiers apply. Data-quality findings (an unrecognized boolean
// literal) are reported to a Warner and the field resolves to absent.
// Structural failures (an unknown property, an unparseable number, an
// unregistered unit) are returned as errors wrapping ErrConfiguration,
// ErrMalformedValue or units.ErrUnknownUnit.
package metadata
