// Package units holds the fixed registry of measurement units that typed
// quantities may carry.
//
// Units are looked up by name ("second") or symbol ("s"). Requesting a unit
// the registry does not know is a static contract violation and fails with
// ErrUnknownUnit rather than producing an untyped quantity.
package units
