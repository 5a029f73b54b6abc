// Package reconcile maps device descriptions found in per-file metadata onto
// one MRI scanner entity per physical device.
//
// A Registry is scoped to a single conversion run and owned by the caller
// that drives it; nothing is shared between runs. Each record yields a
// candidate scanner which is compared against the registered ones with an
// ordered table of identity rules: digital identifier, then serial number,
// then name. The first rule for which both sides hold a value decides the
// comparison. A candidate that matches nothing is registered and emitted to
// the sink exactly once, together with any organizations it introduces.
package reconcile
