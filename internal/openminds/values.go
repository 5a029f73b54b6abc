package openminds

import (
	"encoding/json"
	"strconv"

	"bidsmeta/internal/terms"
	"bidsmeta/internal/units"
)

// Quantity is a numeric value paired with a registered unit.
type Quantity struct {
	Value float64    `json:"value"`
	Unit  units.Unit `json:"unit"`
}

// String renders the quantity as "<value> <symbol>".
func (q Quantity) String() string {
	return strconv.FormatFloat(q.Value, 'g', -1, 64) + " " + q.Unit.String()
}

// ControlledTerm is a value drawn from a controlled vocabulary.
type ControlledTerm = terms.Term

// EchoTimes keeps the shape of the recorded echo time: either one bare
// quantity or an ordered series. Exactly one of Single and Series is set.
type EchoTimes struct {
	Single *Quantity
	Series []Quantity
}

// SingleEchoTime wraps one echo time.
func SingleEchoTime(q Quantity) *EchoTimes {
	return &EchoTimes{Single: &q}
}

// EchoTimeSeries wraps an ordered list of echo times.
func EchoTimeSeries(qs []Quantity) *EchoTimes {
	return &EchoTimes{Series: append([]Quantity(nil), qs...)}
}

// IsSeries reports whether several echo times were recorded.
func (e *EchoTimes) IsSeries() bool {
	return e != nil && e.Single == nil
}

// Values returns the echo times as a slice regardless of shape.
func (e *EchoTimes) Values() []Quantity {
	if e == nil {
		return nil
	}
	if e.Single != nil {
		return []Quantity{*e.Single}
	}
	return append([]Quantity(nil), e.Series...)
}

// MarshalJSON emits a bare object for a single echo time and an array for a
// series.
func (e EchoTimes) MarshalJSON() ([]byte, error) {
	if e.Single != nil {
		return json.Marshal(e.Single)
	}
	return json.Marshal(e.Series)
}

// DigitalIdentifier is a persistent identifier such as an RRID.
type DigitalIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Hash is a file content digest.
type Hash struct {
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
}

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool {
	return &v
}
