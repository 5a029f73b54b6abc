package metadata

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"bidsmeta/internal/openminds"
	"bidsmeta/internal/units"
)

// ErrMalformedValue reports a present value that cannot be parsed into the
// type its property requires.
var ErrMalformedValue = errors.New("malformed value")

// Warner receives non-fatal data-quality findings.
type Warner interface {
	Warn(property, value, reason string)
}

// WarnerFunc adapts a function to Warner.
type WarnerFunc func(property, value, reason string)

// Warn calls f.
func (f WarnerFunc) Warn(property, value, reason string) { f(property, value, reason) }

type discardWarner struct{}

func (discardWarner) Warn(string, string, string) {}

// Normalizer converts raw values into typed values.
type Normalizer struct {
	units  *units.Registry
	warner Warner
}

// NewNormalizer builds a normalizer. A nil registry uses units.Default and a
// nil warner discards findings.
func NewNormalizer(reg *units.Registry, warner Warner) *Normalizer {
	if reg == nil {
		reg = units.Default()
	}
	if warner == nil {
		warner = discardWarner{}
	}
	return &Normalizer{units: reg, warner: warner}
}

// Quantity parses raw as a number in unit. Absent raw yields nil.
func (n *Normalizer) Quantity(raw Raw, prop Property, unit string) (*openminds.Quantity, error) {
	if !raw.Present() {
		return nil, nil
	}
	value, err := parseNumber(raw.Value())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", prop, err)
	}
	u, err := n.units.ByName(unit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", prop, err)
	}
	return &openminds.Quantity{Value: value, Unit: u}, nil
}

// QuantitySeries parses a list of numbers in unit. A scalar yields a
// one-element series; absent raw yields nil.
func (n *Normalizer) QuantitySeries(raw Raw, prop Property, unit string) ([]openminds.Quantity, error) {
	if !raw.Present() {
		return nil, nil
	}
	items, ok := raw.List()
	if !ok {
		items = []any{raw.Value()}
	}
	out := make([]openminds.Quantity, 0, len(items))
	for i, item := range items {
		q, err := n.Quantity(RawOf(item), prop, unit)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if q != nil {
			out = append(out, *q)
		}
	}
	return out, nil
}

// Boolean accepts JSON booleans and the literals "true"/"false" in any case
// with surrounding whitespace. Anything else is reported to the warner and
// resolves to nil.
func (n *Normalizer) Boolean(raw Raw, prop Property) *bool {
	if !raw.Present() {
		return nil
	}
	if b, ok := raw.Value().(bool); ok {
		return &b
	}
	text, _ := raw.Value().(string)
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true":
		return openminds.BoolPtr(true)
	case "false":
		return openminds.BoolPtr(false)
	}
	n.warner.Warn(string(prop), raw.String(), "accepted values are 'true' or 'false'")
	return nil
}

// Integer parses a mandatory whole number. ok is false when raw is absent.
func (n *Normalizer) Integer(raw Raw, prop Property) (value int, ok bool, err error) {
	if !raw.Present() {
		return 0, false, nil
	}
	f, err := parseNumber(raw.Value())
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", prop, err)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false, fmt.Errorf("%s: %w: %v is not an integer", prop, ErrMalformedValue, raw.String())
	}
	return int(f), true, nil
}

// Text returns free text trimmed and NFC-normalized. Non-string scalars are
// rendered in their canonical form; absent raw yields "".
func (n *Normalizer) Text(raw Raw) string {
	if !raw.Present() {
		return ""
	}
	return norm.NFC.String(strings.TrimSpace(raw.String()))
}

func parseNumber(v any) (float64, error) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrMalformedValue, val)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: %v (%T) is not a number", ErrMalformedValue, v, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v is not finite", ErrMalformedValue, v)
	}
	return f, nil
}
