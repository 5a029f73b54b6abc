package units

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownUnit reports a unit name or symbol missing from the registry.
var ErrUnknownUnit = errors.New("unknown unit")

// Unit is one registered unit of measurement.
type Unit struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol,omitempty"`
}

// String returns the unit symbol, falling back to the name.
func (u Unit) String() string {
	if u.Symbol != "" {
		return u.Symbol
	}
	return u.Name
}

// IsZero reports whether u is the zero Unit.
func (u Unit) IsZero() bool {
	return u.Name == ""
}

var defaultUnits = []Unit{
	{Name: "second", Symbol: "s"},
	{Name: "millisecond", Symbol: "ms"},
	{Name: "tesla", Symbol: "T"},
	{Name: "degree", Symbol: "deg"},
	{Name: "byte", Symbol: "B"},
	{Name: "hertz", Symbol: "Hz"},
	{Name: "millimeter", Symbol: "mm"},
}

// Registry resolves unit names and symbols. The zero value is empty; use
// Default or New.
type Registry struct {
	byKey map[string]Unit
	units []Unit
}

// New builds a registry from the provided units.
func New(units ...Unit) *Registry {
	r := &Registry{byKey: make(map[string]Unit, len(units)*2)}
	for _, u := range units {
		r.register(u)
	}
	return r
}

var defaultRegistry = New(defaultUnits...)

// Default returns the shared, read-only registry of built-in units.
func Default() *Registry {
	return defaultRegistry
}

func (r *Registry) register(u Unit) {
	r.units = append(r.units, u)
	r.byKey[strings.ToLower(u.Name)] = u
	if u.Symbol != "" {
		// symbols are case-sensitive: "T" is tesla, "t" is not
		r.byKey[u.Symbol] = u
	}
}

// ByName resolves a unit by name (case-insensitive) or symbol.
func (r *Registry) ByName(nameOrSymbol string) (Unit, error) {
	key := strings.TrimSpace(nameOrSymbol)
	if r != nil && key != "" {
		if u, ok := r.byKey[key]; ok {
			return u, nil
		}
		if u, ok := r.byKey[strings.ToLower(key)]; ok {
			return u, nil
		}
	}
	return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, nameOrSymbol)
}

// MustByName is ByName for units known at compile time.
func (r *Registry) MustByName(nameOrSymbol string) Unit {
	u, err := r.ByName(nameOrSymbol)
	if err != nil {
		panic(err)
	}
	return u
}

// All returns the registered units sorted by name.
func (r *Registry) All() []Unit {
	if r == nil {
		return nil
	}
	out := append([]Unit(nil), r.units...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
