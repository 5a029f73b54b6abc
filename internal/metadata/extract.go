package metadata

import (
	"strconv"
	"strings"
)

// Record is one file's merged sidecar metadata as decoded from JSON.
type Record map[string]any

// Raw is one native metadata value. The zero Raw is absent.
type Raw struct {
	value   any
	present bool
}

// RawOf wraps v; nil is treated as absent.
func RawOf(v any) Raw {
	if v == nil {
		return Raw{}
	}
	return Raw{value: v, present: true}
}

// Present reports whether the field was recorded.
func (r Raw) Present() bool { return r.present }

// Value returns the decoded JSON value.
func (r Raw) Value() any { return r.value }

// List returns the items of a list value.
func (r Raw) List() ([]any, bool) {
	items, ok := r.value.([]any)
	return items, ok
}

// String renders scalar values as text. Lists render as their JSON-ish form.
func (r Raw) String() string {
	switch v := r.value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, RawOf(item).String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ""
	}
}

// Extract looks up prop in rec. A missing native field is absent, not an
// error; an unknown prop fails with ErrConfiguration.
func Extract(rec Record, prop Property) (Raw, error) {
	native, err := NativeName(prop)
	if err != nil {
		return Raw{}, err
	}
	value, ok := rec[native]
	if !ok {
		return Raw{}, nil
	}
	return RawOf(value), nil
}
