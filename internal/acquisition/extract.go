package acquisition

import (
	"bidsmeta/internal/metadata"
	"bidsmeta/internal/openminds"
	"bidsmeta/internal/terms"
	"bidsmeta/internal/vocab"
)

// extractor reads typed fields from one record and keeps the first error,
// so a builder can fill every field before checking once.
type extractor struct {
	rec metadata.Record
	n   *metadata.Normalizer
	err error
}

func (x *extractor) raw(prop metadata.Property) (metadata.Raw, bool) {
	if x.err != nil {
		return metadata.Raw{}, false
	}
	raw, err := metadata.Extract(x.rec, prop)
	if err != nil {
		x.err = err
		return metadata.Raw{}, false
	}
	return raw, raw.Present()
}

func (x *extractor) quantity(prop metadata.Property, unit string) *openminds.Quantity {
	raw, ok := x.raw(prop)
	if !ok {
		return nil
	}
	q, err := x.n.Quantity(raw, prop, unit)
	if err != nil {
		x.err = err
		return nil
	}
	return q
}

func (x *extractor) series(prop metadata.Property, unit string) []openminds.Quantity {
	raw, ok := x.raw(prop)
	if !ok {
		return nil
	}
	qs, err := x.n.QuantitySeries(raw, prop, unit)
	if err != nil {
		x.err = err
		return nil
	}
	return qs
}

func (x *extractor) boolean(prop metadata.Property) *bool {
	raw, ok := x.raw(prop)
	if !ok {
		return nil
	}
	return x.n.Boolean(raw, prop)
}

func (x *extractor) integer(prop metadata.Property) (int, bool) {
	raw, ok := x.raw(prop)
	if !ok {
		return 0, false
	}
	v, present, err := x.n.Integer(raw, prop)
	if err != nil {
		x.err = err
		return 0, false
	}
	return v, present
}

func (x *extractor) text(prop metadata.Property) string {
	raw, ok := x.raw(prop)
	if !ok {
		return ""
	}
	return x.n.Text(raw)
}

func (x *extractor) term(m *vocab.Mapper, prop metadata.Property, table vocab.TableID) *terms.Term {
	raw, ok := x.raw(prop)
	if !ok {
		return nil
	}
	t, err := m.Term(raw, table, prop)
	if err != nil {
		x.err = err
		return nil
	}
	return t
}
