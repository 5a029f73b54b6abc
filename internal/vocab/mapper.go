package vocab

import (
	"fmt"
	"sort"

	"bidsmeta/internal/metadata"
	"bidsmeta/internal/terms"
)

// Mapper resolves dataset values to controlled terms.
type Mapper struct {
	registry *terms.Registry
	tables   map[TableID]*Table
	warner   metadata.Warner
}

// NewMapper builds a mapper over the built-in tables extended by overrides.
// Overrides naming an unknown table or an unregistered term are rejected.
func NewMapper(registry *terms.Registry, warner metadata.Warner, overrides Overrides) (*Mapper, error) {
	if registry == nil {
		registry = terms.Default()
	}
	if warner == nil {
		warner = metadata.WarnerFunc(func(string, string, string) {})
	}
	tables := DefaultTables()
	for id, mapping := range overrides {
		table, ok := tables[id]
		if !ok {
			return nil, fmt.Errorf("vocabulary overrides: unknown table %q", id)
		}
		for source, term := range mapping {
			if _, err := registry.ByName(table.Set, term); err != nil {
				return nil, fmt.Errorf("vocabulary overrides: %s %q: %w", id, source, err)
			}
			table.put(source, term)
		}
	}
	for id, table := range tables {
		for _, e := range table.Entries() {
			if _, err := registry.ByName(table.Set, e.Term); err != nil {
				return nil, fmt.Errorf("vocabulary table %s: %w", id, err)
			}
		}
	}
	return &Mapper{registry: registry, tables: tables, warner: warner}, nil
}

// Term resolves raw through table id. Absent raw yields nil. A value found in
// neither the table nor the registry is reported once to the warner and
// yields nil. A mapped name missing from the registry fails with
// terms.ErrUnknownTerm.
func (m *Mapper) Term(raw metadata.Raw, id TableID, prop metadata.Property) (*terms.Term, error) {
	if !raw.Present() {
		return nil, nil
	}
	table, ok := m.tables[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w: unknown vocabulary table %q", prop, metadata.ErrConfiguration, id)
	}
	value := raw.String()
	if mapped, ok := table.lookup(value); ok {
		term, err := m.registry.ByName(table.Set, mapped)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", prop, err)
		}
		return &term, nil
	}
	if term, err := m.registry.ByName(table.Set, value); err == nil {
		return &term, nil
	}
	m.warner.Warn(string(prop), value, fmt.Sprintf("not a recognized %s value", table.Set))
	return nil, nil
}

// Table returns the table with id.
func (m *Mapper) Table(id TableID) (*Table, bool) {
	t, ok := m.tables[id]
	return t, ok
}

// Tables lists the mapper's tables sorted by ID.
func (m *Mapper) Tables() []*Table {
	out := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
