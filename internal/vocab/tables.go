package vocab

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"bidsmeta/internal/terms"
)

// TableID names one mapping table.
type TableID string

const (
	// AcquisitionType maps MRAcquisitionType values.
	AcquisitionType TableID = "acquisition_type"
	// PulseSequenceType maps PulseSequenceType values.
	PulseSequenceType TableID = "pulse_sequence_type"
)

// Table maps dataset values to canonical term names within one term set.
type Table struct {
	ID      TableID
	Set     terms.Set
	entries map[string]entry
}

type entry struct {
	source string
	term   string
}

// Entry is one dataset value and the term name it maps to.
type Entry struct {
	Source string
	Term   string
}

func newTable(id TableID, set terms.Set, mapping map[string]string) *Table {
	t := &Table{ID: id, Set: set, entries: make(map[string]entry, len(mapping))}
	for source, term := range mapping {
		t.put(source, term)
	}
	return t
}

func (t *Table) put(source, term string) {
	t.entries[tableKey(source)] = entry{source: strings.TrimSpace(source), term: strings.TrimSpace(term)}
}

func (t *Table) lookup(value string) (string, bool) {
	e, ok := t.entries[tableKey(value)]
	return e.term, ok
}

// Entries lists the table sorted by dataset value.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, Entry{Source: e.source, Term: e.term})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

func (t *Table) clone() *Table {
	out := &Table{ID: t.ID, Set: t.Set, entries: make(map[string]entry, len(t.entries))}
	for k, v := range t.entries {
		out.entries[k] = v
	}
	return out
}

func tableKey(value string) string {
	return cases.Fold().String(strings.TrimSpace(value))
}

var builtinTables = []*Table{
	newTable(AcquisitionType, terms.SetMRAcquisitionType, map[string]string{
		"2D": "2D acquisition",
		"3D": "3D acquisition",
	}),
	newTable(PulseSequenceType, terms.SetMRIPulseSequence, map[string]string{
		"EPI":                "echo planar pulse sequence",
		"Echo Planar":        "echo planar pulse sequence",
		"GRE":                "gradient echo pulse sequence",
		"Gradient Echo":      "gradient echo pulse sequence",
		"GE":                 "gradient echo pulse sequence",
		"Gradient Echo EPI":  "gradient echo echo planar pulse sequence",
		"GE-EPI":             "gradient echo echo planar pulse sequence",
		"GRE-EPI":            "gradient echo echo planar pulse sequence",
		"SE":                 "spin echo pulse sequence",
		"Spin Echo":          "spin echo pulse sequence",
		"Spin Echo EPI":      "spin echo echo planar pulse sequence",
		"SE-EPI":             "spin echo echo planar pulse sequence",
		"IR":                 "inversion recovery pulse sequence",
		"Inversion Recovery": "inversion recovery pulse sequence",
		"MPRAGE":             "MP-RAGE pulse sequence",
		"MP-RAGE":            "MP-RAGE pulse sequence",
		"FLASH":              "fast low angle shot pulse sequence",
		"SSFP":               "steady-state free precession pulse sequence",
		"DWI":                "diffusion weighted pulse sequence",
		"Diffusion Weighted": "diffusion weighted pulse sequence",
	}),
}

// DefaultTables returns fresh copies of the built-in tables keyed by ID.
func DefaultTables() map[TableID]*Table {
	out := make(map[TableID]*Table, len(builtinTables))
	for _, t := range builtinTables {
		out[t.ID] = t.clone()
	}
	return out
}
