package terms

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// ErrUnknownTerm reports a label missing from a term set.
var ErrUnknownTerm = errors.New("unknown controlled term")

// Set names one controlled vocabulary.
type Set string

const (
	// SetMRAcquisitionType covers 2D/3D MR acquisition types.
	SetMRAcquisitionType Set = "MRAcquisitionType"
	// SetMRIPulseSequence covers MRI pulse sequence families.
	SetMRIPulseSequence Set = "MRIPulseSequence"
	// SetContentType covers file content (media) types.
	SetContentType Set = "ContentType"
)

// Term is one registered controlled term.
type Term struct {
	Set  Set    `json:"set"`
	Name string `json:"name"`
}

// Registry resolves term labels per set.
type Registry struct {
	sets map[Set]map[string]Term
}

var builtin = map[Set][]string{
	SetMRAcquisitionType: {
		"2D acquisition",
		"3D acquisition",
	},
	SetMRIPulseSequence: {
		"echo planar pulse sequence",
		"gradient echo pulse sequence",
		"gradient echo echo planar pulse sequence",
		"spin echo pulse sequence",
		"spin echo echo planar pulse sequence",
		"inversion recovery pulse sequence",
		"MP-RAGE pulse sequence",
		"fast low angle shot pulse sequence",
		"steady-state free precession pulse sequence",
		"diffusion weighted pulse sequence",
	},
	SetContentType: {
		"application/vnd.nifti.1",
		"application/vnd.nifti.2",
		"application/json",
		"text/tab-separated-values",
		"application/gzip",
		"text/plain",
	},
}

// New builds an empty registry.
func New() *Registry {
	return &Registry{sets: make(map[Set]map[string]Term)}
}

var defaultRegistry = func() *Registry {
	r := New()
	for set, names := range builtin {
		for _, name := range names {
			r.Register(set, name)
		}
	}
	return r
}()

// Default returns the shared registry of built-in terms. Callers must not
// Register into it; build their own with New when they need extra terms.
func Default() *Registry {
	return defaultRegistry
}

// Register adds name to set. Registering an existing label is a no-op.
func (r *Registry) Register(set Set, name string) Term {
	name = strings.TrimSpace(name)
	entries, ok := r.sets[set]
	if !ok {
		entries = make(map[string]Term)
		r.sets[set] = entries
	}
	key := foldKey(name)
	if existing, ok := entries[key]; ok {
		return existing
	}
	term := Term{Set: set, Name: name}
	entries[key] = term
	return term
}

// ByName resolves label within set.
func (r *Registry) ByName(set Set, label string) (Term, error) {
	if r != nil {
		if entries, ok := r.sets[set]; ok {
			if term, ok := entries[foldKey(label)]; ok {
				return term, nil
			}
		}
	}
	return Term{}, fmt.Errorf("%w: %s %q", ErrUnknownTerm, set, label)
}

// Has reports whether label is registered within set.
func (r *Registry) Has(set Set, label string) bool {
	_, err := r.ByName(set, label)
	return err == nil
}

// Names lists the registered names of set in sorted order.
func (r *Registry) Names(set Set) []string {
	if r == nil {
		return nil
	}
	entries := r.sets[set]
	names := make([]string, 0, len(entries))
	for _, term := range entries {
		names = append(names, term.Name)
	}
	sort.Strings(names)
	return names
}

func foldKey(label string) string {
	return cases.Fold().String(strings.TrimSpace(label))
}
