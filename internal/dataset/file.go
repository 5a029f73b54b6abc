package dataset

import (
	"path"
	"strings"
	"sync"

	"bidsmeta/internal/metadata"
)

// AssociationKind classifies a file associated with a data file.
type AssociationKind string

const (
	AssociationSidecar AssociationKind = "sidecar"
	AssociationEvents  AssociationKind = "events"
	AssociationPhysio  AssociationKind = "physio"
	AssociationStim    AssociationKind = "stim"
	AssociationBval    AssociationKind = "bval"
	AssociationBvec    AssociationKind = "bvec"
)

// Association is a file describing or accompanying a data file.
type Association struct {
	Path string
	Kind AssociationKind
}

// File is one data file of a dataset.
type File interface {
	// Path is slash-separated and relative to the dataset root.
	Path() string
	Metadata() (metadata.Record, error)
	Entities() Entities
	Associations() []Association
}

// Companion suffixes that share a data file's entities.
var companionSuffixes = map[string]AssociationKind{
	"events": AssociationEvents,
	"physio": AssociationPhysio,
	"stim":   AssociationStim,
}

// Companion extensions that share a data file's stem.
var companionExtensions = map[string]AssociationKind{
	".bval": AssociationBval,
	".bvec": AssociationBvec,
}

type bidsFile struct {
	ds       *Dataset
	rel      string
	entities Entities

	assocOnce    sync.Once
	associations []Association
}

func (f *bidsFile) Path() string { return f.rel }

func (f *bidsFile) Entities() Entities { return f.entities }

func (f *bidsFile) Metadata() (metadata.Record, error) {
	return f.ds.metadataFor(f.rel, f.entities)
}

// Associations lists the applicable sidecars, root first, followed by
// companions in the file's own directory. The list is computed once per
// file value.
func (f *bidsFile) Associations() []Association {
	f.assocOnce.Do(func() {
		f.associations = f.findAssociations()
	})
	return f.associations
}

func (f *bidsFile) findAssociations() []Association {
	var out []Association
	for _, sidecar := range f.ds.applicableSidecars(f.rel, f.entities) {
		out = append(out, Association{Path: sidecar, Kind: AssociationSidecar})
	}

	stem := Stem(f.rel)
	prefix := strings.TrimSuffix(stem, "_"+f.entities.Suffix)
	for _, rel := range f.ds.byDir[path.Dir(f.rel)] {
		if rel == f.rel {
			continue
		}
		if kind, ok := companionKind(rel, stem, prefix); ok {
			out = append(out, Association{Path: rel, Kind: kind})
		}
	}
	return out
}

func companionKind(rel, stem, prefix string) (AssociationKind, bool) {
	e := ParseEntities(rel)
	if Stem(rel) == stem {
		kind, ok := companionExtensions[e.Extension]
		return kind, ok
	}
	if Stem(rel) != prefix+"_"+e.Suffix {
		return "", false
	}
	kind, ok := companionSuffixes[e.Suffix]
	if !ok || e.Extension == ".json" {
		return "", false
	}
	return kind, true
}
