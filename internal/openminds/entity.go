package openminds

import (
	"strings"

	"github.com/google/uuid"
)

const vocabBase = "https://openminds.ebrains.eu/"

// Schema type IRIs for the emitted entities.
const (
	TypeOrganization          = vocabBase + "core/Organization"
	TypeFile                  = vocabBase + "core/File"
	TypeMRIScanner            = vocabBase + "ephys/MRIScanner"
	TypeScannerUsage          = vocabBase + "ephys/MRIScannerUsage"
	TypeFunctionalAcquisition = vocabBase + "ephys/FunctionalMRIAcquisition"
)

// Entity is anything that can be added to the output collection.
type Entity interface {
	EntityID() string
	EntityType() string
}

// Ref points at another entity by identifier.
type Ref struct {
	ID string `json:"@id"`
}

// RefTo returns a reference to e.
func RefTo(e Entity) Ref {
	return Ref{ID: e.EntityID()}
}

// NewID returns a fresh blank-node identifier.
func NewID() string {
	return "_:" + uuid.NewString()
}

// ShortType returns the last path segment of a type IRI.
func ShortType(typeIRI string) string {
	if idx := strings.LastIndex(typeIRI, "/"); idx >= 0 {
		return typeIRI[idx+1:]
	}
	return typeIRI
}

var knownTypes = []string{
	TypeOrganization,
	TypeFile,
	TypeMRIScanner,
	TypeScannerUsage,
	TypeFunctionalAcquisition,
}

// TypeIRI returns the type IRI whose short name matches short, ignoring
// case. Unknown names are returned unchanged.
func TypeIRI(short string) string {
	for _, typ := range knownTypes {
		if strings.EqualFold(ShortType(typ), short) {
			return typ
		}
	}
	return short
}
