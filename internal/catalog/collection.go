package catalog

import (
	"errors"
	"fmt"
	"sort"

	"bidsmeta/internal/openminds"
)

// ErrDuplicateEntity reports a second Add of an entity identifier.
var ErrDuplicateEntity = errors.New("duplicate entity")

// Sink receives entities as they are created.
type Sink interface {
	Add(entity openminds.Entity) error
}

// Collection is an ordered, identifier-unique set of entities. It is not
// safe for concurrent use.
type Collection struct {
	entities []openminds.Entity
	index    map[string]int
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{index: make(map[string]int)}
}

// Add appends entity. Adding an identifier twice fails with
// ErrDuplicateEntity.
func (c *Collection) Add(entity openminds.Entity) error {
	if entity == nil {
		return errors.New("catalog: nil entity")
	}
	id := entity.EntityID()
	if id == "" {
		return fmt.Errorf("catalog: %s without identifier", openminds.ShortType(entity.EntityType()))
	}
	if _, exists := c.index[id]; exists {
		return fmt.Errorf("%w: %s %s", ErrDuplicateEntity, openminds.ShortType(entity.EntityType()), id)
	}
	c.index[id] = len(c.entities)
	c.entities = append(c.entities, entity)
	return nil
}

// Len returns the number of entities.
func (c *Collection) Len() int {
	return len(c.entities)
}

// Entities returns the entities in insertion order.
func (c *Collection) Entities() []openminds.Entity {
	return append([]openminds.Entity(nil), c.entities...)
}

// Get returns the entity with id.
func (c *Collection) Get(id string) (openminds.Entity, bool) {
	idx, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return c.entities[idx], true
}

// OfType returns the entities of one type IRI in insertion order.
func (c *Collection) OfType(typeIRI string) []openminds.Entity {
	var out []openminds.Entity
	for _, e := range c.entities {
		if e.EntityType() == typeIRI {
			out = append(out, e)
		}
	}
	return out
}

// TypeCount is the number of entities of one type.
type TypeCount struct {
	Type  string
	Count int
}

// Counts returns per-type totals sorted by short type name.
func (c *Collection) Counts() []TypeCount {
	totals := make(map[string]int)
	for _, e := range c.entities {
		totals[e.EntityType()]++
	}
	out := make([]TypeCount, 0, len(totals))
	for typ, n := range totals {
		out = append(out, TypeCount{Type: typ, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return openminds.ShortType(out[i].Type) < openminds.ShortType(out[j].Type)
	})
	return out
}
