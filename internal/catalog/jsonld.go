package catalog

import (
	"encoding/json"
	"fmt"
	"io"

	"bidsmeta/internal/openminds"
)

// Vocab is the JSON-LD vocabulary of emitted documents.
const Vocab = "https://openminds.ebrains.eu/vocab/"

type document struct {
	Context map[string]string `json:"@context"`
	Graph   []json.RawMessage `json:"@graph"`
}

// EncodeEntity renders entity as a JSON object carrying its "@type".
func EncodeEntity(entity openminds.Entity) ([]byte, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", entity.EntityID(), err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode %s: %w", entity.EntityID(), err)
	}
	typ, err := json.Marshal(entity.EntityType())
	if err != nil {
		return nil, err
	}
	fields["@type"] = typ
	return json.Marshal(fields)
}

// WriteJSONLD writes c as a single document with the entities in insertion
// order under "@graph".
func WriteJSONLD(w io.Writer, c *Collection) error {
	doc := document{
		Context: map[string]string{"@vocab": Vocab},
		Graph:   make([]json.RawMessage, 0, c.Len()),
	}
	for _, entity := range c.Entities() {
		encoded, err := EncodeEntity(entity)
		if err != nil {
			return err
		}
		doc.Graph = append(doc.Graph, encoded)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write json-ld: %w", err)
	}
	return nil
}
