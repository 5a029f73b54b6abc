package vocab

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Overrides adds dataset-value to term-name entries per table.
type Overrides map[TableID]map[string]string

// LoadOverrides reads an overrides YAML file:
//
//	pulse_sequence_type:
//	  "MB-EPI": "gradient echo echo planar pulse sequence"
//
// An empty path yields no overrides.
func LoadOverrides(path string) (Overrides, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary overrides: %w", err)
	}
	return ParseOverrides(data)
}

// ParseOverrides decodes overrides YAML.
func ParseOverrides(data []byte) (Overrides, error) {
	var out Overrides
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse vocabulary overrides: %w", err)
	}
	return out, nil
}
