package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// loadSections reads a seed document. Sections may sit at the top level or
// under a "sections" key.
func loadSections(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return parseSections(raw)
}

func parseSections(raw []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	if nested, ok := doc["sections"].(map[string]interface{}); ok && len(doc) == 1 {
		doc = nested
	}
	if len(doc) == 0 {
		return nil, errors.New("seed file has no sections")
	}

	for name, section := range doc {
		if _, ok := section.(map[string]interface{}); !ok {
			return nil, fmt.Errorf("section %q must be a mapping", name)
		}
	}
	return doc, nil
}
