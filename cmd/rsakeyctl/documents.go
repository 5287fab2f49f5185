package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ruteri/cfn-rsakey-provider/api/cfn"
	"gopkg.in/yaml.v3"
)

// readDocument reads a YAML or JSON mapping from path.
func readDocument(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	return doc, nil
}

// mergeProperties returns the properties read from path, if any, with
// overrides applied on top. Empty overrides are skipped.
func mergeProperties(path string, overrides map[string]interface{}) (map[string]interface{}, error) {
	props := map[string]interface{}{}
	if path != "" {
		doc, err := readDocument(path)
		if err != nil {
			return nil, err
		}
		props = doc
	}

	for k, v := range overrides {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		props[k] = v
	}
	return props, nil
}

// readEvent reads a custom resource event document from path.
func readEvent(path string) (cfn.Event, error) {
	doc, err := readDocument(path)
	if err != nil {
		return cfn.Event{}, err
	}

	// The event type only carries json tags.
	raw, err := json.Marshal(doc)
	if err != nil {
		return cfn.Event{}, err
	}

	var event cfn.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return cfn.Event{}, fmt.Errorf("invalid event in %s: %w", path, err)
	}
	return event, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
