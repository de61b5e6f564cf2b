package store

import (
	"encoding/json"
	"fmt"
)

// MergeFields applies patch to the top-level object in data. Nested objects
// are replaced, not merged; a nil patch value deletes the key.
func MergeFields(data json.RawMessage, patch map[string]any) (json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("document is not an object: %w", err)
		}
	}
	for key, value := range patch {
		if value == nil {
			delete(fields, key)
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", key, err)
		}
		fields[key] = encoded
	}
	return json.Marshal(fields)
}
