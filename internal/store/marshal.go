package store

import (
	"encoding/json"
	"fmt"
)

// marshalRoster serializes a set of identifiers to a JSON array.
// A nil set serializes as "[]" so roster columns are never NULL.
func marshalRoster(set []string) (string, error) {
	if set == nil {
		return "[]", nil
	}
	data, err := json.Marshal(set)
	if err != nil {
		return "", fmt.Errorf("marshal roster: %w", err)
	}
	return string(data), nil
}

// unmarshalRoster deserializes a JSON array column into a slice.
// Returns an empty slice (not nil) for "[]".
func unmarshalRoster(data string) ([]string, error) {
	var set []string
	if err := json.Unmarshal([]byte(data), &set); err != nil {
		return nil, fmt.Errorf("unmarshal roster: %w", err)
	}
	if set == nil {
		set = []string{}
	}
	return set, nil
}
