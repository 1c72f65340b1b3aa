package util

import (
	"encoding/json"
	"fmt"
)

// UnmarshalWithKind decodes JSON data into target after checking that the
// document's "kind" field matches expectedKind. Documents without a kind
// field are rejected so that unrelated YAML files fail loudly instead of
// decoding into zero values.
func UnmarshalWithKind(data []byte, target any, expectedKind string) error {
	probe := struct {
		Kind string `json:"kind"`
	}{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if probe.Kind != expectedKind {
		return fmt.Errorf("cannot decode kind '%s' as kind '%s'", probe.Kind, expectedKind)
	}

	return json.Unmarshal(data, target)
}
