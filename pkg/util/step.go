package util

import (
	"encoding/json"
	"fmt"
	"os"
)

// Step is a piece of task content that is either written inline in the
// task file or loaded from a file next to it. In YAML it accepts both a
// bare string (treated as inline content) and the explicit object form.
type Step struct {
	Inline string `json:"inline"`
	File   string `json:"file"`
}

type stepFields Step

func (s *Step) UnmarshalJSON(data []byte) error {
	var inline string
	if err := json.Unmarshal(data, &inline); err == nil {
		s.Inline = inline
		s.File = ""
		return nil
	}

	var fields stepFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields.Inline != "" && fields.File != "" {
		return fmt.Errorf("step must set either inline or file, not both")
	}

	*s = Step(fields)
	return nil
}

func (s *Step) IsEmpty() bool {
	if s == nil {
		return true
	}
	return s.File == "" && s.Inline == ""
}

// GetValue returns the step's content, reading the referenced file when
// the content is not inline.
func (s *Step) GetValue() (string, error) {
	if s.Inline != "" {
		return s.Inline, nil
	}

	b, err := os.ReadFile(s.File)
	if err != nil {
		return "", fmt.Errorf("failed to read step file: %w", err)
	}

	return string(b), nil
}
