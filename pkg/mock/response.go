package mock

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Response is one configured reply for a mocked operation. Exactly one of
// the three forms is set:
//   - Inline: structured data returned as-is
//   - Fixture: a path to a .json or .txt fixture file, loaded at patch time
//   - Sequence: an ordered list of inline/fixture responses; successive
//     calls consume successive elements, clamping at the last one
type Response struct {
	Inline   any
	Fixture  string
	Sequence []Response
}

func (r *Response) IsSequence() bool {
	return r.Sequence != nil
}

func (r *Response) IsFixture() bool {
	return r.Fixture != ""
}

// isFixturePath reports whether a configured string value refers to a
// fixture file rather than inline string data.
func isFixturePath(s string) bool {
	return strings.HasSuffix(s, ".json") || strings.HasSuffix(s, ".txt")
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	return r.fromValue(raw, false)
}

func (r *Response) fromValue(raw any, nested bool) error {
	switch v := raw.(type) {
	case []any:
		if nested {
			return fmt.Errorf("mock response sequences cannot be nested")
		}
		if len(v) == 0 {
			return fmt.Errorf("mock response sequence must contain at least one element")
		}
		r.Sequence = make([]Response, len(v))
		for i, elem := range v {
			if err := r.Sequence[i].fromValue(elem, true); err != nil {
				return fmt.Errorf("sequence[%d]: %w", i, err)
			}
		}
	case string:
		if isFixturePath(v) {
			r.Fixture = v
		} else {
			r.Inline = v
		}
	default:
		r.Inline = v
	}

	return nil
}

func (r Response) MarshalJSON() ([]byte, error) {
	if r.Sequence != nil {
		return json.Marshal(r.Sequence)
	}
	if r.Fixture != "" {
		return json.Marshal(r.Fixture)
	}
	return json.Marshal(r.Inline)
}

// Inline constructs an inline response.
func InlineResponse(data any) Response {
	return Response{Inline: data}
}

// FixtureResponse constructs a fixture file reference response.
func FixtureResponse(path string) Response {
	return Response{Fixture: path}
}

// SequenceResponse constructs an ordered sequence of responses.
func SequenceResponse(responses ...Response) Response {
	return Response{Sequence: responses}
}
