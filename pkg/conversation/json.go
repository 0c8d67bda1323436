package conversation

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON accepts both the canonical part-array form and the common
// shorthand where "content" is a plain string:
//
//	{"role": "user", "content": "I prefer Python"}
//	{"role": "user", "content": [{"type": "text", "text": "I prefer Python"}]}
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    Role            `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.Role = raw.Role
	m.Parts = nil

	if len(raw.Content) == 0 {
		return nil
	}

	var text string
	if err := json.Unmarshal(raw.Content, &text); err == nil {
		m.Parts = []Part{TextPart(text)}
		return nil
	}

	var parts []Part
	if err := json.Unmarshal(raw.Content, &parts); err != nil {
		return fmt.Errorf("content must be a string or an array of parts: %w", err)
	}
	m.Parts = parts
	return nil
}
