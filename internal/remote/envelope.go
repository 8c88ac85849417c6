package remote

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the decoded top-level JSON object returned by the service.
type Envelope map[string]json.RawMessage

// Message returns the envelope's message field, or "" when absent or not a string.
func (e Envelope) Message() string {
	return e.String("message")
}

// String returns a top-level string field.
func (e Envelope) String(key string) string {
	raw, ok := e[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

// Has reports whether the field is present and not null.
func (e Envelope) Has(key string) bool {
	raw, ok := e[key]
	if !ok {
		return false
	}
	return strings.TrimSpace(string(raw)) != "null"
}

// Decode unmarshals the whole envelope into v.
func (e Envelope) Decode(v any) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	return nil
}
