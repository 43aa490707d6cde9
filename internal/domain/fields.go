package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Fields holds the raw JSON members of a create or update body, keyed by
// wire name. Keeping them raw lets validation tell a missing key from a
// key of the wrong type, and lets updates apply only what was sent.
type Fields map[string]json.RawMessage

// FieldsFrom builds Fields from plain Go values.
func FieldsFrom(values map[string]any) (Fields, error) {
	f := make(Fields, len(values))
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %s: %w", k, err)
		}
		f[k] = raw
	}
	return f, nil
}

// lookup returns the raw value when the key is present and not JSON null.
func (f Fields) lookup(key string) (json.RawMessage, bool) {
	raw, ok := f[key]
	if !ok {
		return nil, false
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false
	}
	return trimmed, true
}

// str decodes a string member. isString is false when the key is present
// but holds another JSON type.
func (f Fields) str(key string) (value string, present, isString bool) {
	raw, ok := f.lookup(key)
	if !ok {
		return "", false, false
	}
	if raw[0] != '"' {
		return "", true, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", true, false
	}
	return value, true, true
}

// requiredString enforces "present, a string, not blank".
func (f Fields) requiredString(key, message string) (string, error) {
	v, present, isString := f.str(key)
	if !present || !isString || strings.TrimSpace(v) == "" {
		return "", NewValidationError(key, message)
	}
	return v, nil
}

// optionalString returns an unset Optional when the key is absent and a
// validation error when it holds a non-string.
func (f Fields) optionalString(key, message string) (Optional[string], error) {
	v, present, isString := f.str(key)
	if !present {
		return Optional[string]{}, nil
	}
	if !isString {
		return Optional[string]{}, NewValidationError(key, message)
	}
	return Some(v), nil
}

// tags reads the tags member. A present value that is not an array becomes
// an empty list; non-string elements are dropped.
func (f Fields) tags() Optional[[]string] {
	raw, ok := f.lookup("tags")
	if !ok {
		return Optional[[]string]{}
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return Some([]string{})
	}
	tags := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			tags = append(tags, s)
		}
	}
	return Some(tags)
}

// boolean only yields a value for a literal JSON true/false.
func (f Fields) boolean(key string) Optional[bool] {
	raw, ok := f.lookup(key)
	if !ok {
		return Optional[bool]{}
	}
	switch string(raw) {
	case "true":
		return Some(true)
	case "false":
		return Some(false)
	default:
		return Optional[bool]{}
	}
}
