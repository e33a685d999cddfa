// Package listing defines the structured property listing record, the
// shape-tolerant field representation, and the canonical fingerprint used
// for duplicate suppression.
package listing

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FieldValue is a tagged union for fields that historically arrived
// either as plain strings or as structured objects (location, price,
// area). Exactly one of Scalar and Structured is set; the zero value
// means the field is absent. One canonical serialization is used
// everywhere the value is compared, searched, or fingerprinted, instead
// of shape checks scattered through the callers.
type FieldValue struct {
	Scalar     string
	Structured map[string]any
}

// ScalarValue wraps a plain string field.
func ScalarValue(s string) FieldValue {
	return FieldValue{Scalar: s}
}

// StructuredValue wraps an object-shaped field.
func StructuredValue(m map[string]any) FieldValue {
	return FieldValue{Structured: m}
}

// IsZero reports whether the field is absent.
func (v FieldValue) IsZero() bool {
	return v.Scalar == "" && len(v.Structured) == 0
}

// Canonical returns the lower-cased deterministic serialization used for
// fingerprinting and comparison. Object keys are emitted in sorted order
// so construction order never changes the result. Absent fields
// serialize as the empty JSON string.
func (v FieldValue) Canonical() string {
	switch {
	case len(v.Structured) > 0:
		// encoding/json writes map keys sorted, which is exactly the
		// stable ordering the fingerprint needs.
		b, err := json.Marshal(v.Structured)
		if err != nil {
			return `""`
		}
		return strings.ToLower(string(b))
	case v.Scalar != "":
		b, _ := json.Marshal(v.Scalar)
		return strings.ToLower(string(b))
	default:
		return `""`
	}
}

// Display returns a human-readable rendering: the scalar itself, a
// "formatted" entry when the object carries one, otherwise the non-empty
// values joined in sorted key order.
func (v FieldValue) Display() string {
	if v.Scalar != "" {
		return v.Scalar
	}
	if len(v.Structured) == 0 {
		return ""
	}

	if f, ok := v.Structured["formatted"].(string); ok && f != "" {
		return f
	}

	keys := make([]string, 0, len(v.Structured))
	for k := range v.Structured {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		val := v.Structured[k]
		if val == nil {
			continue
		}
		s := fmt.Sprintf("%v", val)
		if s == "" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// MarshalJSON emits the scalar as a JSON string, the structured form as
// an object, and the absent value as null.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch {
	case len(v.Structured) > 0:
		return json.Marshal(v.Structured)
	case v.Scalar != "":
		return json.Marshal(v.Scalar)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts either shape, so records written under older
// schema versions still load.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = FieldValue{}
		return nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("unmarshaling structured field: %w", err)
		}
		*v = FieldValue{Structured: m}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshaling scalar field: %w", err)
	}
	*v = FieldValue{Scalar: s}
	return nil
}
