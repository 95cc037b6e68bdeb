// Package service holds the pure audit building blocks: field masking, threshold
// alerting, export encoding and event signing.
package service

import "strings"

// RedactedValue replaces the value of every sensitive field.
const RedactedValue = "[REDACTED]"

// Sanitizer masks values whose key contains one of the configured field names.
// Matching is case-insensitive and descends into nested maps and slices.
type Sanitizer struct {
	fields []string
}

// NewSanitizer creates a Sanitizer for the given field names.
func NewSanitizer(fields []string) *Sanitizer {
	lowered := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			lowered = append(lowered, f)
		}
	}
	return &Sanitizer{fields: lowered}
}

// Sanitize returns a masked deep copy of data. Nil stays nil.
func (s *Sanitizer) Sanitize(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		if s.isSensitive(k) {
			out[k] = RedactedValue
			continue
		}
		out[k] = s.sanitizeValue(v)
	}
	return out
}

func (s *Sanitizer) sanitizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return s.Sanitize(val)
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = s.sanitizeValue(item)
		}
		return items
	default:
		return v
	}
}

func (s *Sanitizer) isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, f := range s.fields {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}
