package sections

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Decode parses a content blob into a field map. Invalid or non-object
// blobs decode to an empty map so callers always fall back to defaults.
func Decode(raw []byte) map[string]any {
	out := map[string]any{}
	if len(raw) == 0 {
		return out
	}
	var parsed any
	if errUnmarshal := json.Unmarshal(raw, &parsed); errUnmarshal != nil {
		return out
	}
	if m, ok := parsed.(map[string]any); ok {
		return m
	}
	return out
}

// Lookup walks a dot-separated path through nested objects.
func Lookup(fields map[string]any, path string) (any, bool) {
	if fields == nil {
		return nil, false
	}
	var current any = fields
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, current != nil
}

// String returns the trimmed string at path, or def when it is absent,
// empty or not a string.
func String(fields map[string]any, path, def string) string {
	value, ok := Lookup(fields, path)
	if !ok {
		return def
	}
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

// Int returns the integer at path. JSON numbers and numeric strings are accepted.
func Int(fields map[string]any, path string, def int) int {
	value, ok := Lookup(fields, path)
	if !ok {
		return def
	}
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if parsed, errParse := strconv.Atoi(strings.TrimSpace(v)); errParse == nil {
			return parsed
		}
	}
	return def
}

// Object returns the nested object at path, or nil.
func Object(fields map[string]any, path string) map[string]any {
	value, ok := Lookup(fields, path)
	if !ok {
		return nil
	}
	m, _ := value.(map[string]any)
	return m
}

// List returns the array at path as objects. Entries that are not objects
// become empty objects so item positions are preserved. A missing or empty
// array yields nil.
func List(fields map[string]any, path string) []map[string]any {
	value, ok := Lookup(fields, path)
	if !ok {
		return nil
	}
	items, ok := value.([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]any)
		if m == nil {
			m = map[string]any{}
		}
		out = append(out, m)
	}
	return out
}

// StringList returns the non-empty strings of the array at path, or def
// when none are present.
func StringList(fields map[string]any, path string, def []string) []string {
	value, ok := Lookup(fields, path)
	if !ok {
		return def
	}
	return stringsOf(value, def)
}

func stringsOf(value any, def []string) []string {
	items, ok := value.([]any)
	if !ok {
		if typed, okTyped := value.([]string); okTyped && len(typed) > 0 {
			return typed
		}
		return def
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, okString := item.(string); okString && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
