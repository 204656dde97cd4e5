package sections

import "strings"

// isBlank reports whether a content value counts as missing.
func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

// MergeItem overlays provided on fallback one sub-field at a time. Present
// sub-fields win; blank or missing ones come from fallback. Nested objects
// merge recursively.
func MergeItem(provided, fallback map[string]any) map[string]any {
	out := make(map[string]any, len(provided)+len(fallback))
	for key, value := range fallback {
		out[key] = value
	}
	for key, value := range provided {
		if isBlank(value) {
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			if fallbackNested, okFallback := out[key].(map[string]any); okFallback {
				out[key] = MergeItem(nested, fallbackNested)
				continue
			}
		}
		out[key] = value
	}
	return out
}

// MergeList merges admin-entered list items with a default list by index.
//
// A missing list yields the defaults. Otherwise the result has
// max(len(provided), len(defaults)) items: slot i is provided[i] with
// missing sub-fields taken from defaults[i], slots past the provided list
// are defaults[i], and extra provided items merge against nothing.
func MergeList(provided, defaults []map[string]any) []map[string]any {
	total := len(provided)
	if len(defaults) > total {
		total = len(defaults)
	}
	out := make([]map[string]any, 0, total)
	for idx := 0; idx < total; idx++ {
		var item, fallback map[string]any
		if idx < len(provided) {
			item = provided[idx]
		}
		if idx < len(defaults) {
			fallback = defaults[idx]
		}
		out = append(out, MergeItem(item, fallback))
	}
	return out
}
