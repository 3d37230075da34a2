package record

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one entity instance as returned by the backend. Field names are
// backend defined and not stable across endpoints, so values are always read
// through Get and a candidate key list.
type Record = map[string]any

// Get returns the value of the first key present on r whose value is not nil.
// When no candidate matches, fallback is returned.
func Get(r Record, keys []string, fallback any) any {
	if r == nil {
		return fallback
	}
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v
		}
	}
	return fallback
}

// String resolves keys on r and renders the value as a string. Numbers and
// booleans are formatted, nested values are rendered as compact JSON.
func String(r Record, keys []string, fallback string) string {
	v := Get(r, keys, nil)
	if v == nil {
		return fallback
	}
	return Stringify(v)
}

// Stringify renders any decoded JSON value as display text.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Bool resolves keys on r as a boolean. Strings such as "true", "Y", "1" and
// "active" are accepted as true.
func Bool(r Record, keys []string, fallback bool) bool {
	v := Get(r, keys, nil)
	switch val := v.(type) {
	case nil:
		return fallback
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "y", "yes", "1", "active", "a":
			return true
		case "false", "n", "no", "0", "inactive", "i":
			return false
		}
	}
	return fallback
}

// Strings resolves keys on r as a list of strings. A single string value is
// split on commas.
func Strings(r Record, keys []string) []string {
	v := Get(r, keys, nil)
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := strings.TrimSpace(Stringify(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string{}, val...)
	case string:
		var out []string
		for _, part := range strings.Split(val, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
