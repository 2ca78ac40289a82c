package pipeline

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Lenient field readers for model output. They never fail: a missing, null,
// blank or mistyped value yields the supplied default.

// getStringField returns the trimmed string value of key, or def.
// Numbers and booleans are rendered to text.
func getStringField(m map[string]interface{}, key, def string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}

	var s string
	switch val := v.(type) {
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		s = val.String()
	case bool:
		s = strconv.FormatBool(val)
	default:
		return def
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// getFirstStringField returns the first non-blank value among keys, or def.
func getFirstStringField(m map[string]interface{}, def string, keys ...string) string {
	for _, k := range keys {
		if s := getStringField(m, k, ""); s != "" {
			return s
		}
	}
	return def
}

// getAmountField reads a money field. Strings are kept verbatim (trimmed);
// JSON numbers keep their literal digits.
func getAmountField(m map[string]interface{}, key, def string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}

	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val).String()
	case json.Number:
		return val.String()
	}
	return getStringField(m, key, def)
}

// getBoolField coerces boolean-like values. Anything unrecognised is false.
func getBoolField(m map[string]interface{}, key string) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}

	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case json.Number:
		f, err := val.Float64()
		return err == nil && f != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		switch s {
		case "yes", "y":
			return true
		case "no", "n":
			return false
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false
		}
		return b
	}
	return false
}

// getStringSliceField reads a list of strings. A bare string becomes a
// one-element list; other element types are stringified.
func getStringSliceField(m map[string]interface{}, key string) []string {
	out := []string{}
	v, ok := m[key]
	if !ok || v == nil {
		return out
	}

	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	case []interface{}:
		for _, elem := range val {
			if elem == nil {
				continue
			}
			var s string
			if str, ok := elem.(string); ok {
				s = str
			} else {
				s = fmt.Sprint(elem)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// getObjectSliceField returns the object elements of a list field, skipping anything else.
func getObjectSliceField(m map[string]interface{}, key string) []map[string]interface{} {
	list, ok := m[key].([]interface{})
	if !ok {
		return nil
	}

	out := make([]map[string]interface{}, 0, len(list))
	for _, elem := range list {
		if obj, ok := elem.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}
