package formats

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Int64 reads a numeric field that may be encoded as a JSON number or as a
// numeric string. The second result is false when v is absent or not numeric.
func Int64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), !math.IsNaN(n) && !math.IsInf(n, 0)
	case json.Number:
		return parseNumeric(string(n))
	case string:
		return parseNumeric(n)
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func parseNumeric(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

func intField(m map[string]any, key string) (int, bool) {
	v, ok := Int64(m[key])
	return int(v), ok
}

func int64Field(m map[string]any, key string) int64 {
	v, _ := Int64(m[key])
	return v
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func objectField(m map[string]any, key string) map[string]any {
	o, _ := m[key].(map[string]any)
	return o
}

func optInt(m map[string]any, key string) *int {
	if v, ok := intField(m, key); ok {
		return &v
	}
	return nil
}

func optInt64(m map[string]any, key string) *int64 {
	if v, ok := Int64(m[key]); ok {
		return &v
	}
	return nil
}

func optString(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}
