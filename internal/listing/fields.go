package listing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/lukman83/relist/internal/models"
)

// Int reads key as an integer. Numeric strings are accepted.
func Int(src models.Raw, key string) (int64, bool) {
	return toInt(src[key])
}

// IntPtr is Int returning nil when the key is absent or not an integer.
func IntPtr(src models.Raw, key string) *int64 {
	if n, ok := Int(src, key); ok {
		return &n
	}
	return nil
}

// String reads key as a string; non-string values yield "".
func String(src models.Raw, key string) string {
	s, _ := src[key].(string)
	return s
}

// Object reads key as a nested JSON object.
func Object(src models.Raw, key string) models.Raw {
	switch v := src[key].(type) {
	case models.Raw:
		return v
	case map[string]any:
		return models.Raw(v)
	}
	return nil
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil && f == math.Trunc(f) {
			return int64(f), true
		}
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// toNumber accepts only JSON numbers, never strings.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// toAmount is toNumber plus decimal strings, where a comma separator is allowed.
func toAmount(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return toNumber(v)
}

func present(src models.Raw, key string) bool {
	_, ok := src[key]
	return ok
}
