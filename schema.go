package cssval

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Candidate key names for each logical field, in priority order. Supporting a
// newly observed engine variant means adding one name to one of these lists.
var (
	rootKeys     = []string{"cssvalidation", "CSSValidation", "validation", "result"}
	errorKeys    = []string{"errors", "errorlist", "error"}
	warningKeys  = []string{"warnings", "warninglist", "warning"}
	messageKeys  = []string{"message", "msg", "text", "description"}
	lineKeys     = []string{"line", "lineNumber", "lastLine"}
	columnKeys   = []string{"column", "col", "columnNumber", "position"}
	sourceKeys   = []string{"source", "uri", "file", "url"}
	categoryKeys = []string{"type", "category", "kind"}
)

// payloadRoot returns the object holding the diagnostic arrays. A wrapper
// that carries the arrays wins; otherwise the top level is used when it has
// them, then the first wrapper object found.
func payloadRoot(obj map[string]any) map[string]any {
	var firstWrapper map[string]any
	for _, key := range rootKeys {
		inner, ok := obj[key].(map[string]any)
		if !ok {
			continue
		}
		if hasAnyKey(inner, errorKeys) || hasAnyKey(inner, warningKeys) {
			return inner
		}
		if firstWrapper == nil {
			firstWrapper = inner
		}
	}
	if hasAnyKey(obj, errorKeys) || hasAnyKey(obj, warningKeys) || firstWrapper == nil {
		return obj
	}
	return firstWrapper
}

func hasAnyKey(obj map[string]any, keys []string) bool {
	for _, key := range keys {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	return false
}

// itemsOf returns the object elements of the first array found under keys.
// Missing or non-array fields yield an empty list; non-object elements are skipped.
func itemsOf(obj map[string]any, keys []string) []map[string]any {
	for _, key := range keys {
		arr, ok := obj[key].([]any)
		if !ok {
			continue
		}
		items := make([]map[string]any, 0, len(arr))
		for _, el := range arr {
			if item, ok := el.(map[string]any); ok {
				items = append(items, item)
			}
		}
		return items
	}
	return nil
}

// stringField returns the first present string-like field.
func stringField(item map[string]any, keys []string) string {
	for _, key := range keys {
		switch v := item[key].(type) {
		case string:
			return v
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// intField parses the first present field as a non-negative integer,
// defaulting to 0 when absent or unparsable.
func intField(item map[string]any, keys []string) int {
	for _, key := range keys {
		v, ok := item[key]
		if !ok || v == nil {
			continue
		}
		return toNonNegativeInt(v)
	}
	return 0
}

func toNonNegativeInt(v any) int {
	var n float64
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		n = f
	case float64:
		n = t
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		n = float64(i)
	default:
		return 0
	}
	if n < 0 || math.IsNaN(n) || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}
