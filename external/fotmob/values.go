package fotmob

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

var digitsRegex = regexp.MustCompile(`\d+`)
var leadingNumberRegex = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)`)
var parenNumberRegex = regexp.MustCompile(`\(\s*(-?\d+(?:\.\d+)?)\s*%?\s*\)`)

func mapAt(src map[string]any, path ...string) map[string]any {
	current := src
	for _, key := range path {
		if current == nil {
			return nil
		}
		next, ok := current[key].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

func listAt(src map[string]any, path ...string) []any {
	if len(path) == 0 {
		return nil
	}
	parent := mapAt(src, path[:len(path)-1]...)
	if parent == nil {
		return nil
	}
	items, ok := parent[path[len(path)-1]].([]any)
	if !ok {
		return nil
	}
	return items
}

func asMap(raw any) map[string]any {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	return obj
}

func getString(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	switch typed := src[key].(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return ""
	}
}

func getInt64(src map[string]any, key string) int64 {
	if src == nil {
		return 0
	}
	value, ok := asInt64(src[key])
	if !ok {
		return 0
	}
	return value
}

func getBool(src map[string]any, key string) bool {
	if src == nil {
		return false
	}
	switch typed := src[key].(type) {
	case bool:
		return typed
	case float64:
		return typed != 0
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		return err == nil && parsed
	default:
		return false
	}
}

func asInt64(raw any) (int64, bool) {
	switch typed := raw.(type) {
	case float64:
		return int64(typed), true
	case float32:
		return int64(typed), true
	case int:
		return int64(typed), true
	case int64:
		return typed, true
	case string:
		v, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

func asFloat64(raw any) (float64, bool) {
	switch typed := raw.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case string:
		text := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(typed), "%"))
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func intPtr(raw any) *int {
	value, ok := asFloat64(raw)
	if !ok {
		return nil
	}
	out := int(value)
	return &out
}

func floatPtr(raw any) *float64 {
	value, ok := asFloat64(raw)
	if !ok {
		return nil
	}
	return &value
}

func intOrZero(raw any) int {
	if value := intPtr(raw); value != nil {
		return *value
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, item := range values {
		if strings.TrimSpace(item) != "" {
			return strings.TrimSpace(item)
		}
	}
	return ""
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// ParseCountPct splits "count(pct%)" style values. "45(23.5%)" yields 45 and
// 23.5, "67%" yields only a percentage, plain numbers yield only a count.
func ParseCountPct(raw any) (*int, *float64) {
	switch typed := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return parseCountPctText(typed)
	default:
		return intPtr(typed), nil
	}
}

func parseCountPctText(raw string) (*int, *float64) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, nil
	}

	if strings.Contains(text, "(") {
		var count *int
		if match := leadingNumberRegex.FindStringSubmatch(text); match != nil {
			if parsed, err := strconv.ParseFloat(match[1], 64); err == nil {
				value := int(parsed)
				count = &value
			}
		}
		var pct *float64
		if match := parenNumberRegex.FindStringSubmatch(text); match != nil {
			if parsed, err := strconv.ParseFloat(match[1], 64); err == nil {
				pct = &parsed
			}
		}
		return count, pct
	}

	if strings.Contains(text, "%") {
		return nil, floatPtr(text)
	}
	return intPtr(text), nil
}

// metricValue reads the leading quantity of a metric: the count of a
// "count(pct%)" pair, the number of a percentage, or the plain number.
func metricValue(raw any) *float64 {
	text, ok := raw.(string)
	if !ok {
		return floatPtr(raw)
	}
	text = strings.TrimSpace(text)
	if strings.Contains(text, "(") {
		count, _ := parseCountPctText(text)
		if count == nil {
			return nil
		}
		value := float64(*count)
		return &value
	}
	return floatPtr(text)
}

func metricCount(raw any) *int {
	value := metricValue(raw)
	if value == nil {
		return nil
	}
	out := int(*value)
	return &out
}

// metricPct reads only an explicit percentage; plain numbers yield nil.
func metricPct(raw any) *float64 {
	text, ok := raw.(string)
	if !ok {
		return nil
	}
	if strings.Contains(text, "(") {
		_, pct := parseCountPctText(text)
		return pct
	}
	if strings.Contains(text, "%") {
		return floatPtr(text)
	}
	return nil
}

func rawJSON(value any) []byte {
	if value == nil {
		return nil
	}
	out, err := sonic.Marshal(value)
	if err != nil {
		return nil
	}
	return out
}
