package llm

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseObject recovers a JSON object from model output. Models wrap answers
// in markdown fences or prepend prose often enough that a plain Unmarshal is
// not good enough: the text is stripped of fences first, then scanned for the
// first balanced object. When nothing parses the raw text is preserved under
// "_raw_text" so callers can still log and fall back.
func ParseObject(text string) map[string]any {
	cleaned := stripFences(text)

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
		return obj
	}
	if candidate := firstBalancedObject(cleaned); candidate != "" {
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
			return obj
		}
	}
	return map[string]any{"_raw_text": strings.TrimSpace(text)}
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// firstBalancedObject returns the first {...} span with balanced braces,
// ignoring braces inside string literals.
func firstBalancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

// StringField reads a string value tolerating models that emit numbers or
// nulls where a string was asked for.
func StringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// StringSlice reads a list of strings, skipping non-string members.
func StringSlice(obj map[string]any, key string) []string {
	raw, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
