package loop

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// redactArgsForLog rewrites tool arguments for log output: sensitive values
// are replaced with a length marker, long strings are flattened and clipped,
// nested structures are walked to a bounded depth.
func redactArgsForLog(args map[string]any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = redactValueForLog(k, v, 0)
	}
	return out
}

func redactValueForLog(key string, in any, depth int) any {
	if depth > 4 {
		return "[omitted]"
	}
	if isSensitiveArgKey(key) {
		switch v := in.(type) {
		case string:
			return fmt.Sprintf("[redacted:%d chars]", utf8.RuneCountInString(v))
		case []byte:
			return fmt.Sprintf("[redacted:%d bytes]", len(v))
		default:
			return "[redacted]"
		}
	}
	switch v := in.(type) {
	case string:
		return flattenLogText(v, 200)
	case []byte:
		return fmt.Sprintf("[bytes:%d]", len(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, vv := range v {
			out[k] = redactValueForLog(k, vv, depth+1)
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, vv := range v {
			out = append(out, redactValueForLog(key, vv, depth+1))
		}
		return out
	default:
		return in
	}
}

func isSensitiveArgKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return false
	}
	switch k {
	case "content", "authorization", "cookie", "set_cookie":
		return true
	}
	return strings.Contains(k, "token") || strings.Contains(k, "secret") ||
		strings.Contains(k, "password") || strings.Contains(k, "api_key")
}

// flattenLogText collapses control characters and runs of whitespace so a
// value always fits on one log line, clipping at maxRunes.
func flattenLogText(raw string, maxRunes int) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, raw)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if maxRunes > 0 {
		rs := []rune(cleaned)
		if len(rs) > maxRunes {
			return string(rs[:maxRunes]) + "... (truncated)"
		}
	}
	return cleaned
}
