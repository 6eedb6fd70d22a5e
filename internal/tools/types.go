package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Contract declares one operation: its name, its natural-language description
// for the oracle, the JSON schema advertised to providers, and the validation
// function applied before dispatch.
//
// Contracts are immutable. They are built once by NewRegistry and looked up by
// name; they are never instantiated per call.
type Contract struct {
	Name        string
	Description string
	InputSchema json.RawMessage

	validate ValidateFunc
}

// ValidateFunc checks args against the contract and returns either the
// accepted (defaulted/normalized) args or a list of human-readable violation
// messages. It never panics and never returns an error as control flow.
type ValidateFunc func(args map[string]any) (map[string]any, []string)

// Validate applies the contract to the given args.
func (c Contract) Validate(args map[string]any) (map[string]any, []string) {
	if c.validate == nil {
		return cloneArgs(args), nil
	}
	if args == nil {
		args = map[string]any{}
	}
	return c.validate(args)
}

// Coordinate is a screen position in the fixed 1024x768 virtual display.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

const (
	// ScreenWidth and ScreenHeight bound every coordinate-valued argument.
	ScreenWidth  = 1024
	ScreenHeight = 768
)

// AllowedRoots are the only directories path-valued arguments may live under.
var AllowedRoots = []string{"/home/operator", "/tmp/outputs"}

func cloneArgs(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// --- argument extraction helpers ---
//
// Args arrive as generic JSON maps; numbers decode as float64. The helpers
// below translate presence/shape failures into violation strings so contract
// validators stay declarative.

type argReader struct {
	args       map[string]any
	violations []string
}

func newArgReader(args map[string]any) *argReader {
	if args == nil {
		args = map[string]any{}
	}
	return &argReader{args: args}
}

func (r *argReader) fail(format string, a ...any) {
	r.violations = append(r.violations, fmt.Sprintf(format, a...))
}

func (r *argReader) requiredString(key string) string {
	raw, ok := r.args[key]
	if !ok {
		r.fail("missing required field: %s", key)
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		r.fail("field %s must be a string", key)
		return ""
	}
	if strings.TrimSpace(s) == "" {
		r.fail("field %s must not be empty", key)
		return ""
	}
	return s
}

func (r *argReader) optionalString(key string) (string, bool) {
	raw, ok := r.args[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		r.fail("field %s must be a string", key)
		return "", false
	}
	return s, true
}

func (r *argReader) optionalBool(key string) (bool, bool) {
	raw, ok := r.args[key]
	if !ok {
		return false, false
	}
	b, ok := raw.(bool)
	if !ok {
		r.fail("field %s must be a boolean", key)
		return false, false
	}
	return b, true
}

func (r *argReader) has(key string) bool {
	_, ok := r.args[key]
	return ok
}

func numberValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func (r *argReader) requiredNumber(key string) (float64, bool) {
	raw, ok := r.args[key]
	if !ok {
		r.fail("missing required field: %s", key)
		return 0, false
	}
	f, ok := numberValue(raw)
	if !ok {
		r.fail("field %s must be a number", key)
		return 0, false
	}
	return f, true
}

func (r *argReader) optionalNumber(key string) (float64, bool) {
	raw, ok := r.args[key]
	if !ok {
		return 0, false
	}
	f, ok := numberValue(raw)
	if !ok {
		r.fail("field %s must be a number", key)
		return 0, false
	}
	return f, true
}

func (r *argReader) optionalInt(key string) (int, bool) {
	f, ok := r.optionalNumber(key)
	if !ok {
		return 0, false
	}
	if f != math.Trunc(f) {
		r.fail("field %s must be an integer", key)
		return 0, false
	}
	return int(f), true
}

// requiredCoordinate decodes a [x, y] pair and enforces the screen bounds
// (inclusive on both edges).
func (r *argReader) requiredCoordinate(key string) (Coordinate, bool) {
	raw, ok := r.args[key]
	if !ok {
		r.fail("missing required field: %s", key)
		return Coordinate{}, false
	}
	return r.decodeCoordinate(key, raw)
}

func (r *argReader) decodeCoordinate(key string, raw any) (Coordinate, bool) {
	pair, ok := raw.([]any)
	if !ok || len(pair) != 2 {
		r.fail("field %s must be a [x, y] pair", key)
		return Coordinate{}, false
	}
	x, okX := numberValue(pair[0])
	y, okY := numberValue(pair[1])
	if !okX || !okY {
		r.fail("field %s must contain two numbers", key)
		return Coordinate{}, false
	}
	if math.IsNaN(x) || math.IsNaN(y) || x < 0 || x > ScreenWidth || y < 0 || y > ScreenHeight {
		r.fail("field %s out of bounds: (%v, %v) not within 0..%d x 0..%d", key, x, y, ScreenWidth, ScreenHeight)
		return Coordinate{}, false
	}
	return Coordinate{X: x, Y: y}, true
}

func (r *argReader) requiredStringSlice(key string) []string {
	raw, ok := r.args[key]
	if !ok {
		r.fail("missing required field: %s", key)
		return nil
	}
	return r.decodeStringSlice(key, raw)
}

func (r *argReader) decodeStringSlice(key string, raw any) []string {
	arr, ok := raw.([]any)
	if !ok {
		if ss, ok := raw.([]string); ok {
			out := make([]string, 0, len(ss))
			for _, item := range ss {
				if strings.TrimSpace(item) != "" {
					out = append(out, strings.TrimSpace(item))
				}
			}
			return out
		}
		r.fail("field %s must be an array of strings", key)
		return nil
	}
	out := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			r.fail("field %s[%d] must be a string", key, i)
			continue
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func toSchema(m map[string]any) json.RawMessage {
	b, _ := json.Marshal(m)
	return b
}
