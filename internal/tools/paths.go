package tools

import (
	"path/filepath"
	"strings"
)

// normalizePath enforces the absolute-path refinement: the value must be an
// absolute path whose cleaned form stays under one of the AllowedRoots.
// When requiredExt is non-empty the path must also carry that extension.
// Returns the cleaned path plus any violations.
func normalizePath(key string, raw string, requiredExt string) (string, []string) {
	var violations []string
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", []string{"field " + key + " must not be empty"}
	}
	if !filepath.IsAbs(p) {
		return "", []string{"field " + key + " must be an absolute path"}
	}
	clean := filepath.Clean(p)
	if !withinAllowedRoots(clean) {
		violations = append(violations, "field "+key+" must be under one of: "+strings.Join(AllowedRoots, ", "))
	}
	if requiredExt != "" && !strings.EqualFold(filepath.Ext(clean), requiredExt) {
		violations = append(violations, "field "+key+" must have the "+requiredExt+" extension")
	}
	if len(violations) > 0 {
		return "", violations
	}
	return clean, nil
}

func withinAllowedRoots(clean string) bool {
	for _, root := range AllowedRoots {
		if clean == root || strings.HasPrefix(clean, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// requiredPath reads a path-valued field and applies normalizePath.
func (r *argReader) requiredPath(key string, requiredExt string) (string, bool) {
	raw, ok := r.args[key]
	if !ok {
		r.fail("missing required field: %s", key)
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		r.fail("field %s must be a string", key)
		return "", false
	}
	clean, violations := normalizePath(key, s, requiredExt)
	if len(violations) > 0 {
		r.violations = append(r.violations, violations...)
		return "", false
	}
	return clean, true
}
