package tools

import "strings"

const (
	defaultReadLimit = 2000
	maxReadLimit     = 10000
)

func pathSchema() map[string]any {
	return map[string]any{"type": "string"}
}

func fileContracts() []Contract {
	return []Contract{
		{
			Name:        "read_file",
			Description: "Read a text file from the workspace. Returns at most `limit` lines starting at `offset`.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":   pathSchema(),
					"offset": map[string]any{"type": "integer", "minimum": 0},
					"limit":  map[string]any{"type": "integer", "minimum": 1, "maximum": maxReadLimit},
				},
				"required":             []string{"path"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				path, _ := r.requiredPath("path", "")
				offset, hasOffset := r.optionalInt("offset")
				if hasOffset && offset < 0 {
					r.fail("field offset must be >= 0")
				}
				limit, hasLimit := r.optionalInt("limit")
				if hasLimit && (limit < 1 || limit > maxReadLimit) {
					r.fail("field limit must be in [1, %d]", maxReadLimit)
				}
				if !hasLimit {
					limit = defaultReadLimit
				}
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				out := map[string]any{"path": path, "limit": limit}
				if hasOffset {
					out["offset"] = offset
				}
				return out, nil
			},
		},
		{
			Name:        "write_file",
			Description: "Create or overwrite a file with the given content.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":    pathSchema(),
					"content": map[string]any{"type": "string"},
				},
				"required":             []string{"path", "content"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				path, _ := r.requiredPath("path", "")
				content, _ := r.optionalString("content")
				if !r.has("content") {
					r.fail("missing required field: content")
				}
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return map[string]any{"path": path, "content": content}, nil
			},
		},
		{
			Name:        "append_file",
			Description: "Append content to an existing file, creating it when absent.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":    pathSchema(),
					"content": map[string]any{"type": "string"},
				},
				"required":             []string{"path", "content"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				path, _ := r.requiredPath("path", "")
				content := r.requiredString("content")
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return map[string]any{"path": path, "content": content}, nil
			},
		},
		{
			Name:        "str_replace",
			Description: "Replace one occurrence of old_str in the file with new_str. old_str must match exactly.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":    pathSchema(),
					"old_str": map[string]any{"type": "string"},
					"new_str": map[string]any{"type": "string"},
				},
				"required":             []string{"path", "old_str", "new_str"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				path, _ := r.requiredPath("path", "")
				oldStr := r.requiredString("old_str")
				newStr, _ := r.optionalString("new_str")
				if !r.has("new_str") {
					r.fail("missing required field: new_str")
				}
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return map[string]any{"path": path, "old_str": oldStr, "new_str": newStr}, nil
			},
		},
		{
			Name:        "delete_file",
			Description: "Delete a single file. Directories are rejected by the environment.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": pathSchema(),
				},
				"required":             []string{"path"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				path, _ := r.requiredPath("path", "")
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return map[string]any{"path": path}, nil
			},
		},
		{
			Name:        "move_file",
			Description: "Move or rename a file. Both endpoints must stay inside the workspace roots.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"source":      pathSchema(),
					"destination": pathSchema(),
				},
				"required":             []string{"source", "destination"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				source, _ := r.requiredPath("source", "")
				destination, _ := r.requiredPath("destination", "")
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return map[string]any{"source": source, "destination": destination}, nil
			},
		},
		{
			Name:        "list_directory",
			Description: "List directory entries with sizes and modification times.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": pathSchema(),
				},
				"required":             []string{"path"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				path, _ := r.requiredPath("path", "")
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return map[string]any{"path": path}, nil
			},
		},
		{
			Name:        "find_files",
			Description: "Find files under a directory matching a glob pattern.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": pathSchema(),
					"glob": map[string]any{"type": "string"},
				},
				"required":             []string{"path", "glob"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				path, _ := r.requiredPath("path", "")
				glob := r.requiredString("glob")
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return map[string]any{"path": path, "glob": strings.TrimSpace(glob)}, nil
			},
		},
		{
			Name:        "grep_files",
			Description: "Search file contents under a directory with a regular expression.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":             pathSchema(),
					"pattern":          map[string]any{"type": "string"},
					"case_insensitive": map[string]any{"type": "boolean"},
				},
				"required":             []string{"path", "pattern"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				path, _ := r.requiredPath("path", "")
				pattern := r.requiredString("pattern")
				ci, hasCI := r.optionalBool("case_insensitive")
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				out := map[string]any{"path": path, "pattern": pattern}
				if hasCI {
					out["case_insensitive"] = ci
				}
				return out, nil
			},
		},
		{
			Name:        "write_report",
			Description: "Write a markdown deliverable. The path must end in .md so reports stay discoverable.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":    pathSchema(),
					"content": map[string]any{"type": "string"},
				},
				"required":             []string{"path", "content"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				path, _ := r.requiredPath("path", ".md")
				content := r.requiredString("content")
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return map[string]any{"path": path, "content": content}, nil
			},
		},
	}
}
