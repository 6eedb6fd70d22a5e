package tools

import "strings"

const (
	defaultShellTimeoutSec = 30
	maxShellTimeoutSec     = 600
)

func shellContracts() []Contract {
	return []Contract{
		{
			Name:        "shell_exec",
			Description: "Execute a shell command in the environment's session. Use working_dir instead of cd; use find_files/grep_files for investigation where possible.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"command":     map[string]any{"type": "string"},
					"working_dir": map[string]any{"type": "string"},
					"timeout_sec": map[string]any{"type": "integer", "minimum": 1, "maximum": maxShellTimeoutSec},
				},
				"required":             []string{"command"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				command := r.requiredString("command")
				if command != "" {
					if msg := checkCommandPrefix(command); msg != "" {
						r.fail("%s", msg)
					}
				}
				workingDir := ""
				if raw, ok := r.optionalString("working_dir"); ok {
					clean, violations := normalizePath("working_dir", raw, "")
					if len(violations) > 0 {
						r.violations = append(r.violations, violations...)
					} else {
						workingDir = clean
					}
				}
				timeoutSec, hasTimeout := r.optionalInt("timeout_sec")
				if hasTimeout && (timeoutSec < 1 || timeoutSec > maxShellTimeoutSec) {
					r.fail("field timeout_sec must be in [1, %d]", maxShellTimeoutSec)
				}
				if !hasTimeout {
					timeoutSec = defaultShellTimeoutSec
				}
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				out := map[string]any{"command": strings.TrimSpace(command), "timeout_sec": timeoutSec}
				if workingDir != "" {
					out["working_dir"] = workingDir
				}
				return out, nil
			},
		},
		{
			Name:        "shell_view",
			Description: "View the recent output of a shell session.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session": map[string]any{"type": "string"},
				},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				out := map[string]any{}
				if session, ok := r.optionalString("session"); ok && strings.TrimSpace(session) != "" {
					out["session"] = strings.TrimSpace(session)
				}
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return out, nil
			},
		},
		{
			Name:        "shell_kill",
			Description: "Terminate a running shell session and its process tree.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session": map[string]any{"type": "string"},
				},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				out := map[string]any{}
				if session, ok := r.optionalString("session"); ok && strings.TrimSpace(session) != "" {
					out["session"] = strings.TrimSpace(session)
				}
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return out, nil
			},
		},
	}
}
