package tools

import "testing"

func TestShellExec_CommandPrefixPolicy(t *testing.T) {
	t.Parallel()

	blocked := []string{
		"alias ll='ls -la'",
		"cd /tmp",
		"exit 1",
		"export FOO=bar",
		"history -c",
		"source ~/.bashrc",
		"unset PATH",
		"  cd /home/operator",
	}
	for _, cmd := range blocked {
		if _, violations := validateTool(t, "shell_exec", map[string]any{"command": cmd}); len(violations) == 0 {
			t.Fatalf("command %q should be blocked", cmd)
		}
	}

	allowed := []string{
		"ls -la /home/operator",
		"python3 script.py",
		"FOO=bar python3 script.py",
		"grep -r cdata .",
		"echo exit",
	}
	for _, cmd := range allowed {
		if _, violations := validateTool(t, "shell_exec", map[string]any{"command": cmd}); len(violations) != 0 {
			t.Fatalf("command %q rejected: %v", cmd, violations)
		}
	}
}

func TestShellExec_TimeoutBounds(t *testing.T) {
	t.Parallel()

	out, violations := validateTool(t, "shell_exec", map[string]any{"command": "ls"})
	if len(violations) != 0 {
		t.Fatalf("valid shell_exec rejected: %v", violations)
	}
	if out["timeout_sec"] != defaultShellTimeoutSec {
		t.Fatalf("expected default timeout %d, got %v", defaultShellTimeoutSec, out["timeout_sec"])
	}

	if _, violations := validateTool(t, "shell_exec", map[string]any{
		"command":     "ls",
		"timeout_sec": float64(maxShellTimeoutSec + 1),
	}); len(violations) == 0 {
		t.Fatalf("timeout above max should fail")
	}
}

func TestShellExec_WorkingDirMustBeAllowed(t *testing.T) {
	t.Parallel()

	if _, violations := validateTool(t, "shell_exec", map[string]any{
		"command":     "ls",
		"working_dir": "/etc",
	}); len(violations) == 0 {
		t.Fatalf("working_dir outside roots should fail")
	}

	if _, violations := validateTool(t, "shell_exec", map[string]any{
		"command":     "ls",
		"working_dir": "/home/operator/project",
	}); len(violations) != 0 {
		t.Fatalf("valid working_dir rejected: %v", violations)
	}
}

func TestShellViewAndKill(t *testing.T) {
	t.Parallel()

	// Session is optional; the environment defaults to the primary session.
	if _, violations := validateTool(t, "shell_view", map[string]any{}); len(violations) != 0 {
		t.Fatalf("shell_view without session rejected: %v", violations)
	}

	out, violations := validateTool(t, "shell_view", map[string]any{"session": " sess_1 "})
	if len(violations) != 0 {
		t.Fatalf("valid shell_view rejected: %v", violations)
	}
	if out["session"] != "sess_1" {
		t.Fatalf("session not trimmed: %v", out)
	}
	if _, violations := validateTool(t, "shell_kill", map[string]any{"session": "sess_1"}); len(violations) != 0 {
		t.Fatalf("valid shell_kill rejected: %v", violations)
	}
}

func TestIsEnvAssignment(t *testing.T) {
	t.Parallel()

	if !isEnvAssignment("FOO=bar") {
		t.Fatalf("FOO=bar should be an env assignment")
	}
	if isEnvAssignment("=bar") {
		t.Fatalf("=bar is not a valid assignment")
	}
	if isEnvAssignment("ls") {
		t.Fatalf("ls is not an assignment")
	}
}
