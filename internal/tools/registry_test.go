package tools

import (
	"sort"
	"testing"
)

func TestRegistry_ClosedSet(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	want := []string{
		"read_file", "write_file", "append_file", "str_replace", "delete_file",
		"move_file", "list_directory", "find_files", "grep_files", "write_report",
		"shell_exec", "shell_view", "shell_kill",
		"browser_navigate", "browser_click", "browser_input", "browser_scroll",
		"browser_screenshot", "browser_back",
		"computer",
		"message_update", "todo_write", "message_ask_user", "task_complete", "wait",
	}
	if r.Len() != len(want) {
		t.Fatalf("registry has %d tools, want %d", r.Len(), len(want))
	}
	for _, name := range want {
		if _, ok := r.Lookup(name); !ok {
			t.Fatalf("tool %q not registered", name)
		}
	}

	if _, ok := r.Lookup("not_a_real_tool"); ok {
		t.Fatalf("unknown tool unexpectedly registered")
	}
}

func TestRegistry_ValidateUnknownTool(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, violations := r.Validate("not_a_real_tool", map[string]any{})
	if len(violations) != 1 {
		t.Fatalf("expected exactly one violation, got %v", violations)
	}
}

func TestRegistry_SnapshotSorted(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	snap := r.Snapshot()
	if len(snap) != r.Len() {
		t.Fatalf("snapshot has %d entries, want %d", len(snap), r.Len())
	}
	names := make([]string, 0, len(snap))
	for _, c := range snap {
		if c.Name == "" || c.Description == "" || len(c.InputSchema) == 0 {
			t.Fatalf("incomplete contract: %+v", c)
		}
		names = append(names, c.Name)
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("snapshot not sorted: %v", names)
	}
}
