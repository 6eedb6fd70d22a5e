package oracle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/floegence/operator-agent/internal/loop"
)

func TestLoadScript(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "script.yaml")
	script := `steps:
  - text: "Checking the workspace first."
    calls:
      - name: list_directory
        args:
          path: /home/operator
  - calls:
      - name: message_update
        args:
          message: Scanning files
          status: Scanning files
          status_emoji: "🔍"
  - text: "All done."
`
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	s, err := LoadScript(path)
	if err != nil {
		t.Fatalf("load script: %v", err)
	}

	ctx := context.Background()

	first, err := s.Decide(ctx, nil)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if first.Text != "Checking the workspace first." || len(first.Calls) != 1 {
		t.Fatalf("unexpected first proposal: %+v", first)
	}
	if first.Calls[0].Name != "list_directory" || first.Calls[0].Args["path"] != "/home/operator" {
		t.Fatalf("unexpected first call: %+v", first.Calls[0])
	}
	if first.Calls[0].ID == "" {
		t.Fatalf("scripted calls should carry ids")
	}

	second, _ := s.Decide(ctx, nil)
	if len(second.Calls) != 1 || second.Calls[0].Name != "message_update" {
		t.Fatalf("unexpected second proposal: %+v", second)
	}

	third, _ := s.Decide(ctx, nil)
	if third.Text != "All done." || len(third.Calls) != 0 {
		t.Fatalf("unexpected third proposal: %+v", third)
	}

	// Exhausted scripts propose nothing.
	done, err := s.Decide(ctx, nil)
	if err != nil {
		t.Fatalf("decide after exhaustion: %v", err)
	}
	if done.Text != "" || len(done.Calls) != 0 {
		t.Fatalf("exhausted script should be empty: %+v", done)
	}
}

func TestLoadScript_Invalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("steps: []\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadScript(empty); err == nil {
		t.Fatalf("empty script should fail")
	}

	unnamed := filepath.Join(dir, "unnamed.yaml")
	if err := os.WriteFile(unnamed, []byte("steps:\n  - calls:\n      - args: {}\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadScript(unnamed); err == nil {
		t.Fatalf("call without a name should fail")
	}

	if _, err := LoadScript(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Fatalf("missing file should fail")
	}
	if _, err := LoadScript(""); err == nil {
		t.Fatalf("empty path should fail")
	}
}

func TestNewScripted(t *testing.T) {
	t.Parallel()

	s := NewScripted(
		loop.Proposal{Calls: []loop.ProposedCall{{Name: "browser_back", Args: map[string]any{}}}},
	)
	first, err := s.Decide(context.Background(), nil)
	if err != nil || len(first.Calls) != 1 {
		t.Fatalf("unexpected proposal: %+v err=%v", first, err)
	}
	second, _ := s.Decide(context.Background(), nil)
	if len(second.Calls) != 0 {
		t.Fatalf("expected exhaustion: %+v", second)
	}
}
