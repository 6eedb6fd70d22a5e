package loop

import (
	"strings"
	"testing"

	"github.com/floegence/operator-agent/internal/tools"
)

func TestFold_MessageUpdateSetsStatusOnly(t *testing.T) {
	t.Parallel()

	delta := Fold([]ToolOutcome{{
		ToolName: "message_update",
		Input: map[string]any{
			"message":      "Scanning files",
			"status":       "Scanning files",
			"status_emoji": "🔍",
		},
		Result: map[string]any{"ok": true},
	}})

	if delta.Status == nil {
		t.Fatalf("expected status delta")
	}
	if delta.Status.Message != "Scanning files" || delta.Status.StatusText != "Scanning files" || delta.Status.Emoji != "🔍" {
		t.Fatalf("unexpected status: %+v", delta.Status)
	}
	if len(delta.Turns) != 0 {
		t.Fatalf("message_update must not add conversation turns: %+v", delta.Turns)
	}
	if delta.Observation != nil || delta.TaskListSet {
		t.Fatalf("message_update must only touch status: %+v", delta)
	}
}

func TestFold_StatusComesFromInputNotResult(t *testing.T) {
	t.Parallel()

	delta := Fold([]ToolOutcome{{
		ToolName: "message_update",
		Input:    map[string]any{"message": "from input"},
		Result:   map[string]any{"message": "from result"},
	}})
	if delta.Status == nil || delta.Status.Message != "from input" {
		t.Fatalf("status must come from the call input: %+v", delta.Status)
	}
}

func TestFold_TodoWriteReplacesTaskList(t *testing.T) {
	t.Parallel()

	delta := Fold([]ToolOutcome{{
		ToolName: "todo_write",
		Input: map[string]any{
			"tasks": []any{
				map[string]any{"id": "a", "title": "first", "status": "completed"},
				map[string]any{"id": "b", "title": "second", "status": "in_progress"},
			},
		},
		Result: map[string]any{"ok": true},
	}})

	if !delta.TaskListSet {
		t.Fatalf("expected task list delta")
	}
	if len(delta.TaskList) != 2 {
		t.Fatalf("unexpected task list: %+v", delta.TaskList)
	}
	if delta.TaskList[1].Status != tools.TaskStatusInProgress {
		t.Fatalf("unexpected second task: %+v", delta.TaskList[1])
	}
}

func TestFold_RejectedCallLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	state := NewState()
	state.Merge(Delta{Status: &Status{Message: "working", StatusText: "working", Emoji: "🔧"}})

	delta := Fold([]ToolOutcome{
		errorOutcome("message_update", map[string]any{"status_emoji": "🔍"}, "missing required field: message"),
		errorOutcome("todo_write", map[string]any{}, "missing required field: tasks"),
	})
	if delta.Status != nil {
		t.Fatalf("rejected message_update must not produce a status delta: %+v", delta.Status)
	}
	if delta.TaskListSet {
		t.Fatalf("rejected todo_write must not touch the task list")
	}

	state.Merge(delta)
	if state.Status == nil || state.Status.Message != "working" || state.Status.Emoji != "🔧" {
		t.Fatalf("existing banner must survive a rejected call: %+v", state.Status)
	}
}

func TestResultTurns_SkipsStateOnlyOutcomes(t *testing.T) {
	t.Parallel()

	turns := resultTurns([]ToolOutcome{
		{
			ToolName: "message_update",
			Input:    map[string]any{"message": "Scanning files"},
			Result:   map[string]any{"ok": true},
		},
		{
			ToolName: "todo_write",
			Input:    map[string]any{"tasks": []any{map[string]any{"title": "first", "status": "pending"}}},
			Result:   map[string]any{"ok": true},
		},
		{
			ToolName: "shell_exec",
			Input:    map[string]any{"command": "ls"},
			Result:   map[string]any{"stdout": "a.txt\n"},
		},
	})
	if len(turns) != 1 {
		t.Fatalf("expected one compact turn, got %+v", turns)
	}
	text := turns[0].Parts[0].Text
	if !strings.Contains(text, "[shell_exec]") {
		t.Fatalf("plain result missing from turn: %q", text)
	}
	if strings.Contains(text, "message_update") || strings.Contains(text, "todo_write") {
		t.Fatalf("state-only outcomes must not echo into the conversation: %q", text)
	}
}

func TestResultTurns_KeepsErrorDocuments(t *testing.T) {
	t.Parallel()

	turns := resultTurns([]ToolOutcome{
		errorOutcome("message_update", map[string]any{"status_emoji": "🔍"}, "missing required field: message"),
	})
	if len(turns) != 1 {
		t.Fatalf("a rejected call's error document must reach the oracle, got %+v", turns)
	}
	text := turns[0].Parts[0].Text
	if !strings.Contains(text, "missing required field: message") {
		t.Fatalf("error document missing from turn: %q", text)
	}
}

func TestFold_ImageResultBecomesObservation(t *testing.T) {
	t.Parallel()

	delta := Fold([]ToolOutcome{{
		ToolName: "computer",
		Input:    map[string]any{"action": "screenshot"},
		Result: map[string]any{
			"image": map[string]any{"media_type": "image/png", "base64": "aGVsbG8="},
		},
	}})

	if delta.Observation == nil {
		t.Fatalf("expected observation delta")
	}
	if delta.Observation.Source != "computer" || delta.Observation.Base64 != "aGVsbG8=" {
		t.Fatalf("unexpected observation: %+v", delta.Observation)
	}
	if len(delta.Turns) != 1 {
		t.Fatalf("expected one observation turn, got %d", len(delta.Turns))
	}
	turn := delta.Turns[0]
	if turn.Role != RoleTool || len(turn.Parts) != 2 {
		t.Fatalf("unexpected observation turn: %+v", turn)
	}
	if turn.Parts[0].Text != "Screen after computer screenshot" {
		t.Fatalf("unexpected caption: %q", turn.Parts[0].Text)
	}
	if turn.Parts[1].Type != "image" || turn.Parts[1].MimeType != "image/png" {
		t.Fatalf("unexpected image part: %+v", turn.Parts[1])
	}
}

func TestFold_ImageMissingBase64Ignored(t *testing.T) {
	t.Parallel()

	delta := Fold([]ToolOutcome{{
		ToolName: "browser_screenshot",
		Input:    map[string]any{},
		Result:   map[string]any{"image": map[string]any{"media_type": "image/png"}},
	}})
	if delta.Observation != nil || len(delta.Turns) != 0 {
		t.Fatalf("image without base64 must contribute nothing: %+v", delta)
	}
}

func TestFold_PlainResultContributesNothing(t *testing.T) {
	t.Parallel()

	delta := Fold([]ToolOutcome{{
		ToolName: "shell_exec",
		Input:    map[string]any{"command": "ls"},
		Result:   map[string]any{"stdout": "a.txt\n", "exit_code": float64(0)},
	}})
	if delta.Status != nil || delta.Observation != nil || delta.TaskListSet || len(delta.Turns) != 0 {
		t.Fatalf("plain result should yield an empty delta: %+v", delta)
	}
}

func TestFold_LastObservationWinsWithinBatch(t *testing.T) {
	t.Parallel()

	delta := Fold([]ToolOutcome{
		{
			ToolName: "computer",
			Input:    map[string]any{"action": "screenshot"},
			Result:   map[string]any{"image": map[string]any{"base64": "first"}},
		},
		{
			ToolName: "browser_screenshot",
			Input:    map[string]any{},
			Result:   map[string]any{"image": map[string]any{"base64": "second"}},
		},
	})
	if delta.Observation == nil || delta.Observation.Base64 != "second" {
		t.Fatalf("batch order should decide the winning observation: %+v", delta.Observation)
	}
	if len(delta.Turns) != 2 {
		t.Fatalf("each observation still gets its turn: %+v", delta.Turns)
	}
}
