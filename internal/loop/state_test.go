package loop

import (
	"testing"

	"github.com/floegence/operator-agent/internal/tools"
)

func TestMerge_ConversationAppendOnly(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.Merge(Delta{Turns: []Turn{{Role: RoleUser, Parts: []ContentPart{TextPart("first")}}}})
	s.Merge(Delta{Turns: []Turn{{Role: RoleAssistant, Parts: []ContentPart{TextPart("second")}}}})
	s.Merge(Delta{Status: &Status{Message: "no turns here"}})

	if len(s.Conversation) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(s.Conversation))
	}
	if s.Conversation[0].Parts[0].Text != "first" || s.Conversation[1].Parts[0].Text != "second" {
		t.Fatalf("turn order broken: %+v", s.Conversation)
	}
}

func TestMerge_LastWriteWins(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.Merge(Delta{Status: &Status{Message: "one"}})
	s.Merge(Delta{Status: &Status{Message: "two"}})
	if s.Status == nil || s.Status.Message != "two" {
		t.Fatalf("status not last-write-wins: %+v", s.Status)
	}

	s.Merge(Delta{Observation: &Observation{Source: "computer", Base64: "aaa"}})
	s.Merge(Delta{Observation: &Observation{Source: "browser_screenshot", Base64: "bbb"}})
	if s.LastObservation == nil || s.LastObservation.Source != "browser_screenshot" {
		t.Fatalf("observation not last-write-wins: %+v", s.LastObservation)
	}
}

func TestMerge_AbsentFieldsUnchanged(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.Merge(Delta{Status: &Status{Message: "keep me"}})
	s.Merge(Delta{Turns: []Turn{{Role: RoleUser, Parts: []ContentPart{TextPart("hello")}}}})

	if s.Status == nil || s.Status.Message != "keep me" {
		t.Fatalf("absent status field should leave status unchanged: %+v", s.Status)
	}
	if s.LastObservation != nil {
		t.Fatalf("observation should stay nil")
	}
}

func TestMerge_TaskListSetDistinguishesEmpty(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.Merge(Delta{TaskList: []tools.TaskItem{{ID: "a", Title: "one", Status: tools.TaskStatusPending}}, TaskListSet: true})
	if len(s.TaskList) != 1 {
		t.Fatalf("task list not set: %+v", s.TaskList)
	}

	// Absent task list leaves the previous snapshot alone.
	s.Merge(Delta{Status: &Status{Message: "x"}})
	if len(s.TaskList) != 1 {
		t.Fatalf("task list should be unchanged: %+v", s.TaskList)
	}

	// A set-but-empty task list clears it.
	s.Merge(Delta{TaskList: nil, TaskListSet: true})
	if len(s.TaskList) != 0 {
		t.Fatalf("expected cleared task list, got %#v", s.TaskList)
	}
}
