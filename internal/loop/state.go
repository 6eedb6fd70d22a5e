// Package loop contains the decide/act/observe control loop: the shared
// agent state with its per-field merge semantics, the tool dispatcher, the
// result folder, and the graph executor that sequences them.
package loop

import (
	"github.com/floegence/operator-agent/internal/tools"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ContentPart is one piece of a turn: plain text or an inline image.
type ContentPart struct {
	Type     string `json:"type"` // text|image
	Text     string `json:"text,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Base64   string `json:"base64,omitempty"`
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

func ImagePart(mimeType string, base64Data string) ContentPart {
	return ContentPart{Type: "image", MimeType: mimeType, Base64: base64Data}
}

// Turn is one conversation entry. The conversation is append-only: turns are
// never truncated or reordered once merged.
type Turn struct {
	Role  string        `json:"role"`
	Parts []ContentPart `json:"parts"`
}

// Status is the latest human-readable progress report.
type Status struct {
	Message    string `json:"message"`
	StatusText string `json:"status_text"`
	Emoji      string `json:"emoji"`
}

// Observation is an opaque handle to the most recent visual observation.
type Observation struct {
	Source   string `json:"source"` // tool name that produced it
	MimeType string `json:"mime_type"`
	Base64   string `json:"base64"`
}

// ProposedCall is one operation suggested by the oracle.
type ProposedCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Proposal is the oracle's output for one turn: optional assistant text plus
// zero or more proposed calls. An empty call list routes the run to terminal.
type Proposal struct {
	Text  string         `json:"text,omitempty"`
	Calls []ProposedCall `json:"calls"`
}

// AgentState is the single shared record threaded through every iteration.
// It is owned exclusively by the executor; dispatch and fold receive
// read-only inputs and return new data.
type AgentState struct {
	Conversation    []Turn
	PendingProposal *Proposal
	LastObservation *Observation
	Status          *Status
	TaskList        []tools.TaskItem
}

func NewState() *AgentState {
	return &AgentState{}
}

// Delta is a partial state update. Absent fields mean "leave unchanged";
// TaskListSet distinguishes the empty task list from an absent one.
type Delta struct {
	Turns       []Turn
	Proposal    *Proposal
	Observation *Observation
	Status      *Status
	TaskList    []tools.TaskItem
	TaskListSet bool
}

// Merge folds a delta into the state with field-local reducers: the
// conversation concatenates, everything else is last-write-wins. Reducers
// never read other fields, so deltas may omit fields freely and each field
// applies atomically.
func (s *AgentState) Merge(d Delta) {
	if s == nil {
		return
	}
	if len(d.Turns) > 0 {
		s.Conversation = append(s.Conversation, d.Turns...)
	}
	if d.Proposal != nil {
		s.PendingProposal = d.Proposal
	}
	if d.Observation != nil {
		s.LastObservation = d.Observation
	}
	if d.Status != nil {
		s.Status = d.Status
	}
	if d.TaskListSet {
		s.TaskList = append([]tools.TaskItem(nil), d.TaskList...)
	}
}
