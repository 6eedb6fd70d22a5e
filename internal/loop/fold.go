package loop

import (
	"fmt"
	"strings"

	"github.com/floegence/operator-agent/internal/tools"
)

// Fold maps a batch of outcomes to a state delta. It is a pure function:
// rules apply independently per outcome, in batch order, and outcomes that
// match no rule contribute nothing (the executor feeds those back to the
// oracle as compact result turns). Failure outcomes never fold: a rejected
// call has no state effect, only its error document goes back to the oracle.
func Fold(outcomes []ToolOutcome) Delta {
	var delta Delta
	for _, outcome := range outcomes {
		if outcome.IsFailure() {
			continue
		}
		switch outcome.ToolName {
		case "message_update":
			delta.Status = statusFromInput(outcome.Input)
		case "todo_write":
			if items, violations := tools.DecodeTaskItems(outcome.Input["tasks"]); len(violations) == 0 {
				delta.TaskList = items
				delta.TaskListSet = true
			}
		default:
			if obs, ok := observationFromOutcome(outcome); ok {
				delta.Observation = obs
				delta.Turns = append(delta.Turns, observationTurn(outcome, obs))
			}
		}
	}
	return delta
}

// foldsToState reports whether Fold consumed the outcome entirely, leaving
// nothing for the conversation. Error documents always go back to the oracle.
func foldsToState(outcome ToolOutcome) bool {
	if outcome.IsFailure() {
		return false
	}
	switch outcome.ToolName {
	case "message_update", "todo_write":
		return true
	}
	return false
}

// statusFromInput builds the status banner from the call's input, not its
// result: the report is what the oracle said, regardless of what the
// environment echoed back.
func statusFromInput(input map[string]any) *Status {
	message, _ := input["message"].(string)
	statusText, _ := input["status"].(string)
	emoji, _ := input["status_emoji"].(string)
	return &Status{
		Message:    strings.TrimSpace(message),
		StatusText: strings.TrimSpace(statusText),
		Emoji:      strings.TrimSpace(emoji),
	}
}

// observationFromOutcome extracts an inline image payload, when present.
// Screen-interaction results carry {"image": {"media_type", "base64"}}.
func observationFromOutcome(outcome ToolOutcome) (*Observation, bool) {
	img, ok := outcome.Result["image"].(map[string]any)
	if !ok {
		return nil, false
	}
	data, _ := img["base64"].(string)
	if strings.TrimSpace(data) == "" {
		return nil, false
	}
	mimeType, _ := img["media_type"].(string)
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/png"
	}
	return &Observation{Source: outcome.ToolName, MimeType: mimeType, Base64: data}, true
}

// observationTurn pairs a short caption naming the preceding action with the
// inline image so the oracle can ground its next decision visually.
func observationTurn(outcome ToolOutcome, obs *Observation) Turn {
	return Turn{
		Role: RoleTool,
		Parts: []ContentPart{
			TextPart(observationCaption(outcome)),
			ImagePart(obs.MimeType, obs.Base64),
		},
	}
}

func observationCaption(outcome ToolOutcome) string {
	action, _ := outcome.Input["action"].(string)
	action = strings.TrimSpace(action)
	if action != "" {
		return fmt.Sprintf("Screen after %s %s", outcome.ToolName, action)
	}
	return fmt.Sprintf("Screen after %s", outcome.ToolName)
}
