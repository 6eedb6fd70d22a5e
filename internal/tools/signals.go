package tools

import "strings"

const minFollowupEntries = 2

func signalContracts() []Contract {
	return []Contract{
		{
			Name:        "message_update",
			Description: "Report progress to the user. Replaces the status banner; does not end the run.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"message":      map[string]any{"type": "string"},
					"status":       map[string]any{"type": "string", "maxLength": 120},
					"status_emoji": map[string]any{"type": "string"},
				},
				"required":             []string{"message"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				message := r.requiredString("message")
				status, hasStatus := r.optionalString("status")
				emoji, hasEmoji := r.optionalString("status_emoji")
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				out := map[string]any{"message": strings.TrimSpace(message)}
				if hasStatus {
					out["status"] = strings.TrimSpace(status)
				}
				if hasEmoji {
					out["status_emoji"] = strings.TrimSpace(emoji)
				}
				return out, nil
			},
		},
		{
			Name:        "todo_write",
			Description: "Replace the task list snapshot. Keep at most one in_progress item.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"tasks": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"id":     map[string]any{"type": "string"},
								"title":  map[string]any{"type": "string"},
								"status": map[string]any{"type": "string", "enum": []string{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled}},
							},
							"required":             []string{"title", "status"},
							"additionalProperties": false,
						},
					},
				},
				"required":             []string{"tasks"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				raw, ok := args["tasks"]
				if !ok {
					return nil, []string{"missing required field: tasks"}
				}
				items, violations := DecodeTaskItems(raw)
				if len(violations) > 0 {
					return nil, violations
				}
				normalized := make([]any, 0, len(items))
				for _, item := range items {
					normalized = append(normalized, map[string]any{"id": item.ID, "title": item.Title, "status": item.Status})
				}
				return map[string]any{"tasks": normalized}, nil
			},
		},
		{
			Name:        "message_ask_user",
			Description: "Ask the user a clarifying question. Provide options only when there is a real choice to make.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{"type": "string"},
					"options":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required":             []string{"question"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				question := r.requiredString("question")
				var options []string
				if r.has("options") {
					options = r.decodeStringSlice("options", r.args["options"])
					if len(r.violations) == 0 && len(options) < minFollowupEntries {
						r.fail("field options needs at least %d entries", minFollowupEntries)
					}
				}
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				out := map[string]any{"question": strings.TrimSpace(question)}
				if len(options) > 0 {
					out["options"] = options
				}
				return out, nil
			},
		},
		{
			Name:        "task_complete",
			Description: "Signal that the task is done. Supply exactly one follow-up shape: followup_questions or followup_options.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"summary":            map[string]any{"type": "string"},
					"followup_questions": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"followup_options":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required":             []string{"summary"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				summary := r.requiredString("summary")
				hasQuestions := r.has("followup_questions")
				hasOptions := r.has("followup_options")
				if hasQuestions && hasOptions {
					r.fail("followup_questions and followup_options are mutually exclusive")
				}
				if !hasQuestions && !hasOptions {
					r.fail("one of followup_questions or followup_options is required")
				}
				var followups []string
				followupKey := ""
				if hasQuestions != hasOptions {
					followupKey = "followup_questions"
					if hasOptions {
						followupKey = "followup_options"
					}
					followups = r.decodeStringSlice(followupKey, r.args[followupKey])
					if len(r.violations) == 0 && len(followups) < minFollowupEntries {
						r.fail("field %s needs at least %d entries", followupKey, minFollowupEntries)
					}
				}
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return map[string]any{"summary": strings.TrimSpace(summary), followupKey: followups}, nil
			},
		},
		{
			Name:        "wait",
			Description: "Pause the run for a bounded number of seconds, e.g. while a page loads.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"duration_sec": map[string]any{"type": "number", "minimum": 0, "maximum": 300},
				},
				"required":             []string{"duration_sec"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				duration, ok := r.requiredNumber("duration_sec")
				if ok && (duration <= 0 || duration > 300) {
					r.fail("field duration_sec must be in (0, 300]")
				}
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return map[string]any{"duration_sec": duration}, nil
			},
		},
	}
}
