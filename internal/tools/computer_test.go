package tools

import (
	"math"
	"testing"
)

func validateTool(t *testing.T, name string, args map[string]any) (map[string]any, []string) {
	t.Helper()
	r := NewRegistry()
	c, ok := r.Lookup(name)
	if !ok {
		t.Fatalf("tool %q not registered", name)
	}
	return c.Validate(args)
}

func TestComputer_CoordinateBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		coord []any
		valid bool
	}{
		{"origin", []any{float64(0), float64(0)}, true},
		{"interior", []any{float64(512), float64(400)}, true},
		{"max corner inclusive", []any{float64(1024), float64(768)}, true},
		{"x out of range", []any{float64(1025), float64(10)}, false},
		{"y out of range", []any{float64(10), float64(769)}, false},
		{"negative x", []any{float64(-1), float64(0)}, false},
		{"nan x", []any{math.NaN(), float64(0)}, false},
		{"nan y", []any{float64(0), math.NaN()}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out, violations := validateTool(t, "computer", map[string]any{
				"action":     "left_click",
				"coordinate": tc.coord,
			})
			if tc.valid {
				if len(violations) != 0 {
					t.Fatalf("expected valid, got violations: %v", violations)
				}
				if out["coordinate"] == nil {
					t.Fatalf("normalized args missing coordinate: %v", out)
				}
				return
			}
			if len(violations) == 0 {
				t.Fatalf("expected violations for coordinate %v", tc.coord)
			}
		})
	}
}

func TestComputer_PointerActionsRequireCoordinate(t *testing.T) {
	t.Parallel()

	for _, action := range []string{"left_click", "right_click", "middle_click", "double_click", "mouse_move"} {
		_, violations := validateTool(t, "computer", map[string]any{"action": action})
		if len(violations) == 0 {
			t.Fatalf("action %q without coordinate should fail", action)
		}
	}
}

func TestComputer_DragRequiresBothEndpoints(t *testing.T) {
	t.Parallel()

	_, violations := validateTool(t, "computer", map[string]any{
		"action":     "left_click_drag",
		"coordinate": []any{float64(10), float64(10)},
	})
	if len(violations) == 0 {
		t.Fatalf("drag without start_coordinate should fail")
	}

	out, violations := validateTool(t, "computer", map[string]any{
		"action":           "left_click_drag",
		"start_coordinate": []any{float64(1), float64(2)},
		"coordinate":       []any{float64(3), float64(4)},
	})
	if len(violations) != 0 {
		t.Fatalf("valid drag rejected: %v", violations)
	}
	if out["start_coordinate"] == nil || out["coordinate"] == nil {
		t.Fatalf("drag endpoints missing from normalized args: %v", out)
	}
}

func TestComputer_ScrollRequiresDirectionAndAmount(t *testing.T) {
	t.Parallel()

	_, violations := validateTool(t, "computer", map[string]any{
		"action":           "scroll",
		"scroll_direction": "down",
	})
	if len(violations) == 0 {
		t.Fatalf("scroll without scroll_amount should fail")
	}

	_, violations = validateTool(t, "computer", map[string]any{
		"action":        "scroll",
		"scroll_amount": float64(3),
	})
	if len(violations) == 0 {
		t.Fatalf("scroll without scroll_direction should fail")
	}

	_, violations = validateTool(t, "computer", map[string]any{
		"action":           "scroll",
		"scroll_direction": "sideways",
		"scroll_amount":    float64(3),
	})
	if len(violations) == 0 {
		t.Fatalf("invalid scroll_direction should fail")
	}

	out, violations := validateTool(t, "computer", map[string]any{
		"action":           "scroll",
		"scroll_direction": "down",
		"scroll_amount":    float64(3),
	})
	if len(violations) != 0 {
		t.Fatalf("valid scroll rejected: %v", violations)
	}
	if out["scroll_direction"] != "down" {
		t.Fatalf("unexpected normalized scroll args: %v", out)
	}
}

func TestComputer_KeyAndTypeRequireText(t *testing.T) {
	t.Parallel()

	for _, action := range []string{"key", "type"} {
		_, violations := validateTool(t, "computer", map[string]any{"action": action})
		if len(violations) == 0 {
			t.Fatalf("action %q without text should fail", action)
		}
	}

	out, violations := validateTool(t, "computer", map[string]any{"action": "key", "text": "Return"})
	if len(violations) != 0 {
		t.Fatalf("valid key action rejected: %v", violations)
	}
	if out["text"] != "Return" {
		t.Fatalf("unexpected text: %v", out)
	}
}

func TestComputer_WaitDuration(t *testing.T) {
	t.Parallel()

	_, violations := validateTool(t, "computer", map[string]any{"action": "wait"})
	if len(violations) == 0 {
		t.Fatalf("wait without duration should fail")
	}

	_, violations = validateTool(t, "computer", map[string]any{"action": "wait", "duration": float64(0)})
	if len(violations) == 0 {
		t.Fatalf("zero duration should fail")
	}

	_, violations = validateTool(t, "computer", map[string]any{"action": "wait", "duration": float64(101)})
	if len(violations) == 0 {
		t.Fatalf("duration above the cap should fail")
	}

	if _, violations := validateTool(t, "computer", map[string]any{"action": "wait", "duration": float64(2)}); len(violations) != 0 {
		t.Fatalf("valid wait rejected: %v", violations)
	}
}

func TestComputer_HoldKeyRequiresTextAndDuration(t *testing.T) {
	t.Parallel()

	_, violations := validateTool(t, "computer", map[string]any{"action": "hold_key", "text": "shift"})
	if len(violations) == 0 {
		t.Fatalf("hold_key without duration should fail")
	}

	if _, violations := validateTool(t, "computer", map[string]any{"action": "hold_key", "text": "shift", "duration": float64(1)}); len(violations) != 0 {
		t.Fatalf("valid hold_key rejected: %v", violations)
	}
}

func TestComputer_ObservationActions(t *testing.T) {
	t.Parallel()

	for _, action := range []string{"screenshot", "cursor_position"} {
		out, violations := validateTool(t, "computer", map[string]any{"action": action})
		if len(violations) != 0 {
			t.Fatalf("action %q rejected: %v", action, violations)
		}
		if out["action"] != action {
			t.Fatalf("unexpected normalized action: %v", out)
		}
	}
}

func TestComputer_UnknownAction(t *testing.T) {
	t.Parallel()

	_, violations := validateTool(t, "computer", map[string]any{"action": "teleport"})
	if len(violations) == 0 {
		t.Fatalf("unknown action should fail")
	}
}
