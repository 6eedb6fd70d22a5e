package tools

import "strings"

const (
	maxWaitDurationSec = 100

	// Pointer and drag actions.
	actionLeftClick     = "left_click"
	actionRightClick    = "right_click"
	actionMiddleClick   = "middle_click"
	actionDoubleClick   = "double_click"
	actionMouseMove     = "mouse_move"
	actionLeftClickDrag = "left_click_drag"

	// Keyboard and timing actions.
	actionKey     = "key"
	actionType    = "type"
	actionHoldKey = "hold_key"
	actionWait    = "wait"

	// Observation actions.
	actionScreenshot     = "screenshot"
	actionCursorPosition = "cursor_position"

	actionScroll = "scroll"
)

var pointerActions = map[string]struct{}{
	actionLeftClick:   {},
	actionRightClick:  {},
	actionMiddleClick: {},
	actionDoubleClick: {},
	actionMouseMove:   {},
}

var scrollDirections = map[string]struct{}{
	"up":    {},
	"down":  {},
	"left":  {},
	"right": {},
}

// computerContract declares the screen-interaction operation. The action
// field is the discriminant; each action carries its own requirement set and
// violating any applicable rule fails validation.
func computerContract() Contract {
	return Contract{
		Name:        "computer",
		Description: "Interact with the screen, keyboard, and mouse of the 1024x768 virtual display. Take a screenshot after actions that change what is visible.",
		InputSchema: toSchema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"action": map[string]any{"type": "string", "enum": []string{
					actionScreenshot, actionCursorPosition,
					actionLeftClick, actionRightClick, actionMiddleClick, actionDoubleClick,
					actionMouseMove, actionLeftClickDrag,
					actionScroll, actionKey, actionType, actionHoldKey, actionWait,
				}},
				"coordinate":       coordinateSchema(),
				"start_coordinate": coordinateSchema(),
				"scroll_direction": map[string]any{"type": "string", "enum": []string{"up", "down", "left", "right"}},
				"scroll_amount":    map[string]any{"type": "integer", "minimum": 0},
				"text":             map[string]any{"type": "string"},
				"duration":         map[string]any{"type": "number", "minimum": 0, "maximum": maxWaitDurationSec},
			},
			"required":             []string{"action"},
			"additionalProperties": false,
		}),
		validate: validateComputerArgs,
	}
}

func validateComputerArgs(args map[string]any) (map[string]any, []string) {
	r := newArgReader(args)
	action := strings.ToLower(strings.TrimSpace(r.requiredString("action")))
	if action == "" {
		return nil, r.violations
	}
	out := map[string]any{"action": action}

	switch action {
	case actionScreenshot, actionCursorPosition:
		// No additional requirements.

	case actionLeftClickDrag:
		if start, ok := r.requiredCoordinate("start_coordinate"); ok {
			out["start_coordinate"] = []any{start.X, start.Y}
		}
		if coord, ok := r.requiredCoordinate("coordinate"); ok {
			out["coordinate"] = []any{coord.X, coord.Y}
		}

	case actionScroll:
		direction := strings.ToLower(strings.TrimSpace(r.requiredString("scroll_direction")))
		if direction != "" {
			if _, ok := scrollDirections[direction]; !ok {
				r.fail("field scroll_direction must be one of up, down, left, right")
			} else {
				out["scroll_direction"] = direction
			}
		}
		amount, ok := r.requiredNumber("scroll_amount")
		if ok {
			if amount < 0 {
				r.fail("field scroll_amount must be >= 0")
			} else {
				out["scroll_amount"] = amount
			}
		}
		if coord, ok := r.args["coordinate"]; ok {
			if c, valid := r.decodeCoordinate("coordinate", coord); valid {
				out["coordinate"] = []any{c.X, c.Y}
			}
		}

	case actionKey, actionType:
		out["text"] = r.requiredString("text")

	case actionHoldKey:
		out["text"] = r.requiredString("text")
		if duration, ok := r.requiredNumber("duration"); ok {
			if duration <= 0 || duration > maxWaitDurationSec {
				r.fail("field duration must be in (0, %d]", maxWaitDurationSec)
			} else {
				out["duration"] = duration
			}
		}

	case actionWait:
		if duration, ok := r.requiredNumber("duration"); ok {
			if duration <= 0 || duration > maxWaitDurationSec {
				r.fail("field duration must be in (0, %d]", maxWaitDurationSec)
			} else {
				out["duration"] = duration
			}
		}

	default:
		if _, ok := pointerActions[action]; !ok {
			r.fail("unknown action %q", action)
			break
		}
		if coord, ok := r.requiredCoordinate("coordinate"); ok {
			out["coordinate"] = []any{coord.X, coord.Y}
		}
	}

	if len(r.violations) > 0 {
		return nil, r.violations
	}
	return out, nil
}
