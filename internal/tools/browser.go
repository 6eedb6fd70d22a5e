package tools

import (
	"net/url"
	"strings"
)

func coordinateSchema() map[string]any {
	return map[string]any{
		"type":     "array",
		"items":    map[string]any{"type": "number"},
		"minItems": 2,
		"maxItems": 2,
	}
}

func browserContracts() []Contract {
	return []Contract{
		{
			Name:        "browser_navigate",
			Description: "Navigate the managed browser tab to a http(s) URL.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{"type": "string"},
				},
				"required":             []string{"url"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				raw := r.requiredString("url")
				if raw != "" {
					u, err := url.Parse(strings.TrimSpace(raw))
					if err != nil || u.Host == "" {
						r.fail("field url must be a valid URL")
					} else {
						switch strings.ToLower(u.Scheme) {
						case "http", "https":
						default:
							r.fail("field url must use http or https")
						}
					}
				}
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return map[string]any{"url": strings.TrimSpace(raw)}, nil
			},
		},
		{
			Name:        "browser_click",
			Description: "Click at a screen coordinate inside the browser viewport.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"coordinate": coordinateSchema(),
				},
				"required":             []string{"coordinate"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				coord, _ := r.requiredCoordinate("coordinate")
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return map[string]any{"coordinate": []any{coord.X, coord.Y}}, nil
			},
		},
		{
			Name:        "browser_input",
			Description: "Click a coordinate, type text into the focused element, and optionally press Enter.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"coordinate":  coordinateSchema(),
					"text":        map[string]any{"type": "string"},
					"press_enter": map[string]any{"type": "boolean"},
				},
				"required":             []string{"coordinate", "text"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				coord, _ := r.requiredCoordinate("coordinate")
				text := r.requiredString("text")
				pressEnter, hasEnter := r.optionalBool("press_enter")
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				out := map[string]any{"coordinate": []any{coord.X, coord.Y}, "text": text}
				if hasEnter {
					out["press_enter"] = pressEnter
				}
				return out, nil
			},
		},
		{
			Name:        "browser_scroll",
			Description: "Scroll the browser viewport. Both direction and amount are required.",
			InputSchema: toSchema(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"direction": map[string]any{"type": "string", "enum": []string{"up", "down"}},
					"amount":    map[string]any{"type": "integer", "minimum": 0},
				},
				"required":             []string{"direction", "amount"},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				r := newArgReader(args)
				direction := strings.ToLower(strings.TrimSpace(r.requiredString("direction")))
				switch direction {
				case "", "up", "down":
				default:
					r.fail("field direction must be up or down")
				}
				amount, hasAmount := r.requiredNumber("amount")
				if hasAmount && amount < 0 {
					r.fail("field amount must be >= 0")
				}
				if len(r.violations) > 0 {
					return nil, r.violations
				}
				return map[string]any{"direction": direction, "amount": amount}, nil
			},
		},
		{
			Name:        "browser_screenshot",
			Description: "Capture a screenshot of the browser viewport.",
			InputSchema: toSchema(map[string]any{
				"type":                 "object",
				"properties":           map[string]any{},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				return map[string]any{}, nil
			},
		},
		{
			Name:        "browser_back",
			Description: "Go back one entry in the browser history.",
			InputSchema: toSchema(map[string]any{
				"type":                 "object",
				"properties":           map[string]any{},
				"additionalProperties": false,
			}),
			validate: func(args map[string]any) (map[string]any, []string) {
				return map[string]any{}, nil
			},
		},
	}
}
