// Package oracle implements the decision collaborator: providers that turn
// the accumulated conversation into a proposal of zero-or-more tool calls.
package oracle

import (
	"encoding/json"
	"strings"

	"github.com/floegence/operator-agent/internal/tools"
)

const defaultMaxOutputTokens = 8192

// toolSurface is the provider-neutral description of one operation sent to
// the model.
type toolSurface struct {
	Name        string
	Description string
	Properties  any
	Required    []string
	Schema      map[string]any
}

// buildToolSurfaces converts registry contracts into the wire shape both
// providers consume.
func buildToolSurfaces(registry *tools.Registry) []toolSurface {
	if registry == nil {
		return nil
	}
	contracts := registry.Snapshot()
	out := make([]toolSurface, 0, len(contracts))
	for _, contract := range contracts {
		schema := map[string]any{}
		if len(contract.InputSchema) > 0 {
			_ = json.Unmarshal(contract.InputSchema, &schema)
		}
		required := make([]string, 0, 4)
		if rawRequired, ok := schema["required"].([]any); ok {
			for _, item := range rawRequired {
				if name, ok := item.(string); ok && strings.TrimSpace(name) != "" {
					required = append(required, strings.TrimSpace(name))
				}
			}
		}
		out = append(out, toolSurface{
			Name:        contract.Name,
			Description: contract.Description,
			Properties:  schema["properties"],
			Required:    required,
			Schema:      schema,
		})
	}
	return out
}
