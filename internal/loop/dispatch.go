package loop

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/floegence/operator-agent/internal/envclient"
	"github.com/floegence/operator-agent/internal/tools"
)

// resultStatusFailure marks the structured error document returned to the
// oracle in place of a real result.
const resultStatusFailure = "FAILURE"

// rawResultKey wraps environment output that did not decode as a JSON
// object. The original text is preserved verbatim.
const rawResultKey = "raw"

const defaultDispatchParallelism = 2

// Environment performs one named operation and returns its raw result.
// envclient.Client is the production implementation.
type Environment interface {
	Execute(ctx context.Context, toolName string, input map[string]any) (json.RawMessage, error)
}

// ToolOutcome is the result of dispatching one call. Result is either the
// decoded result document, a {raw: ...} fallback, or a structured error
// document; it is never nil for an emitted outcome.
type ToolOutcome struct {
	ToolName string
	Input    map[string]any
	Result   map[string]any
}

// IsFailure reports whether the outcome carries the structured error shape.
func (o ToolOutcome) IsFailure() bool {
	status, _ := o.Result["status"].(string)
	return status == resultStatusFailure
}

// Dispatcher turns accepted proposed calls into outcomes. It holds no state
// between calls; one bad call never aborts the batch.
type Dispatcher struct {
	registry    *tools.Registry
	env         Environment
	log         *slog.Logger
	parallelism int
}

func NewDispatcher(registry *tools.Registry, env Environment, log *slog.Logger) (*Dispatcher, error) {
	if registry == nil {
		return nil, errors.New("nil tool registry")
	}
	if env == nil {
		return nil, errors.New("nil environment")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{registry: registry, env: env, log: log, parallelism: defaultDispatchParallelism}, nil
}

// Dispatch resolves, validates, and executes one call. The second return is
// false when the call was silently dropped (unknown tool name).
func (d *Dispatcher) Dispatch(ctx context.Context, call ProposedCall) (ToolOutcome, bool) {
	name := strings.TrimSpace(call.Name)
	contract, ok := d.registry.Lookup(name)
	if !ok {
		// Deliberate ignore-unrecognized policy: no outcome, no error.
		d.log.Debug("dispatch.unknown_tool", "tool", name)
		return ToolOutcome{}, false
	}

	normalized, violations := contract.Validate(call.Args)
	if len(violations) > 0 {
		d.log.Debug("dispatch.contract_violation", "tool", name, "violations", violations)
		return errorOutcome(name, call.Args, strings.Join(violations, "; ")), true
	}

	d.log.Debug("dispatch.call", "tool", name, "args", redactArgsForLog(normalized))
	raw, err := d.env.Execute(ctx, name, normalized)
	if err != nil {
		var envErr *envclient.Error
		msg := err.Error()
		if errors.As(err, &envErr) {
			msg = envErr.Message
		}
		if errors.Is(err, context.Canceled) {
			msg = "environment call canceled"
		}
		d.log.Debug("dispatch.env_error", "tool", name, "error", msg)
		return errorOutcome(name, normalized, msg), true
	}

	return ToolOutcome{ToolName: name, Input: normalized, Result: decodeResult(raw)}, true
}

// DispatchAll runs a batch. Independent calls may run concurrently, but the
// returned outcomes always follow proposal order with dropped calls absent.
func (d *Dispatcher) DispatchAll(ctx context.Context, calls []ProposedCall) []ToolOutcome {
	if len(calls) == 0 {
		return nil
	}

	type slot struct {
		outcome ToolOutcome
		emitted bool
	}
	slots := make([]slot, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.parallelism)
	for idx, call := range calls {
		g.Go(func() error {
			outcome, emitted := d.Dispatch(gctx, call)
			slots[idx] = slot{outcome: outcome, emitted: emitted}
			return nil
		})
	}
	_ = g.Wait() // dispatch never returns an error; failures are data

	out := make([]ToolOutcome, 0, len(calls))
	for _, s := range slots {
		if s.emitted {
			out = append(out, s.outcome)
		}
	}
	return out
}

// errorOutcome builds the structured error document fed back to the oracle.
func errorOutcome(toolName string, input map[string]any, message string) ToolOutcome {
	if input == nil {
		input = map[string]any{}
	}
	return ToolOutcome{
		ToolName: toolName,
		Input:    input,
		Result: map[string]any{
			"error":  message,
			"tool":   toolName,
			"input":  input,
			"status": resultStatusFailure,
		},
	}
}

// decodeResult parses the raw environment payload. Only a JSON object counts
// as a structured document; anything else is kept verbatim under "raw".
func decodeResult(raw json.RawMessage) map[string]any {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed != "" {
		var doc map[string]any
		if err := json.Unmarshal([]byte(trimmed), &doc); err == nil && doc != nil {
			return doc
		}
	}
	return map[string]any{rawResultKey: string(raw)}
}
