package loop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Oracle is the external decision function: conversation in, zero-or-more
// proposed calls out.
type Oracle interface {
	Decide(ctx context.Context, conversation []Turn) (Proposal, error)
}

// Recorder receives run lifecycle events. Implementations must tolerate
// being called from a single goroutine only; a nil recorder disables
// recording.
type Recorder interface {
	RunEvent(ctx context.Context, eventType string, payload map[string]any)
}

// EndReason states why a run left the loop.
type EndReason string

const (
	EndCompleted   EndReason = "completed"    // oracle proposed no further calls
	EndMaxSteps    EndReason = "max_steps"    // iteration budget exhausted
	EndCanceled    EndReason = "canceled"     // external cancellation
	EndOracleError EndReason = "oracle_error" // decide failed
)

// graph node states. The executor is a small finite-state machine:
// deciding -> acting when the proposal has calls, deciding -> terminal when
// it does not, acting -> deciding always.
type nodeState string

const (
	stateDeciding nodeState = "deciding"
	stateActing   nodeState = "acting"
	stateTerminal nodeState = "terminal"
)

const (
	defaultMaxSteps = 100

	// hard cap regardless of configuration, to stop runaway loops.
	hardMaxSteps = 1000

	maxResultTurnRunes = 4000
)

type ExecutorOptions struct {
	Oracle     Oracle
	Dispatcher *Dispatcher
	// MaxSteps caps loop iterations. Zero means defaultMaxSteps.
	MaxSteps int
	Recorder Recorder
	Logger   *slog.Logger
}

// Executor owns AgentState for the duration of a run and is its only
// mutator. Iterations are strictly sequential.
type Executor struct {
	oracle     Oracle
	dispatcher *Dispatcher
	maxSteps   int
	recorder   Recorder
	log        *slog.Logger
}

func NewExecutor(opts ExecutorOptions) (*Executor, error) {
	if opts.Oracle == nil {
		return nil, errors.New("nil oracle")
	}
	if opts.Dispatcher == nil {
		return nil, errors.New("nil dispatcher")
	}
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	if maxSteps > hardMaxSteps {
		maxSteps = hardMaxSteps
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		oracle:     opts.Oracle,
		dispatcher: opts.Dispatcher,
		maxSteps:   maxSteps,
		recorder:   opts.Recorder,
		log:        log,
	}, nil
}

// Run drives the loop until the oracle proposes nothing, the budget runs
// out, the context is canceled, or the oracle fails. Deltas merge atomically
// per field between iterations, so cancellation never observes a partially
// merged state.
func (e *Executor) Run(ctx context.Context, state *AgentState) (EndReason, error) {
	if state == nil {
		return EndOracleError, errors.New("nil state")
	}
	current := stateDeciding
	for step := 1; current != stateTerminal; step++ {
		if err := ctx.Err(); err != nil {
			e.event(ctx, "run.canceled", map[string]any{"step": step})
			return EndCanceled, err
		}
		if step > e.maxSteps {
			e.event(ctx, "run.max_steps", map[string]any{"max_steps": e.maxSteps})
			return EndMaxSteps, nil
		}

		proposal, err := e.oracle.Decide(ctx, state.Conversation)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				e.event(ctx, "run.canceled", map[string]any{"step": step})
				return EndCanceled, err
			}
			return EndOracleError, fmt.Errorf("oracle decide: %w", err)
		}
		state.Merge(Delta{Proposal: &proposal})
		e.event(ctx, "run.proposal", map[string]any{"step": step, "calls": len(proposal.Calls)})

		// Routing depends on the pending proposal alone.
		if len(proposal.Calls) == 0 {
			current = stateTerminal
			e.event(ctx, "run.end", map[string]any{"step": step, "reason": string(EndCompleted)})
			return EndCompleted, nil
		}
		current = stateActing

		if text := strings.TrimSpace(proposal.Text); text != "" {
			state.Merge(Delta{Turns: []Turn{{Role: RoleAssistant, Parts: []ContentPart{TextPart(text)}}}})
		}

		outcomes := e.dispatcher.DispatchAll(ctx, proposal.Calls)
		e.log.Debug("run.acting", "step", step, "proposed", len(proposal.Calls), "outcomes", len(outcomes))

		state.Merge(Fold(outcomes))
		state.Merge(Delta{Turns: resultTurns(outcomes)})
		e.event(ctx, "run.outcomes", map[string]any{"step": step, "outcomes": len(outcomes)})

		current = stateDeciding
	}
	return EndCompleted, nil
}

// resultTurns renders outcomes the folder did not consume as one compact tool
// turn, so plain results still reach the oracle's next decision through the
// conversation. Observations already carry their own turn, and state-only
// outcomes (status banner, task list) carry none at all.
func resultTurns(outcomes []ToolOutcome) []Turn {
	lines := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		if _, isObservation := observationFromOutcome(outcome); isObservation {
			continue
		}
		if foldsToState(outcome) {
			continue
		}
		encoded, err := json.Marshal(outcome.Result)
		if err != nil {
			encoded = []byte(fmt.Sprintf("%v", outcome.Result))
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", outcome.ToolName, truncateRunes(string(encoded), maxResultTurnRunes)))
	}
	if len(lines) == 0 {
		return nil
	}
	return []Turn{{Role: RoleTool, Parts: []ContentPart{TextPart(strings.Join(lines, "\n"))}}}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func (e *Executor) event(ctx context.Context, eventType string, payload map[string]any) {
	if e == nil || e.recorder == nil {
		return
	}
	e.recorder.RunEvent(ctx, eventType, payload)
}
