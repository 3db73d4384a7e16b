package agentruntime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rca-orchestrator/orchestrator/internal/orcherr"
)

// maxToolIterations bounds the number of LLM round-trips within a single
// Run call, mirroring the teacher's internal/core.Flow maxFlowIterations
// safety cap against a runaway tool-call loop, scaled down since an agent
// turn here is a single decide/act cycle rather than a general node graph.
const maxToolIterations = 25

// Runtime drives one Agent through a tool-call loop against an LLMClient,
// collapsing the teacher's internal/agent Decide→Tool→Answer node sequence
// (internal/core.Flow) into a single cancellation-aware loop, since this
// domain needs no branching successor graph — just "call the model, run
// any tool calls it asks for, repeat until it answers or we cancel."
type Runtime struct {
	log    *zap.Logger
	client LLMClient
	invoke ToolInvoker
}

// New creates a Runtime backed by the given LLM client and tool invoker.
func New(log *zap.Logger, client LLMClient, invoke ToolInvoker) *Runtime {
	return &Runtime{log: log, client: client, invoke: invoke}
}

// Run executes one turn of the given agent against sessionView + userTurn,
// returning a channel of Events. The channel is closed after the terminal
// `final` event (or after an `error`+`final` pair on failure/cancellation).
// Cancelling ctx terminates the stream with `error{cancelled}` + `final`
// (spec.md §4.C).
func (r *Runtime) Run(ctx context.Context, agent Agent, sessionView []Message, userTurn string) <-chan Event {
	out := make(chan Event, 8)
	go r.run(ctx, agent, sessionView, userTurn, out)
	return out
}

func (r *Runtime) run(ctx context.Context, agent Agent, sessionView []Message, userTurn string, out chan<- Event) {
	defer close(out)

	messages := make([]Message, 0, len(sessionView)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: agent.Instruction})
	messages = append(messages, sessionView...)
	messages = append(messages, Message{Role: RoleUser, Content: userTurn})

	out <- Event{Kind: EventStatus, StatusText: fmt.Sprintf("%s is thinking…", agent.Name)}

	for iter := 0; iter < maxToolIterations; iter++ {
		if err := ctx.Err(); err != nil {
			emitCancelled(out, err)
			return
		}

		reply, err := r.client.CallWithTools(ctx, messages, agent.Tools)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				emitCancelled(out, err)
				return
			}
			agentErr := &orcherr.AgentError{Agent: agent.Name, Err: err}
			out <- Event{Kind: EventError, ErrMessage: agentErr.Error()}
			out <- Event{Kind: EventFinal, FinalText: ""}
			return
		}

		if len(reply.ToolCalls) == 0 {
			out <- Event{Kind: EventText, TextChunk: reply.Content}
			out <- Event{Kind: EventFinal, FinalText: reply.Content}
			return
		}

		messages = append(messages, reply)

		for _, tc := range reply.ToolCalls {
			if err := ctx.Err(); err != nil {
				emitCancelled(out, err)
				return
			}

			args := decodeArgs(tc.Arguments)
			out <- Event{Kind: EventToolCall, QualifiedName: tc.Name, Args: args}

			payload, err := r.invoke(ctx, tc.Name, args)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					emitCancelled(out, err)
					return
				}
				r.log.Warn("tool invocation failed",
					zap.String("tool", tc.Name), zap.Error(err))
				payload = err.Error()
				out <- Event{Kind: EventToolResult, QualifiedName: tc.Name, Payload: payload, ToolErr: true}
			} else {
				out <- Event{Kind: EventToolResult, QualifiedName: tc.Name, Payload: payload}
			}

			messages = append(messages, Message{
				Role:       RoleTool,
				Name:       tc.Name,
				ToolCallID: tc.ID,
				Content:    payload,
			})
		}
	}

	iterErr := &orcherr.AgentError{Agent: agent.Name, Err: fmt.Errorf("exceeded maximum tool-call iterations")}
	out <- Event{Kind: EventError, ErrMessage: iterErr.Error()}
	out <- Event{Kind: EventFinal, FinalText: ""}
}

// emitCancelled reports ctx cancellation as an orcherr.Cancelled so the
// cancellation kind is as structured as every other error in the taxonomy,
// not just an ad-hoc bool — Event.Cancelled remains a cheap wire-format flag
// for callers that don't need to errors.As into the underlying cause.
func emitCancelled(out chan<- Event, err error) {
	cancelled := &orcherr.Cancelled{Reason: err.Error()}
	out <- Event{Kind: EventError, ErrMessage: cancelled.Error(), Cancelled: true}
	out <- Event{Kind: EventFinal, FinalText: ""}
}

func decodeArgs(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return map[string]any{}
	}
	return args
}
