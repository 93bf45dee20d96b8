// Package agent describes agents: named bundles of instructions, tools,
// handoffs, guardrails and an optional structured output type.
//
// An Agent is immutable after New. Clone derives a new Agent with
// overridden fields; the two never share mutable state.
package agent

import (
	"context"
	"slices"

	"github.com/Cyclone1070/turnkit/internal/guardrail"
	"github.com/Cyclone1070/turnkit/internal/provider"
	"github.com/Cyclone1070/turnkit/internal/tool"
)

// Agent is an immutable agent descriptor.
type Agent struct {
	name               string
	handoffDescription string
	instructions       Instructions
	tools              []tool.Tool
	handoffs           []Handoff
	output             *OutputSchema
	settings           provider.ModelSettings
	inputGuardrails    []guardrail.Guardrail
	outputGuardrails   []guardrail.Guardrail
	hooks              Hooks
}

// Option configures an Agent during New or Clone.
type Option func(*Agent)

// New creates an agent named name.
func New(name string, opts ...Option) *Agent {
	a := &Agent{name: name}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Clone returns a copy of a with opts applied on top.
func (a *Agent) Clone(opts ...Option) *Agent {
	c := &Agent{
		name:               a.name,
		handoffDescription: a.handoffDescription,
		instructions:       a.instructions,
		tools:              slices.Clone(a.tools),
		handoffs:           slices.Clone(a.handoffs),
		settings:           a.settings,
		inputGuardrails:    slices.Clone(a.inputGuardrails),
		outputGuardrails:   slices.Clone(a.outputGuardrails),
		hooks:              a.hooks,
	}
	if a.output != nil {
		out := *a.output
		c.output = &out
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithName renames the agent, typically on a Clone.
func WithName(name string) Option {
	return func(a *Agent) { a.name = name }
}

// WithHandoffDescription is shown to other agents' models when they may
// hand off to this one.
func WithHandoffDescription(desc string) Option {
	return func(a *Agent) { a.handoffDescription = desc }
}

// WithInstructions sets a fixed system prompt.
func WithInstructions(text string) Option {
	return func(a *Agent) { a.instructions = Static(text) }
}

// WithDynamicInstructions resolves the system prompt from the run context
// before every model invocation.
func WithDynamicInstructions(fn func(ctx context.Context, a *Agent) string) Option {
	return func(a *Agent) { a.instructions = Dynamic(fn) }
}

// WithTools replaces the tool set.
func WithTools(tools ...tool.Tool) Option {
	return func(a *Agent) { a.tools = slices.Clone(tools) }
}

// WithHandoffs replaces the handoff set.
func WithHandoffs(handoffs ...Handoff) Option {
	return func(a *Agent) { a.handoffs = slices.Clone(handoffs) }
}

// WithOutput requests structured output matching schema.
func WithOutput(schema OutputSchema) Option {
	return func(a *Agent) { a.output = &schema }
}

// WithoutOutput clears structured output, typically on a Clone.
func WithoutOutput() Option {
	return func(a *Agent) { a.output = nil }
}

// WithSettings sets model settings that override the runner defaults.
func WithSettings(s provider.ModelSettings) Option {
	return func(a *Agent) { a.settings = s }
}

// WithInputGuardrails replaces the guardrails run on the user input.
func WithInputGuardrails(g ...guardrail.Guardrail) Option {
	return func(a *Agent) { a.inputGuardrails = slices.Clone(g) }
}

// WithOutputGuardrails replaces the guardrails run on the final answer.
func WithOutputGuardrails(g ...guardrail.Guardrail) Option {
	return func(a *Agent) { a.outputGuardrails = slices.Clone(g) }
}

// WithHooks sets lifecycle callbacks.
func WithHooks(h Hooks) Option {
	return func(a *Agent) { a.hooks = h }
}

func (a *Agent) Name() string               { return a.name }
func (a *Agent) HandoffDescription() string { return a.handoffDescription }

// Instructions resolves the agent's system prompt. An agent without
// instructions resolves to "".
func (a *Agent) Instructions(ctx context.Context) string {
	if a.instructions == nil {
		return ""
	}
	return a.instructions.Resolve(ctx, a)
}

// Tools returns a copy of the tool set.
func (a *Agent) Tools() []tool.Tool { return slices.Clone(a.tools) }

// Handoffs returns a copy of the handoff set.
func (a *Agent) Handoffs() []Handoff { return slices.Clone(a.handoffs) }

// Output returns the structured output schema, or nil for free text.
func (a *Agent) Output() *OutputSchema {
	if a.output == nil {
		return nil
	}
	out := *a.output
	return &out
}

func (a *Agent) Settings() provider.ModelSettings { return a.settings }

func (a *Agent) InputGuardrails() []guardrail.Guardrail {
	return slices.Clone(a.inputGuardrails)
}

func (a *Agent) OutputGuardrails() []guardrail.Guardrail {
	return slices.Clone(a.outputGuardrails)
}

func (a *Agent) Hooks() Hooks { return a.hooks }
