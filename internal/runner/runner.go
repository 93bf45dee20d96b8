// Package runner drives agents: it gates input, calls the model, executes
// tools, follows handoffs and gates the final answer.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Cyclone1070/turnkit/internal/agent"
	"github.com/Cyclone1070/turnkit/internal/logging"
	"github.com/Cyclone1070/turnkit/internal/provider"
	"github.com/Cyclone1070/turnkit/internal/runctx"
	"github.com/Cyclone1070/turnkit/internal/workflow"
)

// DefaultMaxTurns bounds a run when neither the Runner nor the call sets one.
const DefaultMaxTurns = 10

// multipleHandoffs is fed back for every handoff call after the first in a
// single model response.
const multipleHandoffs = "Multiple handoffs detected, ignoring this one."

// Runner executes agents against a Provider. A Runner holds no per-run state
// and may be shared by concurrent sessions.
type Runner struct {
	provider provider.Provider
	tracer   trace.Tracer
	events   chan<- workflow.Event
	maxTurns int
	settings provider.ModelSettings
}

// Option configures a Runner.
type Option func(*Runner)

// WithTracer sets the tracer. The default is the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// WithEvents sets a channel receiving workflow events. Sends block, so the
// consumer must drain it.
func WithEvents(events chan<- workflow.Event) Option {
	return func(r *Runner) { r.events = events }
}

// WithDefaultMaxTurns sets the turn limit for runs that do not override it.
func WithDefaultMaxTurns(n int) Option {
	return func(r *Runner) { r.maxTurns = n }
}

// WithDefaultSettings sets model settings that agents and runs refine.
func WithDefaultSettings(s provider.ModelSettings) Option {
	return func(r *Runner) { r.settings = s }
}

// New creates a Runner that calls p. The Runner holds no per-conversation
// state and is safe for concurrent runs.
func New(p provider.Provider, opts ...Option) *Runner {
	r := &Runner{
		provider: p,
		maxTurns: DefaultMaxTurns,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer("github.com/Cyclone1070/turnkit/internal/runner")
	}
	return r
}

type runConfig struct {
	maxTurns int
	state    any
	hasState bool
	settings provider.ModelSettings
	runID    string
}

// RunOption configures a single run.
type RunOption func(*runConfig)

// WithMaxTurns bounds the number of model invocations in this run.
func WithMaxTurns(n int) RunOption {
	return func(c *runConfig) { c.maxTurns = n }
}

// WithState attaches caller-owned conversation state, readable by tools,
// guardrails and instructions through runctx.From.
func WithState(state any) RunOption {
	return func(c *runConfig) {
		c.state = state
		c.hasState = true
	}
}

// WithSettings overrides model settings for this run.
func WithSettings(s provider.ModelSettings) RunOption {
	return func(c *runConfig) { c.settings = s }
}

// WithRunID sets the run id instead of generating one.
func WithRunID(id string) RunOption {
	return func(c *runConfig) { c.runID = id }
}

// RunText runs a with a single user message.
func (r *Runner) RunText(ctx context.Context, a *agent.Agent, text string, opts ...RunOption) (*Result, error) {
	return r.Run(ctx, a, []provider.Message{provider.UserMessage(text)}, opts...)
}

// Run executes a against input, which is the prior history followed by the
// new user message. input is never modified.
//
// A turn is one model invocation; the run fails with TurnLimitExceededError
// when invocation maxTurns+1 would be needed. Input guardrails of the starting
// agent gate the last user message; output guardrails of the final agent gate
// its answer.
func (r *Runner) Run(ctx context.Context, a *agent.Agent, input []provider.Message, opts ...RunOption) (res *Result, err error) {
	cfg := runConfig{maxTurns: r.maxTurns}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxTurns <= 0 {
		cfg.maxTurns = DefaultMaxTurns
	}
	if cfg.runID == "" {
		cfg.runID = uuid.NewString()
	}
	if cfg.hasState {
		ctx = runctx.With(ctx, cfg.state)
	}

	ctx, span := r.startRun(ctx, cfg.runID, a)
	defer func() {
		endSpan(span, err)
		r.emit(workflow.DoneEvent{Err: err})
	}()

	s := &runState{
		runner:  r,
		cfg:     cfg,
		active:  a,
		history: append([]provider.Message(nil), input...),
	}

	start := time.Now()
	logging.Debug().With(logging.RunID(cfg.runID), logging.Agent(a.Name())).Msg("run started")

	if err := s.checkInput(ctx, lastUserText(input)); err != nil {
		return nil, err
	}

	res, err = s.loop(ctx)
	if err != nil {
		logging.Debug().With(logging.RunID(cfg.runID), logging.Duration(time.Since(start)), logging.Err(err)).Msg("run failed")
		return nil, err
	}
	logging.Debug().With(logging.RunID(cfg.runID), logging.Agent(res.LastAgent.Name()), logging.Turn(res.Turns), logging.Duration(time.Since(start))).Msg("run finished")
	return res, nil
}

// runState is the mutable state of one Run.
type runState struct {
	runner   *Runner
	cfg      runConfig
	active   *agent.Agent
	history  []provider.Message
	newItems []provider.Message
	usage    provider.Usage
	turn     int
}

func (s *runState) append(msgs ...provider.Message) {
	s.history = append(s.history, msgs...)
	s.newItems = append(s.newItems, msgs...)
}

func (s *runState) loop(ctx context.Context) (*Result, error) {
	if h := s.active.Hooks().OnStart; h != nil {
		h(ctx, s.active)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tb, err := newToolbox(ctx, s.active)
		if err != nil {
			return nil, err
		}

		if s.turn >= s.cfg.maxTurns {
			logging.Warn().With(logging.RunID(s.cfg.runID), logging.Agent(s.active.Name()), logging.Turn(s.turn)).Msg("turn limit exceeded")
			return nil, &TurnLimitExceededError{MaxTurns: s.cfg.maxTurns}
		}
		s.turn++

		resp, err := s.generate(ctx, tb)
		if err != nil {
			return nil, err
		}

		msg := resp.Message
		msg.Role = provider.RoleAssistant
		msg.Name = s.active.Name()
		s.append(msg)

		if len(msg.ToolCalls) == 0 {
			return s.finish(ctx, msg.Content)
		}
		if msg.Content != "" {
			s.runner.emit(workflow.TextEvent{Agent: s.active.Name(), Text: msg.Content})
		}

		next, err := s.runToolCalls(ctx, tb, msg.ToolCalls)
		if err != nil {
			return nil, err
		}
		if next != nil {
			s.handoff(ctx, next)
		}
	}
}

func (s *runState) generate(ctx context.Context, tb *toolbox) (*provider.Response, error) {
	a := s.active
	settings := s.runner.settings.Merge(a.Settings()).Merge(s.cfg.settings)
	req := &provider.Request{
		Instructions: a.Instructions(ctx),
		Messages:     s.history,
		Tools:        tb.declarations(),
		Settings:     settings,
	}
	if out := a.Output(); out != nil {
		req.Output = &provider.OutputSpec{Name: out.Name, Schema: out.Schema}
	}

	s.runner.emit(workflow.ThinkingEvent{Agent: a.Name(), Turn: s.turn})
	logging.Debug().With(logging.RunID(s.cfg.runID), logging.Agent(a.Name()), logging.Turn(s.turn)).Msg("model call")

	ctx, span := s.runner.startModel(ctx, a, s.turn)
	resp, err := s.runner.provider.Generate(ctx, req)
	endSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("model call (agent %q, turn %d): %w", a.Name(), s.turn, err)
	}

	s.usage = s.usage.Add(resp.Usage)
	return resp, nil
}

// runToolCalls executes every call of one model response in order and returns
// the handoff target, if one was taken.
func (s *runState) runToolCalls(ctx context.Context, tb *toolbox, calls []provider.ToolCall) (*agent.Agent, error) {
	var (
		next   *agent.Agent
		filter agent.InputFilter
	)

	for _, tc := range calls {
		if h, ok := tb.handoffs[tc.Function.Name]; ok {
			if next != nil {
				s.append(toolResult(tc, multipleHandoffs))
				continue
			}
			target := h.Target()
			if target == nil {
				s.append(toolResult(tc, fmt.Sprintf("Error: agent %q is not available.", h.TargetName())))
				continue
			}
			next = target
			payload, _ := json.Marshal(map[string]string{"assistant": target.Name()})
			s.append(toolResult(tc, string(payload)))
			filter = h.InputFilter
			continue
		}

		out, err := s.runTool(ctx, tb, tc)
		if err != nil {
			return nil, err
		}
		s.append(out)
	}

	if next != nil && filter != nil {
		s.history = filter(append([]provider.Message(nil), s.history...))
	}
	return next, nil
}

func (s *runState) runTool(ctx context.Context, tb *toolbox, tc provider.ToolCall) (provider.Message, error) {
	name := tc.Function.Name
	hooks := s.active.Hooks()

	if hooks.OnToolStart != nil {
		hooks.OnToolStart(ctx, s.active, name)
	}
	start := time.Now()

	spanCtx, span := s.runner.startTool(ctx, name, tc.ID)
	out, err := tb.tools.Execute(spanCtx, tc, s.runner.events)
	endSpan(span, err)

	logging.Debug().With(logging.RunID(s.cfg.runID), logging.ToolName(name), logging.Duration(time.Since(start))).Msg("tool call")

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return provider.Message{}, ctxErr
		}
		logging.Error().With(logging.RunID(s.cfg.runID), logging.ToolName(name), logging.Err(err)).Msg("tool failed")
		return provider.Message{}, &ToolError{Tool: name, Err: err}
	}

	if hooks.OnToolEnd != nil {
		hooks.OnToolEnd(ctx, s.active, name, out.Content)
	}
	return out, nil
}

func (s *runState) handoff(ctx context.Context, to *agent.Agent) {
	from := s.active
	logging.Info().With(logging.RunID(s.cfg.runID), logging.Handoff(from.Name(), to.Name())).Msg("handoff")
	s.runner.emit(workflow.HandoffEvent{From: from.Name(), To: to.Name()})

	if h := from.Hooks().OnHandoff; h != nil {
		h(ctx, from, to)
	}
	s.active = to
	if h := to.Hooks().OnStart; h != nil {
		h(ctx, to)
	}
}

func (s *runState) finish(ctx context.Context, text string) (*Result, error) {
	// The answer is only published once output guardrails pass.
	if err := s.checkOutput(ctx, text); err != nil {
		return nil, err
	}
	if text != "" {
		s.runner.emit(workflow.TextEvent{Agent: s.active.Name(), Text: text})
	}

	res := &Result{
		RunID:     s.cfg.runID,
		FinalText: text,
		LastAgent: s.active,
		History:   s.history,
		NewItems:  s.newItems,
		Usage:     s.usage,
		Turns:     s.turn,
	}

	if out := s.active.Output(); out != nil {
		obj, err := parseObject(text)
		if err != nil {
			logging.Warn().With(logging.RunID(s.cfg.runID), logging.Agent(s.active.Name()), logging.Reason("structured output did not parse"), logging.Err(err)).Msg("schema parse failure")
		} else {
			res.FinalObject = obj
		}
	}

	if h := s.active.Hooks().OnEnd; h != nil {
		h(ctx, s.active, text)
	}
	return res, nil
}

func toolResult(tc provider.ToolCall, content string) provider.Message {
	return provider.Message{
		Role:       provider.RoleTool,
		ToolCallID: tc.ID,
		Name:       tc.Function.Name,
		Content:    content,
	}
}

func lastUserText(history []provider.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == provider.RoleUser {
			return history[i].Content
		}
	}
	return ""
}

func (r *Runner) emit(ev workflow.Event) {
	if r.events != nil {
		r.events <- ev
	}
}
