// Package classifier implements a model-based guardrail: a checker agent is
// run on the candidate text and its JSON verdict decides whether to block.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/Cyclone1070/turnkit/internal/agent"
	"github.com/Cyclone1070/turnkit/internal/guardrail"
	"github.com/Cyclone1070/turnkit/internal/logging"
	"github.com/Cyclone1070/turnkit/internal/provider"
	"github.com/Cyclone1070/turnkit/internal/runner"
)

// ReasonNonJSON is reported when the checker's answer has no usable verdict.
const ReasonNonJSON = "Non-JSON output from checker"

// agentRunner runs the checker agent.
type agentRunner interface {
	Run(ctx context.Context, a *agent.Agent, input []provider.Message, opts ...runner.RunOption) (*runner.Result, error)
}

// Classifier is a guardrail backed by a checker agent. The checker must
// answer with a JSON object whose Field is true when the text must be blocked.
//
// By default the classifier fails open: an unparseable verdict or a failed
// checker run lets the text through, with the reason in Info.
type Classifier struct {
	name       string
	runner     agentRunner
	checker    *agent.Agent
	field      string
	failClosed bool
	allowField bool
	prompt     func(text string) string
}

type Option func(*Classifier)

// WithFailClosed blocks when no verdict can be obtained.
func WithFailClosed() Option {
	return func(c *Classifier) { c.failClosed = true }
}

// WithAllowVerdict treats Field as an allow verdict: the text is blocked
// when it is false.
func WithAllowVerdict() Option {
	return func(c *Classifier) { c.allowField = true }
}

// WithPrompt formats the candidate text before it is sent to the checker.
func WithPrompt(format func(text string) string) Option {
	return func(c *Classifier) { c.prompt = format }
}

// New creates a Classifier named name running checker through r.
func New(name string, r agentRunner, checker *agent.Agent, field string, opts ...Option) *Classifier {
	c := &Classifier{
		name:    name,
		runner:  r,
		checker: checker,
		field:   field,
		prompt:  func(text string) string { return text },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) Name() string { return c.name }

// Evaluate runs the checker. Only context cancellation is returned as an
// error; every other failure resolves to the configured fallback.
func (c *Classifier) Evaluate(ctx context.Context, text string) (guardrail.Result, error) {
	res, err := c.runner.Run(ctx, c.checker,
		[]provider.Message{provider.UserMessage(c.prompt(text))},
		runner.WithMaxTurns(1),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return guardrail.Result{}, ctxErr
		}
		logging.Warn().With(logging.Guardrail(c.name), logging.Err(err)).Msg("classifier run failed")
		return c.fallback(map[string]any{"error": err.Error()}), nil
	}

	obj, err := c.object(res)
	if err != nil {
		logging.Warn().With(logging.Guardrail(c.name), logging.Reason(ReasonNonJSON), logging.Err(err)).Msg("schema parse failure")
		return c.fallback(map[string]any{"reason": ReasonNonJSON, "raw": res.FinalText}), nil
	}

	var blocked bool
	if err := mapstructure.WeakDecode(obj[c.field], &blocked); err != nil || obj[c.field] == nil {
		logging.Warn().With(logging.Guardrail(c.name), logging.Reason(ReasonNonJSON)).Msg("verdict field missing")
		return c.fallback(map[string]any{"reason": ReasonNonJSON, "raw": res.FinalText}), nil
	}

	if c.allowField {
		blocked = !blocked
	}

	info := make(map[string]any, len(obj)+1)
	for k, v := range obj {
		info[k] = v
	}
	if _, ok := info["reason"]; !ok {
		if r, ok := obj["reasoning"]; ok {
			info["reason"] = r
		}
	}
	return guardrail.Result{Blocked: blocked, Info: info}, nil
}

func (c *Classifier) object(res *runner.Result) (map[string]any, error) {
	if obj, ok := res.FinalObject.(map[string]any); ok {
		return obj, nil
	}
	raw, err := runner.ExtractJSONObject(res.FinalText)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}
	return obj, nil
}

func (c *Classifier) fallback(info map[string]any) guardrail.Result {
	info["fail_closed"] = c.failClosed
	return guardrail.Result{Blocked: c.failClosed, Info: info}
}
