// Package catalog assembles the demo agents the CLI can talk to.
package catalog

import (
	"context"
	"sort"

	"github.com/Cyclone1070/turnkit/internal/agent"
	"github.com/Cyclone1070/turnkit/internal/config"
	"github.com/Cyclone1070/turnkit/internal/guardrail"
	"github.com/Cyclone1070/turnkit/internal/provider"
	"github.com/Cyclone1070/turnkit/internal/runner"
	"github.com/Cyclone1070/turnkit/internal/tool"
)

// DefaultInputRefusal is shown when an input guardrail blocks a turn and the
// entry has no refusal of its own.
const DefaultInputRefusal = "❌ Sorry, I can't help with that request."

// DefaultOutputRefusal replaces an answer withheld by an output guardrail.
const DefaultOutputRefusal = "❌ The answer was withheld by a content guardrail."

// checkRunner runs the checker agents behind classifier guardrails.
type checkRunner interface {
	Run(ctx context.Context, a *agent.Agent, input []provider.Message, opts ...runner.RunOption) (*runner.Result, error)
}

// Deps are the external collaborators of the catalog agents.
type Deps struct {
	// Checker runs classifier agents. The CLI gives it a runner without an
	// event channel so classifier runs never show as chat status lines.
	Checker checkRunner
	// FailClosed makes classifier guardrails block when no verdict is parsed.
	FailClosed bool

	Weather tool.Tool
	Search  tool.Tool
	Clock   tool.Tool
}

// Entry is one agent the CLI can start a conversation with.
type Entry struct {
	Key           string
	Description   string
	Agent         *agent.Agent
	InputRefusal  string
	OutputRefusal string
	// Requires names the environment credentials the entry's tools need.
	Requires []string
}

// Catalog indexes entries by key.
type Catalog struct {
	entries map[string]Entry
}

// New builds every demo agent.
func New(d Deps) *Catalog {
	c := &Catalog{entries: make(map[string]Entry)}
	for _, e := range []Entry{
		{Key: "triage", Description: "Routes travel questions to weather, hotel and flight agents.", Agent: Triage()},
		{Key: "support", Description: "Customer support with order lookup and a human escalation.", Agent: Support(d),
			InputRefusal: "❌ Let's keep it friendly. I can't process that request."},
		{Key: "math", Description: "Arithmetic with add, subtract and multiply tools.", Agent: Math()},
		{Key: "hotel", Description: "Hotel directory assistant with a topic guardrail.", Agent: Hotel(d),
			InputRefusal: HotelRefusal},
		{Key: "research", Description: "Web research with search, weather and time tools.", Agent: Research(d),
			Requires: []string{config.EnvTavilyKey, config.EnvOpenWeatherKey}},
	} {
		c.entries[e.Key] = e
	}
	return c
}

// Get returns the entry for key.
func (c *Catalog) Get(key string) (Entry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Keys returns the entry keys in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Refusal maps a GuardrailBlockedError to the entry's user-facing message.
func (e Entry) Refusal(err *runner.GuardrailBlockedError) string {
	if err.Direction == guardrail.Input {
		if e.InputRefusal != "" {
			return e.InputRefusal
		}
		return DefaultInputRefusal
	}
	if e.OutputRefusal != "" {
		return e.OutputRefusal
	}
	return DefaultOutputRefusal
}
