package runner

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/Cyclone1070/turnkit/internal/agent"
	"github.com/Cyclone1070/turnkit/internal/provider"
)

// Result is the outcome of a completed run.
type Result struct {
	RunID     string
	FinalText string
	// FinalObject is the decoded JSON answer of an agent with an output
	// schema, or nil when the agent has none or the answer did not parse.
	FinalObject any
	LastAgent   *agent.Agent
	// History is the full conversation after the run, as seen by LastAgent.
	History []provider.Message
	// NewItems are the messages produced during this run, in order.
	NewItems []provider.Message
	Usage    provider.Usage
	Turns    int
}

// ToInputList returns a copy of History for seeding the next run.
func (r *Result) ToInputList() []provider.Message {
	return append([]provider.Message(nil), r.History...)
}

// Decode decodes FinalObject into v, a pointer to a struct with json tags.
func (r *Result) Decode(v any) error {
	if r.FinalObject == nil {
		return ErrNoFinalObject
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           v,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(r.FinalObject); err != nil {
		return fmt.Errorf("decode final output: %w", err)
	}
	return nil
}
