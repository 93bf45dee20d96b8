package provider

import (
	"encoding/json"

	"github.com/Cyclone1070/turnkit/internal/tool"
)

// Role identifies the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one history entry. Assistant messages may carry ToolCalls;
// tool messages answer exactly one call via ToolCallID.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	// Name is the tool name on tool messages, the agent name on assistant messages.
	Name string `json:"name,omitempty"`
}

// ToolCall is a model request to invoke a tool.
type ToolCall struct {
	ID       string       `json:"id"`
	Function FunctionCall `json:"function"`
	// Signature is opaque backend state that must be echoed back with the call
	// (Gemini thought signatures).
	Signature []byte `json:"signature,omitempty"`
}

// FunctionCall names the tool and carries its JSON arguments.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ArgsMap decodes the arguments into a map. Empty arguments decode to an empty map.
func (f FunctionCall) ArgsMap() (map[string]any, error) {
	args := map[string]any{}
	if len(f.Arguments) == 0 || string(f.Arguments) == "null" {
		return args, nil
	}
	if err := json.Unmarshal(f.Arguments, &args); err != nil {
		return nil, err
	}
	return args, nil
}

// UserMessage builds a user message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// Request is everything a backend needs for one model invocation.
type Request struct {
	Instructions string
	Messages     []Message
	Tools        []tool.Declaration
	Settings     ModelSettings
	// Output requests a JSON object matching a schema instead of free text.
	Output *OutputSpec
}

// OutputSpec describes structured output.
type OutputSpec struct {
	Name   string
	Schema *tool.Schema
}

// Usage counts tokens for one invocation.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Add accumulates another invocation's usage.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		TotalTokens:      u.TotalTokens + o.TotalTokens,
	}
}

// Response is a backend's answer: an assistant Message plus metadata.
type Response struct {
	Message      Message
	Usage        Usage
	FinishReason string
	Model        string
}
