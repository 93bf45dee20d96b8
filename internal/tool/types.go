package tool

import "context"

// Type represents JSON Schema types.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema represents a JSON Schema for tool parameters and structured output.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// Declaration declares a tool's function signature for the LLM.
type Declaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Result is returned by tools after execution.
type Result interface {
	// LLMContent returns the string content sent to the LLM.
	LLMContent() string

	// Display returns a short human-readable summary for event consumers.
	Display() string
}

// TextResult is the Result of most tools: the same text for model and display.
type TextResult string

func (r TextResult) LLMContent() string { return string(r) }
func (r TextResult) Display() string    { return string(r) }

// Tool is a callable exposed to the model.
// Decode converts raw model arguments into the typed input handed to Execute.
// Execute returns an error only for faults: context cancellation, or a
// failure wrapped with Fatal. Ordinary domain failures are Results.
type Tool interface {
	Name() string
	Declaration() Declaration
	Decode(args map[string]any) (any, error)
	Execute(ctx context.Context, input any) (Result, error)
}
