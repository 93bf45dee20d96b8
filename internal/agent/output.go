package agent

import "github.com/Cyclone1070/turnkit/internal/tool"

// OutputSchema names and describes the JSON object an agent must answer with.
type OutputSchema struct {
	Name   string
	Schema *tool.Schema
}

// OutputOf derives an OutputSchema from T's struct tags, the same way tool
// inputs are derived.
func OutputOf[T any](name string) OutputSchema {
	return OutputSchema{Name: name, Schema: tool.SchemaFor[T]()}
}
