package workflow

// Event is the interface for all runner events.
// Consumers handle events via type switch.
type Event interface {
	isEvent()
}

// ThinkingEvent is emitted before each model invocation.
type ThinkingEvent struct {
	Agent string
	Turn  int
}

func (ThinkingEvent) isEvent() {}

// TextEvent is emitted when the model produces text output.
type TextEvent struct {
	Agent string
	Text  string
}

func (TextEvent) isEvent() {}

// ToolStartEvent is emitted when a tool execution begins.
type ToolStartEvent struct {
	ToolName       string
	RequestDisplay string // e.g., "add(3, 4)"
}

func (ToolStartEvent) isEvent() {}

// ToolEndEvent is emitted when a tool completes.
type ToolEndEvent struct {
	ToolName string
	Display  string
	Failed   bool
}

func (ToolEndEvent) isEvent() {}

// HandoffEvent is emitted when the active agent changes.
type HandoffEvent struct {
	From string
	To   string
}

func (HandoffEvent) isEvent() {}

// GuardrailEvent is emitted after every guardrail evaluation.
type GuardrailEvent struct {
	Direction string // "input" or "output"
	Name      string
	Blocked   bool
}

func (GuardrailEvent) isEvent() {}

// DoneEvent is emitted when a run completes, successfully or not.
type DoneEvent struct {
	Err error
}

func (DoneEvent) isEvent() {}
