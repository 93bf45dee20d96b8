package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// Field applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// RunID adds the run identifier.
func RunID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("run_id", id)
	}
}

// Agent adds the active agent name.
func Agent(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("agent", name)
	}
}

// ToolName adds a tool name field.
func ToolName(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("tool", name)
	}
}

// Turn adds the model invocation counter.
func Turn(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("turn", n)
	}
}

// Direction adds a guardrail direction (input or output).
func Direction(d string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("direction", d)
	}
}

// Guardrail adds a guardrail name.
func Guardrail(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("guardrail", name)
	}
}

// Blocked adds a guardrail decision.
func Blocked(b bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("blocked", b)
	}
}

// Handoff adds the source and target of an agent switch.
func Handoff(from, to string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("from_agent", from).Str("to_agent", to)
	}
}

// Reason adds a free-form diagnostic.
func Reason(r string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("reason", r)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// Attempt adds a retry attempt counter.
func Attempt(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("attempt", n)
	}
}

// Err adds an error field.
func Err(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Err(err)
	}
}
