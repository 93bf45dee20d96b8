package ui

import (
	"context"
	"errors"
)

// ErrInterrupted is returned by ReadInput when the user presses Ctrl+C.
var ErrInterrupted = errors.New("ui: input interrupted")

// UserInterface defines the contract for all user interactions.
// It follows a Read/Write pattern for clarity.
//
// ReadInput returns io.EOF when input is exhausted (Ctrl+D or a closed pipe)
// and ErrInterrupted on Ctrl+C.
type UserInterface interface {
	// ReadInput prompts the user for one line of text
	ReadInput(ctx context.Context, prompt string) (string, error)

	// WriteStatus displays progress lines (tool calls, handoffs, guardrails)
	WriteStatus(phase string, message string)

	// WriteMessage displays an agent answer, rendered as markdown
	WriteMessage(agent string, content string)

	// WriteNotice displays plain text such as refusals and errors
	WriteNotice(phase string, content string)

	// Interrupts fires when the user asks to abandon the running turn.
	// A nil channel means the front-end relies on SIGINT instead.
	Interrupts() <-chan struct{}

	Close() error
}
