package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Bar is the state of the status bar under the input.
type Bar struct {
	Busy    bool
	Spinner string
	Phase   string
	Message string
}

// RenderBar renders the status bar. A busy bar leads with the spinner.
func RenderBar(b Bar) string {
	if !b.Busy {
		if b.Message == "" {
			return StatusBarStyle.Render("Ready · Enter to send · Ctrl+C to quit")
		}
		return StatusBarStyle.Render(b.Message)
	}
	msg := b.Message
	if msg == "" {
		msg = "Working"
	}
	return b.Spinner + " " + RenderStatus(b.Phase, msg) + StatusBarStyle.Render("  (Ctrl+C to interrupt)")
}

// RenderRoot stacks the transcript, the input box and the status bar.
func RenderRoot(transcript, input string, bar Bar) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		transcript,
		InputStyle.Render(input),
		RenderBar(bar),
	)
}
