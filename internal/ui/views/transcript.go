package views

import (
	"strings"

	"github.com/Cyclone1070/turnkit/internal/ui/services"
)

// Kinds of transcript entries.
const (
	EntryUser   = "user"
	EntryAnswer = "answer"
	EntryStatus = "status"
	EntryNotice = "notice"
)

// Entry is one item of the chat transcript shown by the full-screen UI.
type Entry struct {
	Kind    string
	Agent   string
	Phase   string
	Content string
}

// FormatTranscript renders entries in order, one block per entry.
func FormatTranscript(entries []Entry, width int, renderer services.MarkdownRenderer) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, FormatEntry(e, width, renderer))
	}
	return JoinTranscript(lines)
}

// JoinTranscript joins already formatted entries.
func JoinTranscript(lines []string) string {
	if len(lines) == 0 {
		return "No messages yet. Type a message to start."
	}
	return strings.Join(lines, "\n")
}

// FormatEntry renders a single transcript entry.
func FormatEntry(e Entry, width int, renderer services.MarkdownRenderer) string {
	switch e.Kind {
	case EntryUser:
		return UserMessageStyle.Render("You: " + e.Content)
	case EntryAnswer:
		return FormatAnswer(e.Agent, e.Content, width, renderer)
	case EntryStatus:
		return RenderStatus(e.Phase, e.Content)
	default:
		return FormatNotice(e.Phase, e.Content)
	}
}
