package views

import (
	"strings"

	"github.com/Cyclone1070/turnkit/internal/ui/services"
)

// FormatAnswer renders an agent answer as markdown under the agent's name.
func FormatAnswer(agent, content string, width int, renderer services.MarkdownRenderer) string {
	body := services.RenderMarkdown(content, width, renderer)
	if agent == "" {
		return body + "\n"
	}
	return AgentLabelStyle.Render(agent+":") + "\n" + body + "\n"
}

// FormatNotice renders refusals and errors as plain text.
func FormatNotice(phase, content string) string {
	content = strings.TrimSpace(content)
	switch phase {
	case PhaseBlocked:
		return RefusalStyle.Render(content)
	case PhaseError:
		return StatusErrorStyle.Render("Error: " + content)
	default:
		return content
	}
}
