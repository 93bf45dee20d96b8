package views

import "github.com/charmbracelet/lipgloss"

var (
	StatusThinkingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	StatusToolStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	StatusDoneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	StatusHandoffStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	StatusGuardrailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	StatusErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	StatusDefaultStyle   = lipgloss.NewStyle()

	AgentLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	RefusalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

var (
	UserMessageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	InputStyle       = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)
	StatusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)
