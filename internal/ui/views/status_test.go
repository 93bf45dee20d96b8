package views

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Cyclone1070/turnkit/internal/workflow"
)

type MockMarkdownRenderer struct {
	RenderFunc func(string, int) (string, error)
}

func (m *MockMarkdownRenderer) Render(content string, width int) (string, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(content, width)
	}
	return content, nil
}

func TestRenderStatus_Phases(t *testing.T) {
	cases := map[string]string{
		PhaseTool:     "⚙",
		PhaseToolDone: "✔",
		PhaseFailed:   "✖",
		PhaseHandoff:  "→",
		PhaseBlocked:  "⛔",
	}
	for phase, icon := range cases {
		result := RenderStatus(phase, "add(3, 4)")
		assert.Contains(t, result, icon, phase)
		assert.Contains(t, result, "add(3, 4)", phase)
	}
}

func TestRenderStatus_UnknownPhaseIsPlain(t *testing.T) {
	assert.Contains(t, RenderStatus("other", "hello"), "hello")
}

func TestDescribeEvent(t *testing.T) {
	phase, msg, ok := DescribeEvent(workflow.HandoffEvent{From: "Triage Agent", To: "WeatherAgent"})
	assert.True(t, ok)
	assert.Equal(t, PhaseHandoff, phase)
	assert.Equal(t, "Triage Agent handed off to WeatherAgent", msg)

	phase, msg, ok = DescribeEvent(workflow.GuardrailEvent{Direction: "input", Name: "negative_terms", Blocked: true})
	assert.True(t, ok)
	assert.Equal(t, PhaseBlocked, phase)
	assert.Contains(t, msg, "negative_terms")

	phase, _, ok = DescribeEvent(workflow.ToolEndEvent{ToolName: "add", Display: "boom", Failed: true})
	assert.True(t, ok)
	assert.Equal(t, PhaseFailed, phase)

	_, _, ok = DescribeEvent(workflow.TextEvent{Agent: "a", Text: "hi"})
	assert.False(t, ok)
	_, _, ok = DescribeEvent(workflow.DoneEvent{})
	assert.False(t, ok)
}

func TestFormatAnswer(t *testing.T) {
	out := FormatAnswer("Math Assistant", "3 + 4 = **7**", 80, &MockMarkdownRenderer{
		RenderFunc: func(s string, w int) (string, error) { return "\n" + s + "\n", nil },
	})
	assert.Contains(t, out, "Math Assistant:")
	assert.Contains(t, out, "3 + 4 = **7**")
}

func TestFormatAnswer_RendererFailureFallsBack(t *testing.T) {
	out := FormatAnswer("", "raw text", 80, &MockMarkdownRenderer{
		RenderFunc: func(string, int) (string, error) { return "", errors.New("bad") },
	})
	assert.Contains(t, out, "raw text")
}

func TestFormatNotice(t *testing.T) {
	assert.Contains(t, FormatNotice(PhaseError, "rate limited"), "Error: rate limited")
	assert.Contains(t, FormatNotice(PhaseBlocked, " ❌ Sorry "), "❌ Sorry")
}
