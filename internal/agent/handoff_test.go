package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/turnkit/internal/provider"
)

func TestDefaultHandoffToolName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Weather Agent", "transfer_to_weather_agent"},
		{"WeatherAgent", "transfer_to_weatheragent"},
		{"billing-support", "transfer_to_billing_support"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultHandoffToolName(tt.in))
	}
}

func TestHandoffTo_Defaults(t *testing.T) {
	weather := New("Weather Agent", WithHandoffDescription("Answers weather questions."))

	h := HandoffTo(weather)

	assert.Equal(t, "transfer_to_weather_agent", h.ToolName)
	assert.Equal(t, "Handoff to the Weather Agent agent to handle the request. Answers weather questions.", h.ToolDescription)
	assert.Same(t, weather, h.Target())
	assert.Equal(t, "Weather Agent", h.TargetName())
	assert.True(t, h.Enabled(context.Background()))
}

func TestHandoffTo_Options(t *testing.T) {
	weather := New("WeatherAgent")

	h := HandoffTo(weather,
		WithToolName("handoff_weatheragent"),
		WithToolDescription("Get the weather."),
		WithEnabled(func(ctx context.Context) bool { return false }),
		WithInputFilter(KeepLast(1)),
	)

	assert.Equal(t, "handoff_weatheragent", h.ToolName)
	assert.Equal(t, "Get the weather.", h.ToolDescription)
	assert.False(t, h.Enabled(context.Background()))
	require.NotNil(t, h.InputFilter)
}

func TestHandoffLater_ResolvesCycle(t *testing.T) {
	var triage *Agent
	weather := New("Weather", WithHandoffs(HandoffLater("Triage", func() *Agent { return triage })))
	triage = New("Triage", WithHandoffs(HandoffTo(weather)))

	back := weather.Handoffs()[0]
	assert.Equal(t, "transfer_to_triage", back.ToolName)
	assert.Same(t, triage, back.Target())
	assert.Same(t, weather, triage.Handoffs()[0].Target())
}

func history() []provider.Message {
	return []provider.Message{
		provider.UserMessage("weather in Paris?"),
		{Role: provider.RoleAssistant, ToolCalls: []provider.ToolCall{{ID: "1", Function: provider.FunctionCall{Name: "get_weather", Arguments: json.RawMessage(`{}`)}}}},
		{Role: provider.RoleTool, ToolCallID: "1", Content: "sunny"},
		{Role: provider.RoleAssistant, Content: "Let me transfer you.", ToolCalls: []provider.ToolCall{{ID: "2", Function: provider.FunctionCall{Name: "transfer_to_x"}}}},
		{Role: provider.RoleTool, ToolCallID: "2", Content: `{"assistant":"x"}`},
	}
}

func TestRemoveToolItems(t *testing.T) {
	in := history()
	out := RemoveToolItems(in)

	require.Len(t, out, 2)
	assert.Equal(t, "weather in Paris?", out[0].Content)
	assert.Equal(t, "Let me transfer you.", out[1].Content)
	assert.Empty(t, out[1].ToolCalls)
	// Input untouched.
	assert.Len(t, in[3].ToolCalls, 1)
}

func TestKeepLast(t *testing.T) {
	assert.Len(t, KeepLast(2)(history()), 2)
	assert.Len(t, KeepLast(10)(history()), 5)
	assert.Empty(t, KeepLast(0)(history()))
}

func TestChain(t *testing.T) {
	out := Chain(RemoveToolItems, nil, KeepLast(1))(history())
	require.Len(t, out, 1)
	assert.Equal(t, "Let me transfer you.", out[0].Content)
}
