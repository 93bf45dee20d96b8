package gemini

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/Cyclone1070/turnkit/internal/provider"
	"github.com/Cyclone1070/turnkit/internal/tool"
)

func TestToGeminiContents_ToolRoundTrip(t *testing.T) {
	history := []provider.Message{
		provider.UserMessage("What is 3 + 4 and 1 + 1?"),
		{
			Role: provider.RoleAssistant,
			ToolCalls: []provider.ToolCall{
				{ID: "c1", Function: provider.FunctionCall{Name: "add", Arguments: json.RawMessage(`{"a":3,"b":4}`)}},
				{ID: "c2", Function: provider.FunctionCall{Name: "add", Arguments: json.RawMessage(`{"a":1,"b":1}`)}},
			},
		},
		{Role: provider.RoleTool, ToolCallID: "c1", Name: "add", Content: "7"},
		{Role: provider.RoleTool, ToolCallID: "c2", Name: "add", Content: "2"},
		{Role: provider.RoleAssistant, Content: "7 and 2"},
	}

	contents := toGeminiContents(history)

	require.Len(t, contents, 4)
	assert.Equal(t, genai.RoleUser, contents[0].Role)

	assert.Equal(t, genai.RoleModel, contents[1].Role)
	require.Len(t, contents[1].Parts, 2)
	assert.Equal(t, "add", contents[1].Parts[0].FunctionCall.Name)
	assert.Equal(t, 3.0, contents[1].Parts[0].FunctionCall.Args["a"])

	// Both tool results share one user content.
	assert.Equal(t, genai.RoleUser, contents[2].Role)
	require.Len(t, contents[2].Parts, 2)
	assert.Equal(t, "c1", contents[2].Parts[0].FunctionResponse.ID)
	assert.Equal(t, "7", contents[2].Parts[0].FunctionResponse.Response["content"])
	assert.Equal(t, "2", contents[2].Parts[1].FunctionResponse.Response["content"])

	assert.Equal(t, "7 and 2", contents[3].Parts[0].Text)
}

func TestToGeminiContents_SkipsEmpty(t *testing.T) {
	contents := toGeminiContents([]provider.Message{
		{Role: provider.RoleUser},
		{Role: provider.RoleAssistant},
	})
	assert.Empty(t, contents)
}

func TestToGeminiSchema_Nested(t *testing.T) {
	s := &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"results": {
				Type: tool.TypeArray,
				Items: &tool.Schema{
					Type: tool.TypeObject,
					Properties: map[string]*tool.Schema{
						"score": {Type: tool.TypeNumber},
						"mode":  {Type: tool.TypeString, Enum: []string{"a", "b"}},
					},
					Required: []string{"score"},
				},
			},
		},
		Required: []string{"results"},
	}

	g := toGeminiSchema(s)

	assert.Equal(t, genai.TypeObject, g.Type)
	assert.Equal(t, []string{"results"}, g.Required)
	items := g.Properties["results"].Items
	require.NotNil(t, items)
	assert.Equal(t, genai.TypeNumber, items.Properties["score"].Type)
	assert.Equal(t, []string{"a", "b"}, items.Properties["mode"].Enum)
	assert.Equal(t, []string{"score"}, items.Required)
}

func TestToGeminiSchema_Nil(t *testing.T) {
	assert.Nil(t, toGeminiSchema(nil))
}

func TestToGeminiConfig_Settings(t *testing.T) {
	cfg := toGeminiConfig(&provider.Request{
		Settings: provider.ModelSettings{
			Temperature: provider.Float32(0.4),
			TopP:        provider.Float32(0.8),
			MaxTokens:   256,
			ToolChoice:  provider.ToolChoiceNone,
		},
		Tools: []tool.Declaration{{Name: "noop"}},
	})

	assert.Equal(t, float32(0.4), *cfg.Temperature)
	assert.Equal(t, float32(0.8), *cfg.TopP)
	assert.Equal(t, int32(256), cfg.MaxOutputTokens)
	assert.Equal(t, genai.FunctionCallingConfigModeNone, cfg.ToolConfig.FunctionCallingConfig.Mode)
	assert.Len(t, cfg.SafetySettings, 4)
	assert.Nil(t, cfg.SystemInstruction)
}

func TestToGeminiConfig_NoToolsNoToolConfig(t *testing.T) {
	cfg := toGeminiConfig(&provider.Request{Settings: provider.ModelSettings{ToolChoice: provider.ToolChoiceRequired}})
	assert.Nil(t, cfg.Tools)
	assert.Nil(t, cfg.ToolConfig)
}

func TestBuildMessage_KeepsProvidedIDAndSkipsThoughts(t *testing.T) {
	msg := buildMessage(&genai.Candidate{Content: &genai.Content{Parts: []*genai.Part{
		{Text: "thinking...", Thought: true},
		{Text: "answer"},
		{FunctionCall: &genai.FunctionCall{ID: "given", Name: "noop"}},
	}}})

	assert.Equal(t, "answer", msg.Content)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "given", msg.ToolCalls[0].ID)
	assert.JSONEq(t, `null`, string(msg.ToolCalls[0].Function.Arguments))
}
