package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/Cyclone1070/turnkit/internal/provider"
	"github.com/Cyclone1070/turnkit/internal/tool"
)

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 5,
			TotalTokenCount:      15,
		},
	}
}

func TestGenerate_TextResponse(t *testing.T) {
	var gotModel string
	var gotConfig *genai.GenerateContentConfig
	mockClient := modelsFunc(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel = model
		gotConfig = config
		return textResponse("Hello there!"), nil
	})
	p := New(mockClient, "gemini-mock")

	resp, err := p.Generate(context.Background(), &provider.Request{
		Instructions: "Be brief.",
		Messages:     []provider.Message{provider.UserMessage("Hello")},
	})

	require.NoError(t, err)
	assert.Equal(t, "gemini-mock", gotModel)
	require.NotNil(t, gotConfig.SystemInstruction)
	assert.Equal(t, "Be brief.", gotConfig.SystemInstruction.Parts[0].Text)
	assert.Equal(t, provider.RoleAssistant, resp.Message.Role)
	assert.Equal(t, "Hello there!", resp.Message.Content)
	assert.Empty(t, resp.Message.ToolCalls)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestGenerate_ToolCall(t *testing.T) {
	mockClient := modelsFunc(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		require.Len(t, config.Tools, 1)
		assert.Equal(t, "add", config.Tools[0].FunctionDeclarations[0].Name)
		require.NotNil(t, config.ToolConfig)
		assert.Equal(t, genai.FunctionCallingConfigModeAny, config.ToolConfig.FunctionCallingConfig.Mode)
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{
					FunctionCall:     &genai.FunctionCall{Name: "add", Args: map[string]any{"a": 3.0, "b": 4.0}},
					ThoughtSignature: []byte("sig"),
				}}},
				FinishReason: genai.FinishReasonStop,
			}},
		}, nil
	})
	p := New(mockClient, "gemini-mock")

	resp, err := p.Generate(context.Background(), &provider.Request{
		Messages: []provider.Message{provider.UserMessage("What is 3 + 4?")},
		Tools:    []tool.Declaration{{Name: "add", Description: "Add", Parameters: &tool.Schema{Type: tool.TypeObject}}},
		Settings: provider.ModelSettings{ToolChoice: provider.ToolChoiceRequired},
	})

	require.NoError(t, err)
	require.Len(t, resp.Message.ToolCalls, 1)
	tc := resp.Message.ToolCalls[0]
	assert.Equal(t, "add", tc.Function.Name)
	assert.NotEmpty(t, tc.ID) // generated
	assert.Equal(t, []byte("sig"), tc.Signature)

	var args map[string]float64
	require.NoError(t, json.Unmarshal(tc.Function.Arguments, &args))
	assert.Equal(t, 3.0, args["a"])
}

func TestGenerate_StructuredOutput(t *testing.T) {
	mockClient := modelsFunc(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		assert.Equal(t, "application/json", config.ResponseMIMEType)
		require.NotNil(t, config.ResponseSchema)
		assert.Equal(t, genai.TypeBoolean, config.ResponseSchema.Properties["blocked"].Type)
		return textResponse(`{"blocked": false}`), nil
	})
	p := New(mockClient, "gemini-mock")

	_, err := p.Generate(context.Background(), &provider.Request{
		Messages: []provider.Message{provider.UserMessage("check this")},
		Output: &provider.OutputSpec{Name: "verdict", Schema: &tool.Schema{
			Type:       tool.TypeObject,
			Properties: map[string]*tool.Schema{"blocked": {Type: tool.TypeBoolean}},
		}},
	})
	require.NoError(t, err)
}

func TestGenerate_APIErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		sentinel  error
		retryable bool
	}{
		{"Rate Limit Value", genai.APIError{Code: 429, Message: "quota"}, provider.ErrRateLimit, true},
		{"Auth Pointer", &genai.APIError{Code: 401, Message: "bad key"}, provider.ErrAuthentication, false},
		{"Unavailable", genai.APIError{Code: 503}, provider.ErrServiceUnavailable, true},
		{"Plain Network", errors.New("connection reset"), provider.ErrNetwork, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := modelsFunc(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				return nil, tt.err
			})
			p := New(mockClient, "gemini-mock")

			_, err := p.Generate(context.Background(), &provider.Request{})

			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.retryable, provider.IsRetryable(err))
		})
	}
}

func TestGenerate_EmptyAndBlocked(t *testing.T) {
	t.Run("No Candidates", func(t *testing.T) {
		mockClient := modelsFunc(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		})
		_, err := New(mockClient, "m").Generate(context.Background(), &provider.Request{})
		assert.ErrorIs(t, err, provider.ErrInvalidRequest)
	})

	t.Run("Prompt Blocked", func(t *testing.T) {
		mockClient := modelsFunc(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: "SAFETY"},
			}, nil
		})
		_, err := New(mockClient, "m").Generate(context.Background(), &provider.Request{})
		assert.ErrorIs(t, err, provider.ErrContentBlocked)
	})

	t.Run("Safety Finish", func(t *testing.T) {
		mockClient := modelsFunc(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			}, nil
		})
		_, err := New(mockClient, "m").Generate(context.Background(), &provider.Request{})
		assert.ErrorIs(t, err, provider.ErrContentBlocked)
	})

	t.Run("Max Tokens Returns Partial", func(t *testing.T) {
		mockClient := modelsFunc(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			resp := textResponse("partial")
			resp.Candidates[0].FinishReason = genai.FinishReasonMaxTokens
			return resp, nil
		})
		resp, err := New(mockClient, "m").Generate(context.Background(), &provider.Request{})
		assert.ErrorIs(t, err, provider.ErrContextLengthExceeded)
		require.NotNil(t, resp)
		assert.Equal(t, "partial", resp.Message.Content)
	})
}

func TestModel(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", New(nil, "gemini-2.5-flash").Model())
}

// modelsFunc adapts a function to ModelsClient.
type modelsFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

func (f modelsFunc) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return f(ctx, model, contents, config)
}
