package gemini

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/Cyclone1070/turnkit/internal/provider"
	"github.com/Cyclone1070/turnkit/internal/tool"
)

// toGeminiContents converts history to Gemini Content format.
// Consecutive tool results are grouped into one user turn, as Gemini expects
// every function response for a model turn in a single content.
func toGeminiContents(messages []provider.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		content := messageToGeminiContent(msg)
		if content == nil {
			continue
		}
		if msg.Role == provider.RoleTool && len(contents) > 0 {
			last := contents[len(contents)-1]
			if last.Role == genai.RoleUser && isFunctionResponses(last) {
				last.Parts = append(last.Parts, content.Parts...)
				continue
			}
		}
		contents = append(contents, content)
	}

	return contents
}

func isFunctionResponses(c *genai.Content) bool {
	for _, p := range c.Parts {
		if p.FunctionResponse == nil {
			return false
		}
	}
	return len(c.Parts) > 0
}

// messageToGeminiContent converts a single message to Gemini Content format.
func messageToGeminiContent(msg provider.Message) *genai.Content {
	switch msg.Role {
	case provider.RoleTool:
		return &genai.Content{
			Role: genai.RoleUser,
			Parts: []*genai.Part{{
				FunctionResponse: &genai.FunctionResponse{
					ID:   msg.ToolCallID,
					Name: msg.Name,
					Response: map[string]any{
						"content": msg.Content,
					},
				},
			}},
		}

	case provider.RoleAssistant:
		parts := make([]*genai.Part, 0, len(msg.ToolCalls)+1)
		if msg.Content != "" {
			parts = append(parts, genai.NewPartFromText(msg.Content))
		}
		for _, tc := range msg.ToolCalls {
			args, err := tc.Function.ArgsMap()
			if err != nil {
				args = map[string]any{}
			}
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   tc.ID,
					Name: tc.Function.Name,
					Args: args,
				},
				ThoughtSignature: tc.Signature,
			})
		}
		if len(parts) == 0 {
			return nil
		}
		return &genai.Content{Role: genai.RoleModel, Parts: parts}

	default:
		// System messages in history are sent as user text; instructions
		// travel separately in SystemInstruction.
		if msg.Content == "" {
			return nil
		}
		return &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		}
	}
}

// toGeminiConfig converts request-level options to a Gemini config.
func toGeminiConfig(req *provider.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
	}

	if req.Instructions != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.Instructions)},
		}
	}

	s := req.Settings
	config.Temperature = s.Temperature
	config.TopP = s.TopP
	if s.MaxTokens > 0 {
		config.MaxOutputTokens = int32(s.MaxTokens)
	}

	if len(req.Tools) > 0 {
		config.Tools = toGeminiTools(req.Tools)
		if mode := toFunctionCallingMode(s.ToolChoice); mode != "" {
			config.ToolConfig = &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: mode},
			}
		}
	}

	if req.Output != nil {
		config.ResponseMIMEType = "application/json"
		if req.Output.Schema != nil {
			config.ResponseSchema = toGeminiSchema(req.Output.Schema)
		}
	}

	return config
}

func toFunctionCallingMode(choice provider.ToolChoice) genai.FunctionCallingConfigMode {
	switch choice {
	case provider.ToolChoiceAuto:
		return genai.FunctionCallingConfigModeAuto
	case provider.ToolChoiceRequired:
		return genai.FunctionCallingConfigModeAny
	case provider.ToolChoiceNone:
		return genai.FunctionCallingConfigModeNone
	default:
		return ""
	}
}

// defaultSafetySettings turns Gemini's own filters off; content gating is
// done by guardrails.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdOff},
	}
}

// toGeminiTools converts tool declarations to Gemini tools.
func toGeminiTools(decls []tool.Declaration) []*genai.Tool {
	if len(decls) == 0 {
		return nil
	}

	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		fd := &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
		}
		if d.Parameters != nil {
			fd.Parameters = toGeminiSchema(d.Parameters)
		}
		functionDeclarations = append(functionDeclarations, fd)
	}

	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// toGeminiSchema converts a tool.Schema recursively.
func toGeminiSchema(s *tool.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        toGeminiType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       toGeminiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGeminiSchema(prop)
		}
	}
	return out
}

// toGeminiType converts a schema type to a Gemini Type.
func toGeminiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse converts a Gemini response to a provider.Response.
func fromGeminiResponse(resp *genai.GenerateContentResponse, modelUsed string) (*provider.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, &provider.ProviderError{
				Code:    provider.ErrorCodeContentBlocked,
				Message: fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason),
			}
		}
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeInvalidRequest,
			Message: "no candidates in response",
		}
	}

	candidate := resp.Candidates[0]

	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeContentBlocked,
			Message: "content blocked by safety filters",
		}
	}

	out := &provider.Response{
		Message:      buildMessage(candidate),
		Usage:        buildUsage(resp.UsageMetadata),
		FinishReason: string(candidate.FinishReason),
		Model:        modelUsed,
	}

	if candidate.FinishReason == genai.FinishReasonMaxTokens && len(out.Message.ToolCalls) == 0 {
		return out, &provider.ProviderError{
			Code:    provider.ErrorCodeContextLength,
			Message: "response truncated due to max tokens",
		}
	}

	return out, nil
}

// buildMessage collects text and function calls from a candidate.
// Gemini does not always provide call IDs, so missing ones are generated.
func buildMessage(candidate *genai.Candidate) provider.Message {
	msg := provider.Message{Role: provider.RoleAssistant}
	if candidate.Content == nil {
		return msg
	}

	for _, part := range candidate.Content.Parts {
		if part.Thought {
			continue
		}
		if part.Text != "" {
			msg.Content += part.Text
		}
		if part.FunctionCall != nil {
			args, _ := json.Marshal(part.FunctionCall.Args)
			id := part.FunctionCall.ID
			if id == "" {
				id = "call_" + uuid.NewString()
			}
			msg.ToolCalls = append(msg.ToolCalls, provider.ToolCall{
				ID: id,
				Function: provider.FunctionCall{
					Name:      part.FunctionCall.Name,
					Arguments: args,
				},
				Signature: part.ThoughtSignature,
			})
		}
	}

	return msg
}

func buildUsage(usage *genai.GenerateContentResponseUsageMetadata) provider.Usage {
	if usage == nil {
		return provider.Usage{}
	}
	return provider.Usage{
		PromptTokens:     int(usage.PromptTokenCount),
		CompletionTokens: int(usage.CandidatesTokenCount),
		TotalTokens:      int(usage.TotalTokenCount),
	}
}

// mapGeminiError maps Gemini API errors to provider errors.
// The SDK returns APIError by value; pointers are accepted too.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return provider.ErrorForStatus(apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return provider.ErrorForStatus(apiErrPtr.Code, apiErrPtr.Message, err)
	}

	return &provider.ProviderError{
		Code:       provider.ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
		Retryable:  true,
	}
}
