package openaicompat

import (
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Cyclone1070/turnkit/internal/provider"
	"github.com/Cyclone1070/turnkit/internal/tool"
)

func toChatRequest(model string, req *provider.Request) openai.ChatCompletionRequest {
	out := openai.ChatCompletionRequest{
		Model:    model,
		Messages: toChatMessages(req.Instructions, req.Messages),
	}

	s := req.Settings
	if s.Temperature != nil {
		out.Temperature = *s.Temperature
	}
	if s.TopP != nil {
		out.TopP = *s.TopP
	}
	if s.MaxTokens > 0 {
		out.MaxTokens = s.MaxTokens
	}

	if len(req.Tools) > 0 {
		out.Tools = make([]openai.Tool, 0, len(req.Tools))
		for _, d := range req.Tools {
			params := d.Parameters
			if params == nil {
				params = &tool.Schema{Type: tool.TypeObject, Properties: map[string]*tool.Schema{}}
			}
			out.Tools = append(out.Tools, openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        d.Name,
					Description: d.Description,
					Parameters:  params,
				},
			})
		}
		if s.ToolChoice != provider.ToolChoiceDefault {
			out.ToolChoice = string(s.ToolChoice)
		}
	}

	if req.Output != nil {
		out.ResponseFormat = toResponseFormat(req.Output)
	}

	return out
}

// toResponseFormat sends the output schema when there is one and falls back
// to plain JSON mode otherwise.
func toResponseFormat(spec *provider.OutputSpec) *openai.ChatCompletionResponseFormat {
	if spec.Schema == nil {
		return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	schema, err := json.Marshal(spec.Schema)
	if err != nil {
		return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	name := spec.Name
	if name == "" {
		name = "output"
	}
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   name,
			Schema: json.RawMessage(schema),
		},
	}
}

// toChatMessages prepends instructions as a system message.
func toChatMessages(instructions string, history []provider.Message) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if instructions != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: instructions,
		})
	}

	for _, m := range history {
		switch m.Role {
		case provider.RoleTool:
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    m.Content,
				Name:       m.Name,
				ToolCallID: m.ToolCallID,
			})
		case provider.RoleAssistant:
			msg := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: m.Content,
			}
			for _, tc := range m.ToolCalls {
				args := string(tc.Function.Arguments)
				if args == "" {
					args = "{}"
				}
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Function.Name,
						Arguments: args,
					},
				})
			}
			if msg.Content == "" && len(msg.ToolCalls) == 0 {
				continue
			}
			msgs = append(msgs, msg)
		case provider.RoleSystem:
			msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: m.Content})
		default:
			if m.Content == "" {
				continue
			}
			msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: m.Content})
		}
	}
	return msgs
}

func fromChatResponse(resp openai.ChatCompletionResponse, model string) (*provider.Response, error) {
	if len(resp.Choices) == 0 {
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeInvalidRequest,
			Message: "no choices in response",
		}
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeContentBlocked,
			Message: "response blocked by content filter",
		}
	}

	msg := provider.Message{
		Role:    provider.RoleAssistant,
		Content: choice.Message.Content,
	}
	for _, tc := range choice.Message.ToolCalls {
		args := json.RawMessage(tc.Function.Arguments)
		if !json.Valid(args) {
			// Passed through as a JSON string so the tool layer can report it.
			quoted, _ := json.Marshal(tc.Function.Arguments)
			args = quoted
		}
		msg.ToolCalls = append(msg.ToolCalls, provider.ToolCall{
			ID: tc.ID,
			Function: provider.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: args,
			},
		})
	}

	if resp.Model != "" {
		model = resp.Model
	}
	out := &provider.Response{
		Message:      msg,
		FinishReason: string(choice.FinishReason),
		Model:        model,
		Usage: provider.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	if choice.FinishReason == openai.FinishReasonLength && len(msg.ToolCalls) == 0 {
		return out, &provider.ProviderError{
			Code:    provider.ErrorCodeContextLength,
			Message: "response truncated at max tokens",
		}
	}
	return out, nil
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return provider.ErrorForStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return provider.ErrorForStatus(reqErr.HTTPStatusCode, fmt.Sprint(reqErr.Err), err)
	}
	return &provider.ProviderError{
		Code:       provider.ErrorCodeNetwork,
		Message:    "request failed",
		Underlying: err,
		Retryable:  true,
	}
}
