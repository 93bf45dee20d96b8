package anthropic

import (
	"encoding/json"
	"errors"
	"net/http"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/Cyclone1070/turnkit/internal/provider"
)

func toMessageParams(model string, req *provider.Request) sdk.MessageNewParams {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: defaultMaxTokens,
		Messages:  toMessages(req.Messages),
	}

	s := req.Settings
	if s.MaxTokens > 0 {
		params.MaxTokens = int64(s.MaxTokens)
	}
	if s.Temperature != nil {
		params.Temperature = sdk.Float(float64(*s.Temperature))
	}
	if s.TopP != nil {
		params.TopP = sdk.Float(float64(*s.TopP))
	}

	system := req.Instructions
	if req.Output != nil && req.Output.Schema != nil {
		schema, _ := json.Marshal(req.Output.Schema)
		if system != "" {
			system += "\n\n"
		}
		system += "Respond only with a JSON object matching this schema:\n" + string(schema)
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	if len(req.Tools) > 0 {
		params.Tools = make([]sdk.ToolUnionParam, 0, len(req.Tools))
		for _, d := range req.Tools {
			tp := &sdk.ToolParam{Name: d.Name}
			if d.Description != "" {
				tp.Description = sdk.String(d.Description)
			}
			if d.Parameters != nil {
				tp.InputSchema = sdk.ToolInputSchemaParam{
					Properties: d.Parameters.Properties,
					Required:   d.Parameters.Required,
				}
			}
			params.Tools = append(params.Tools, sdk.ToolUnionParam{OfTool: tp})
		}

		switch s.ToolChoice {
		case provider.ToolChoiceAuto:
			params.ToolChoice = sdk.ToolChoiceUnionParam{OfAuto: &sdk.ToolChoiceAutoParam{}}
		case provider.ToolChoiceRequired:
			params.ToolChoice = sdk.ToolChoiceUnionParam{OfAny: &sdk.ToolChoiceAnyParam{}}
		case provider.ToolChoiceNone:
			none := sdk.NewToolChoiceNoneParam()
			params.ToolChoice = sdk.ToolChoiceUnionParam{OfNone: &none}
		}
	}

	return params
}

// toMessages converts history. Tool results become user tool_result blocks,
// and consecutive results are merged into one user message.
func toMessages(history []provider.Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, 0, len(history))
	pendingResults := false

	for _, m := range history {
		switch m.Role {
		case provider.RoleTool:
			block := sdk.NewToolResultBlock(m.ToolCallID, m.Content, false)
			if pendingResults {
				last := &out[len(out)-1]
				last.Content = append(last.Content, block)
				continue
			}
			out = append(out, sdk.NewUserMessage(block))
			pendingResults = true
			continue

		case provider.RoleAssistant:
			var blocks []sdk.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, sdk.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				args, err := tc.Function.ArgsMap()
				if err != nil {
					args = map[string]any{}
				}
				blocks = append(blocks, sdk.NewToolUseBlock(tc.ID, args, tc.Function.Name))
			}
			if len(blocks) > 0 {
				out = append(out, sdk.NewAssistantMessage(blocks...))
			}

		default:
			if m.Content != "" {
				out = append(out, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
			}
		}
		pendingResults = false
	}
	return out
}

func fromMessage(msg *sdk.Message, model string) (*provider.Response, error) {
	if msg == nil {
		return nil, &provider.ProviderError{Code: provider.ErrorCodeInvalidRequest, Message: "empty response"}
	}
	if msg.StopReason == sdk.StopReasonRefusal {
		return nil, &provider.ProviderError{Code: provider.ErrorCodeContentBlocked, Message: "model refused the request"}
	}

	out := provider.Message{Role: provider.RoleAssistant}
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			out.Content += block.Text
		case "tool_use":
			args := block.Input
			if len(args) == 0 {
				args = json.RawMessage("{}")
			}
			out.ToolCalls = append(out.ToolCalls, provider.ToolCall{
				ID:       block.ID,
				Function: provider.FunctionCall{Name: block.Name, Arguments: args},
			})
		}
	}

	if msg.Model != "" {
		model = string(msg.Model)
	}
	resp := &provider.Response{
		Message:      out,
		FinishReason: string(msg.StopReason),
		Model:        model,
		Usage: provider.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}

	if msg.StopReason == sdk.StopReasonMaxTokens && len(out.ToolCalls) == 0 {
		return resp, &provider.ProviderError{
			Code:    provider.ErrorCodeContextLength,
			Message: "response truncated at max tokens",
		}
	}
	return resp, nil
}

func mapError(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return provider.ErrorForStatus(apiErr.StatusCode, http.StatusText(apiErr.StatusCode), err)
	}
	return &provider.ProviderError{
		Code:       provider.ErrorCodeNetwork,
		Message:    "request failed",
		Underlying: err,
		Retryable:  true,
	}
}
