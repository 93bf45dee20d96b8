package toolmanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Cyclone1070/turnkit/internal/provider"
	"github.com/Cyclone1070/turnkit/internal/tool"
	"github.com/Cyclone1070/turnkit/internal/workflow"
)

// ErrDuplicateTool is returned by Register when a name is already taken.
var ErrDuplicateTool = errors.New("duplicate tool name")

// ErrUnnamedTool is returned by Register for a tool with an empty name.
var ErrUnnamedTool = errors.New("tool has no name")

type ToolManager struct {
	registry map[string]tool.Tool
}

// NewToolManager registers every tool, failing on the first rejected one.
func NewToolManager(tools ...tool.Tool) (*ToolManager, error) {
	tm := &ToolManager{
		registry: make(map[string]tool.Tool, len(tools)),
	}
	for _, t := range tools {
		if err := tm.Register(t); err != nil {
			return nil, err
		}
	}
	return tm, nil
}

func (m *ToolManager) Register(t tool.Tool) error {
	name := t.Name()
	if name == "" {
		return ErrUnnamedTool
	}
	if _, ok := m.registry[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, name)
	}
	m.registry[name] = t
	return nil
}

// Has reports whether name is registered.
func (m *ToolManager) Has(name string) bool {
	_, ok := m.registry[name]
	return ok
}

func (m *ToolManager) Declarations() []tool.Declaration {
	decls := make([]tool.Declaration, 0, len(m.registry))
	for _, t := range m.registry {
		decls = append(decls, t.Declaration())
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})
	return decls
}

// Execute runs one tool call and returns the tool message for the model.
//
// Unknown tools, undecodable arguments and ordinary handler failures are
// reported to the model as "Error: ..." text. Only context cancellation and
// failures wrapped with tool.Fatal are returned as errors.
func (m *ToolManager) Execute(ctx context.Context, tc provider.ToolCall, events chan<- workflow.Event) (provider.Message, error) {
	name := tc.Function.Name

	t, ok := m.registry[name]
	if !ok {
		declsJSON, _ := json.MarshalIndent(m.Declarations(), "", "  ")
		errMsg := fmt.Sprintf("Error: tool %q does not exist.\n\nAvailable tools:\n%s", name, declsJSON)
		emitInvalid(events, name)
		return toolMessage(tc, errMsg), nil
	}

	args, err := tc.Function.ArgsMap()
	var input any
	if err == nil {
		input, err = t.Decode(args)
	}
	if err != nil {
		declJSON, _ := json.MarshalIndent(t.Declaration(), "", "  ")
		errMsg := fmt.Sprintf("Error: invalid arguments for tool %q: %v\n\nExpected schema:\n%s", name, err, declJSON)
		emitInvalid(events, name)
		return toolMessage(tc, errMsg), nil
	}

	emit(events, workflow.ToolStartEvent{
		ToolName:       name,
		RequestDisplay: requestDisplay(name, input, tc.Function.Arguments),
	})

	res, err := t.Execute(ctx, input)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			emit(events, workflow.ToolEndEvent{ToolName: name, Display: "Cancelled", Failed: true})
			return provider.Message{}, ctxErr
		}
		if tool.IsFatal(err) {
			emit(events, workflow.ToolEndEvent{ToolName: name, Display: err.Error(), Failed: true})
			return provider.Message{}, err
		}
		errMsg := fmt.Sprintf("Error: %v", err)
		emit(events, workflow.ToolEndEvent{ToolName: name, Display: errMsg, Failed: true})
		return toolMessage(tc, errMsg), nil
	}

	emit(events, workflow.ToolEndEvent{ToolName: name, Display: res.Display()})

	if err := ctx.Err(); err != nil {
		return provider.Message{}, err
	}

	return toolMessage(tc, res.LLMContent()), nil
}

func toolMessage(tc provider.ToolCall, content string) provider.Message {
	return provider.Message{
		Role:       provider.RoleTool,
		ToolCallID: tc.ID,
		Name:       tc.Function.Name,
		Content:    content,
	}
}

func requestDisplay(name string, input any, raw json.RawMessage) string {
	if s, ok := input.(fmt.Stringer); ok {
		return s.String()
	}
	if len(raw) == 0 {
		return name + "()"
	}
	return fmt.Sprintf("%s(%s)", name, raw)
}

func emitInvalid(events chan<- workflow.Event, name string) {
	emit(events, workflow.ToolStartEvent{ToolName: name})
	emit(events, workflow.ToolEndEvent{ToolName: name, Display: "Invalid tool request", Failed: true})
}

func emit(events chan<- workflow.Event, ev workflow.Event) {
	if events != nil {
		events <- ev
	}
}
