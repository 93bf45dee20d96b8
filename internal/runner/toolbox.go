package runner

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/turnkit/internal/agent"
	"github.com/Cyclone1070/turnkit/internal/tool"
	"github.com/Cyclone1070/turnkit/internal/workflow/toolmanager"
)

// toolbox is what the active agent may call during one turn: its function
// tools plus the handoffs enabled for this run.
type toolbox struct {
	tools    *toolmanager.ToolManager
	handoffs map[string]agent.Handoff
	order    []string
}

func newToolbox(ctx context.Context, a *agent.Agent) (*toolbox, error) {
	tm, err := toolmanager.NewToolManager(a.Tools()...)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", a.Name(), err)
	}

	tb := &toolbox{tools: tm, handoffs: map[string]agent.Handoff{}}
	for _, h := range a.Handoffs() {
		if !h.Enabled(ctx) {
			continue
		}
		if tm.Has(h.ToolName) {
			return nil, fmt.Errorf("agent %q: handoff %q: %w", a.Name(), h.ToolName, toolmanager.ErrDuplicateTool)
		}
		if _, dup := tb.handoffs[h.ToolName]; dup {
			return nil, fmt.Errorf("agent %q: handoff %q: %w", a.Name(), h.ToolName, toolmanager.ErrDuplicateTool)
		}
		tb.handoffs[h.ToolName] = h
		tb.order = append(tb.order, h.ToolName)
	}
	return tb, nil
}

// declarations lists function tools (sorted) followed by handoffs in
// declaration order.
func (tb *toolbox) declarations() []tool.Declaration {
	decls := tb.tools.Declarations()
	for _, name := range tb.order {
		h := tb.handoffs[name]
		decls = append(decls, tool.Declaration{
			Name:        h.ToolName,
			Description: h.ToolDescription,
			Parameters:  &tool.Schema{Type: tool.TypeObject, Properties: map[string]*tool.Schema{}},
		})
	}
	if len(decls) == 0 {
		return nil
	}
	return decls
}
