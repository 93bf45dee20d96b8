package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Cyclone1070/turnkit/internal/agent"
	"github.com/Cyclone1070/turnkit/internal/guardrail"
	"github.com/Cyclone1070/turnkit/internal/provider"
	"github.com/Cyclone1070/turnkit/internal/runctx"
	"github.com/Cyclone1070/turnkit/internal/tool"
	"github.com/Cyclone1070/turnkit/internal/workflow"
)

type mockProvider struct {
	mu           sync.Mutex
	GenerateFunc func(ctx context.Context, req *provider.Request) (*provider.Response, error)
	requests     []provider.Request
}

func (m *mockProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	m.mu.Lock()
	snapshot := *req
	snapshot.Messages = append([]provider.Message(nil), req.Messages...)
	m.requests = append(m.requests, snapshot)
	m.mu.Unlock()
	return m.GenerateFunc(ctx, req)
}

func (m *mockProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func textResp(text string) *provider.Response {
	return &provider.Response{
		Message: provider.Message{Role: provider.RoleAssistant, Content: text},
		Usage:   provider.Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12},
	}
}

func callResp(calls ...provider.ToolCall) *provider.Response {
	return &provider.Response{
		Message: provider.Message{Role: provider.RoleAssistant, ToolCalls: calls},
		Usage:   provider.Usage{PromptTokens: 8, CompletionTokens: 1, TotalTokens: 9},
	}
}

func call(id, name, args string) provider.ToolCall {
	return provider.ToolCall{ID: id, Function: provider.FunctionCall{Name: name, Arguments: json.RawMessage(args)}}
}

func lastMessage(req *provider.Request) provider.Message {
	return req.Messages[len(req.Messages)-1]
}

type addRequest struct {
	A float64 `json:"a" description:"First number"`
	B float64 `json:"b" description:"Second number"`
}

func addTool() tool.Tool {
	return tool.NewFunction("add", "Add two numbers", func(ctx context.Context, req addRequest) (string, error) {
		return strconv.FormatFloat(req.A+req.B, 'f', -1, 64), nil
	})
}

// mathModel calls add once, then answers with the tool's result.
func mathModel(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	last := lastMessage(req)
	if last.Role == provider.RoleTool {
		return textResp("3 + 4 = " + last.Content), nil
	}
	return callResp(call("call_1", "add", `{"a": 3, "b": 4}`)), nil
}

func TestRun_AddToolEndToEnd(t *testing.T) {
	p := &mockProvider{GenerateFunc: mathModel}
	math := agent.New("Math", agent.WithInstructions("Use tools for arithmetic."), agent.WithTools(addTool()))

	res, err := New(p).RunText(context.Background(), math, "What is 3 + 4?")

	require.NoError(t, err)
	assert.Contains(t, res.FinalText, "7")
	assert.Same(t, math, res.LastAgent)
	assert.Equal(t, 2, res.Turns)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 21, res.Usage.TotalTokens)

	require.Len(t, res.History, 4)
	assert.Equal(t, provider.RoleUser, res.History[0].Role)
	assert.Equal(t, "add", res.History[1].ToolCalls[0].Function.Name)
	assert.Equal(t, provider.RoleTool, res.History[2].Role)
	assert.Equal(t, "7", res.History[2].Content)
	assert.Equal(t, "Math", res.History[3].Name)
	assert.Len(t, res.NewItems, 3)

	first := p.requests[0]
	assert.Equal(t, "Use tools for arithmetic.", first.Instructions)
	require.Len(t, first.Tools, 1)
	assert.Equal(t, "add", first.Tools[0].Name)
}

func TestRun_InputIsNotMutated(t *testing.T) {
	p := &mockProvider{GenerateFunc: mathModel}
	input := []provider.Message{provider.UserMessage("What is 3 + 4?")}

	res, err := New(p).Run(context.Background(), agent.New("Math", agent.WithTools(addTool())), input)

	require.NoError(t, err)
	assert.Len(t, input, 1)
	next := res.ToInputList()
	next[0].Content = "changed"
	assert.Equal(t, "What is 3 + 4?", res.History[0].Content)
}

func TestRun_InputGuardrail(t *testing.T) {
	deny := guardrail.NewDenylist("negative_terms", []string{"idiot", "stupid", "hate", "pathetic", "refund", "return"})
	support := agent.New("Support", agent.WithInputGuardrails(deny))

	t.Run("Blocks", func(t *testing.T) {
		p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
			return textResp("should not happen"), nil
		}}

		res, err := New(p).RunText(context.Background(), support, "I hate this")

		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrGuardrailBlocked)
		var blocked *GuardrailBlockedError
		require.ErrorAs(t, err, &blocked)
		assert.Equal(t, guardrail.Input, blocked.Direction)
		assert.Equal(t, "negative_terms", blocked.Guardrail)
		assert.Equal(t, "hate", blocked.Info["matched"])
		assert.True(t, IsInputBlocked(err))
		assert.Equal(t, 0, p.calls())
	})

	t.Run("Passes", func(t *testing.T) {
		p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
			return textResp("4"), nil
		}}

		res, err := New(p).RunText(context.Background(), support, "What is 2+2?")

		require.NoError(t, err)
		assert.Equal(t, "4", res.FinalText)
	})
}

func TestRun_GuardrailDecisionIsIdempotent(t *testing.T) {
	deny := guardrail.NewDenylist("negative_terms", []string{"hate"})
	a := agent.New("Support", agent.WithInputGuardrails(deny), agent.WithTools(addTool()))
	r := New(&mockProvider{GenerateFunc: mathModel})

	for _, input := range []string{"I hate this", "What is 3 + 4?"} {
		_, first := r.RunText(context.Background(), a, input)
		for i := 0; i < 3; i++ {
			_, again := r.RunText(context.Background(), a, input)
			assert.Equal(t, errors.Is(first, ErrGuardrailBlocked), errors.Is(again, ErrGuardrailBlocked), input)
		}
	}
}

func TestRun_OutputGuardrailDiscardsAnswer(t *testing.T) {
	const secret = "Vote for the Purple Party!"
	political := guardrail.NewFunc("political", func(ctx context.Context, text string) (guardrail.Result, error) {
		if strings.Contains(text, "Party") {
			return guardrail.Block("political content"), nil
		}
		return guardrail.Pass(), nil
	})
	a := agent.New("Support", agent.WithOutputGuardrails(political))
	p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
		return textResp(secret), nil
	}}
	events := make(chan workflow.Event, 16)

	res, err := New(p, WithEvents(events)).RunText(context.Background(), a, "Who should I vote for?")
	close(events)

	assert.Nil(t, res)
	var blocked *GuardrailBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, guardrail.Output, blocked.Direction)
	assert.NotContains(t, err.Error(), secret)

	for ev := range events {
		if text, ok := ev.(workflow.TextEvent); ok {
			assert.NotContains(t, text.Text, secret)
		}
	}
}

func TestRun_TurnLimit(t *testing.T) {
	alwaysCall := func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
		return callResp(call(fmt.Sprintf("c%d", len(req.Messages)), "add", `{"a":1,"b":1}`)), nil
	}

	t.Run("N Plus One Steps Fails", func(t *testing.T) {
		p := &mockProvider{GenerateFunc: alwaysCall}
		a := agent.New("Looper", agent.WithTools(addTool()))

		res, err := New(p).RunText(context.Background(), a, "loop", WithMaxTurns(3))

		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrTurnLimitExceeded)
		var limit *TurnLimitExceededError
		require.ErrorAs(t, err, &limit)
		assert.Equal(t, 3, limit.MaxTurns)
		assert.Equal(t, 3, p.calls())
	})

	t.Run("Exactly N Succeeds", func(t *testing.T) {
		p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
			if len(req.Messages) >= 5 {
				return textResp("done"), nil
			}
			return alwaysCall(ctx, req)
		}}
		a := agent.New("Looper", agent.WithTools(addTool()))

		res, err := New(p).RunText(context.Background(), a, "loop", WithMaxTurns(3))

		require.NoError(t, err)
		assert.Equal(t, 3, res.Turns)
	})

	t.Run("Runner Default", func(t *testing.T) {
		p := &mockProvider{GenerateFunc: alwaysCall}
		_, err := New(p, WithDefaultMaxTurns(1)).RunText(context.Background(), agent.New("x", agent.WithTools(addTool())), "go")
		assert.ErrorIs(t, err, ErrTurnLimitExceeded)
		assert.Equal(t, 1, p.calls())
	})
}

func handoffGraph(t *testing.T, opts ...agent.HandoffOption) (*agent.Agent, *agent.Agent) {
	t.Helper()
	weather := agent.New("Weather", agent.WithInstructions("weather"), agent.WithHandoffDescription("Weather questions."))
	triage := agent.New("Triage", agent.WithInstructions("triage"), agent.WithHandoffs(agent.HandoffTo(weather, opts...)))
	return triage, weather
}

func TestRun_Handoff(t *testing.T) {
	var hookFrom, hookTo string
	weather := agent.New("Weather", agent.WithInstructions("weather"))
	triage := agent.New("Triage",
		agent.WithInstructions("triage"),
		agent.WithHandoffs(agent.HandoffTo(weather)),
		agent.WithHooks(agent.Hooks{OnHandoff: func(ctx context.Context, from, to *agent.Agent) {
			hookFrom, hookTo = from.Name(), to.Name()
		}}),
	)
	p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
		if req.Instructions == "triage" {
			return callResp(call("h1", "transfer_to_weather", `{}`)), nil
		}
		return textResp("It is sunny in Paris."), nil
	}}
	events := make(chan workflow.Event, 16)

	res, err := New(p, WithEvents(events)).RunText(context.Background(), triage, "Weather in Paris?")
	close(events)

	require.NoError(t, err)
	assert.Same(t, weather, res.LastAgent)
	assert.Equal(t, "It is sunny in Paris.", res.FinalText)
	assert.Equal(t, "Triage", hookFrom)
	assert.Equal(t, "Weather", hookTo)

	require.Len(t, p.requests, 2)
	assert.Equal(t, "transfer_to_weather", p.requests[0].Tools[0].Name)
	handoffResult := lastMessage(&p.requests[1])
	assert.Equal(t, provider.RoleTool, handoffResult.Role)
	assert.JSONEq(t, `{"assistant":"Weather"}`, handoffResult.Content)

	var sawHandoff bool
	for ev := range events {
		if h, ok := ev.(workflow.HandoffEvent); ok {
			sawHandoff = true
			assert.Equal(t, "Triage", h.From)
			assert.Equal(t, "Weather", h.To)
		}
	}
	assert.True(t, sawHandoff)
}

func TestRun_MultipleHandoffsFirstWins(t *testing.T) {
	weather := agent.New("Weather", agent.WithInstructions("weather"))
	hotel := agent.New("Hotel", agent.WithInstructions("hotel"))
	triage := agent.New("Triage", agent.WithInstructions("triage"),
		agent.WithHandoffs(agent.HandoffTo(weather), agent.HandoffTo(hotel)))
	p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
		if req.Instructions == "triage" {
			return callResp(
				call("h1", "transfer_to_hotel", `{}`),
				call("h2", "transfer_to_weather", `{}`),
			), nil
		}
		return textResp(req.Instructions), nil
	}}

	res, err := New(p).RunText(context.Background(), triage, "both please")

	require.NoError(t, err)
	assert.Same(t, hotel, res.LastAgent)
	assert.Equal(t, "hotel", res.FinalText)
	assert.Equal(t, multipleHandoffs, res.History[3].Content)
	assert.Equal(t, "h2", res.History[3].ToolCallID)
}

func TestRun_DisabledHandoffNotOffered(t *testing.T) {
	type user struct{ Age int }
	triage, _ := handoffGraph(t, agent.WithEnabled(func(ctx context.Context) bool {
		u, ok := runctx.From[*user](ctx)
		return ok && u.Age > 25
	}))
	p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
		return textResp("ok"), nil
	}}
	r := New(p)

	_, err := r.RunText(context.Background(), triage, "hi", WithState(&user{Age: 18}))
	require.NoError(t, err)
	assert.Empty(t, p.requests[0].Tools)

	_, err = r.RunText(context.Background(), triage, "hi", WithState(&user{Age: 30}))
	require.NoError(t, err)
	require.Len(t, p.requests[1].Tools, 1)
}

func TestRun_HandoffInputFilter(t *testing.T) {
	triage, weather := handoffGraph(t, agent.WithInputFilter(agent.RemoveToolItems))
	p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
		if req.Instructions == "triage" {
			return callResp(call("h1", "transfer_to_weather", `{}`)), nil
		}
		for _, m := range req.Messages {
			if m.Role == provider.RoleTool || len(m.ToolCalls) > 0 {
				return textResp("saw tool items"), nil
			}
		}
		return textResp("clean history"), nil
	}}

	res, err := New(p).RunText(context.Background(), triage, "Weather?")

	require.NoError(t, err)
	assert.Same(t, weather, res.LastAgent)
	assert.Equal(t, "clean history", res.FinalText)
	// NewItems still records the handoff.
	assert.Len(t, res.NewItems, 3)
}

func TestRun_HandoffChainBoundedByTurns(t *testing.T) {
	var a, b *agent.Agent
	a = agent.New("A", agent.WithInstructions("a"), agent.WithHandoffs(agent.HandoffLater("B", func() *agent.Agent { return b })))
	b = agent.New("B", agent.WithInstructions("b"), agent.WithHandoffs(agent.HandoffLater("A", func() *agent.Agent { return a })))
	p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
		return callResp(call("h", req.Tools[0].Name, `{}`)), nil
	}}

	_, err := New(p).RunText(context.Background(), a, "ping pong", WithMaxTurns(4))

	assert.ErrorIs(t, err, ErrTurnLimitExceeded)
	assert.Equal(t, 4, p.calls())
}

func TestRun_ToolErrors(t *testing.T) {
	t.Run("Ordinary Error Fed Back", func(t *testing.T) {
		flaky := tool.NewFunction("lookup", "Lookup", func(ctx context.Context, req struct{}) (string, error) {
			return "", errors.New("service down")
		})
		p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
			if last := lastMessage(req); last.Role == provider.RoleTool {
				return textResp("Sorry: " + last.Content), nil
			}
			return callResp(call("c", "lookup", `{}`)), nil
		}}

		res, err := New(p).RunText(context.Background(), agent.New("x", agent.WithTools(flaky)), "look it up")

		require.NoError(t, err)
		assert.Equal(t, "Sorry: Error: service down", res.FinalText)
	})

	t.Run("Fatal Error Aborts", func(t *testing.T) {
		broken := tool.NewFunction("weather", "Weather", func(ctx context.Context, req struct{}) (string, error) {
			return "", tool.Fatal(errors.New("OPENWEATHER_API_KEY is not set"))
		})
		p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
			return callResp(call("c", "weather", `{}`)), nil
		}}

		_, err := New(p).RunText(context.Background(), agent.New("x", agent.WithTools(broken)), "weather?")

		var toolErr *ToolError
		require.ErrorAs(t, err, &toolErr)
		assert.Equal(t, "weather", toolErr.Tool)
		assert.ErrorIs(t, err, tool.ErrFatal)
	})
}

func TestRun_ToolHooks(t *testing.T) {
	var started, ended []string
	a := agent.New("Math", agent.WithTools(addTool()), agent.WithHooks(agent.Hooks{
		OnToolStart: func(ctx context.Context, a *agent.Agent, name string) { started = append(started, name) },
		OnToolEnd: func(ctx context.Context, a *agent.Agent, name, result string) {
			ended = append(ended, name+"="+result)
		},
	}))

	_, err := New(&mockProvider{GenerateFunc: mathModel}).RunText(context.Background(), a, "What is 3 + 4?")

	require.NoError(t, err)
	assert.Equal(t, []string{"add"}, started)
	assert.Equal(t, []string{"add=7"}, ended)
}

type verdict struct {
	IsPolitical bool   `json:"is_political"`
	Reasoning   string `json:"reasoning"`
}

func TestRun_StructuredOutput(t *testing.T) {
	checker := agent.New("Checker", agent.WithOutput(agent.OutputOf[verdict]("verdict")))

	t.Run("Parses Fenced JSON", func(t *testing.T) {
		p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
			require.NotNil(t, req.Output)
			assert.Equal(t, "verdict", req.Output.Name)
			return textResp("```json\n{\"is_political\": true, \"reasoning\": \"elections\"}\n```"), nil
		}}

		res, err := New(p).RunText(context.Background(), checker, "Who won the election?")

		require.NoError(t, err)
		require.NotNil(t, res.FinalObject)
		var v verdict
		require.NoError(t, res.Decode(&v))
		assert.True(t, v.IsPolitical)
		assert.Equal(t, "elections", v.Reasoning)
	})

	t.Run("Parse Failure Keeps Text", func(t *testing.T) {
		p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
			return textResp("I think it is political."), nil
		}}

		res, err := New(p).RunText(context.Background(), checker, "Who won?")

		require.NoError(t, err)
		assert.Nil(t, res.FinalObject)
		assert.Equal(t, "I think it is political.", res.FinalText)
		assert.ErrorIs(t, res.Decode(&verdict{}), ErrNoFinalObject)
	})
}

func TestRun_DynamicInstructionsAndSettings(t *testing.T) {
	type user struct{ Name string }
	a := agent.New("Greeter",
		agent.WithDynamicInstructions(func(ctx context.Context, a *agent.Agent) string {
			u, _ := runctx.From[*user](ctx)
			return "Greet " + u.Name
		}),
		agent.WithSettings(provider.ModelSettings{MaxTokens: 50}),
	)
	p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
		return textResp("Hello!"), nil
	}}
	r := New(p, WithDefaultSettings(provider.ModelSettings{Temperature: provider.Float32(0.3), MaxTokens: 1000}))

	_, err := r.RunText(context.Background(), a, "hi",
		WithState(&user{Name: "Ada"}),
		WithSettings(provider.ModelSettings{ToolChoice: provider.ToolChoiceNone}),
		WithRunID("run-1"),
	)

	require.NoError(t, err)
	req := p.requests[0]
	assert.Equal(t, "Greet Ada", req.Instructions)
	assert.Equal(t, float32(0.3), *req.Settings.Temperature)
	assert.Equal(t, 50, req.Settings.MaxTokens)
	assert.Equal(t, provider.ToolChoiceNone, req.Settings.ToolChoice)
}

func TestRun_ProviderErrorWrapped(t *testing.T) {
	p := &mockProvider{GenerateFunc: func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
		return nil, provider.ErrorForStatus(429, "quota", nil)
	}}

	_, err := New(p).RunText(context.Background(), agent.New("x"), "hi")

	assert.ErrorIs(t, err, provider.ErrRateLimit)
	assert.Contains(t, err.Error(), `agent "x"`)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &mockProvider{GenerateFunc: mathModel}

	_, err := New(p).RunText(ctx, agent.New("x"), "hi")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.calls())
}

func TestRun_DuplicateToolNames(t *testing.T) {
	a := agent.New("x", agent.WithTools(addTool(), addTool()))
	_, err := New(&mockProvider{GenerateFunc: mathModel}).RunText(context.Background(), a, "hi")
	assert.Error(t, err)
}

func TestRun_EmitsDoneAndSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	events := make(chan workflow.Event, 32)
	deny := guardrail.NewDenylist("deny", []string{"hate"})
	a := agent.New("Math", agent.WithTools(addTool()), agent.WithInputGuardrails(deny))

	_, err := New(&mockProvider{GenerateFunc: mathModel}, WithTracer(tp.Tracer("test")), WithEvents(events)).
		RunText(context.Background(), a, "What is 3 + 4?")
	close(events)
	require.NoError(t, err)

	names := map[string]int{}
	for _, s := range sr.Ended() {
		names[s.Name()]++
	}
	assert.Equal(t, 1, names["turnkit.run"])
	assert.Equal(t, 2, names["turnkit.model"])
	assert.Equal(t, 1, names["turnkit.tool"])
	assert.Equal(t, 1, names["turnkit.guardrail"])

	var kinds []string
	for ev := range events {
		kinds = append(kinds, fmt.Sprintf("%T", ev))
	}
	require.NotEmpty(t, kinds)
	assert.Equal(t, "workflow.GuardrailEvent", kinds[0])
	assert.Equal(t, "workflow.DoneEvent", kinds[len(kinds)-1])
	assert.Contains(t, kinds, "workflow.ToolStartEvent")
	assert.Contains(t, kinds, "workflow.TextEvent")
}

func TestExtractJSONObject(t *testing.T) {
	got, err := ExtractJSONObject("Sure! {\"a\": {\"b\": 1}} hope that helps")
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, got)

	_, err = ExtractJSONObject("no json here")
	assert.Error(t, err)

	_, err = ExtractJSONObject("} backwards {")
	assert.Error(t, err)
}
