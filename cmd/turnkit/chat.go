package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Cyclone1070/turnkit/internal/agent"
	"github.com/Cyclone1070/turnkit/internal/catalog"
	"github.com/Cyclone1070/turnkit/internal/logging"
	"github.com/Cyclone1070/turnkit/internal/provider"
	"github.com/Cyclone1070/turnkit/internal/runner"
	"github.com/Cyclone1070/turnkit/internal/session"
	"github.com/Cyclone1070/turnkit/internal/session/sqlite"
	"github.com/Cyclone1070/turnkit/internal/ui"
	"github.com/Cyclone1070/turnkit/internal/ui/services"
	"github.com/Cyclone1070/turnkit/internal/ui/views"
	"github.com/Cyclone1070/turnkit/internal/workflow"
)

const defaultAgent = "triage"

func (a *App) newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		Long: `Start an interactive chat with an agent. Type "exit" or "quit" (or press
Ctrl+D) to leave and "reset" to clear the session history. Ctrl+C during a
turn abandons that turn only.

On a terminal the chat runs full screen; --line uses a plain line editor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.chat(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&a.flags.agent, "agent", "a", defaultAgent, "agent to talk to (see `turnkit agents`)")
	cmd.Flags().BoolVar(&a.flags.line, "line", false, "use the line editor instead of the full-screen UI")
	return cmd
}

func (a *App) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <prompt>",
		Short: "Send a single prompt and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOnce(cmd.Context(), strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVarP(&a.flags.agent, "agent", "a", defaultAgent, "agent to talk to (see `turnkit agents`)")
	return cmd
}

func (a *App) newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List sessions stored in the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if cfg.Session.Path == "" {
				return fmt.Errorf("no history database configured; pass --db or set session.path")
			}
			store, err := sqlite.Open(cfg.Session.Path)
			if err != nil {
				return err
			}
			defer store.Close()
			ids, err := store.Sessions(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(a.stdout, id)
			}
			return nil
		},
	}
}

// newConsole picks the front-end. Injected input and one-shot runs use a line
// console; an interactive terminal gets the Bubble Tea UI unless --line.
func (a *App) newConsole(interactive bool) (ui.UserInterface, error) {
	var renderer services.MarkdownRenderer
	if !a.flags.plain {
		style := ""
		if a.stdin != nil {
			style = "notty"
		} else if interactive && !a.flags.line {
			// auto style queries the terminal, which the running program owns
			style = "dark"
		}
		renderer = services.NewGlamourRenderer(style)
	}

	opts := []ui.Option{ui.WithQuiet(a.flags.quiet)}
	if renderer != nil {
		opts = append(opts, ui.WithRenderer(renderer))
	}
	if a.stdin != nil {
		return ui.NewStreamConsole(a.stdin, a.stdout, opts...), nil
	}
	if !interactive || a.flags.line || !ui.IsTerminal() {
		return ui.NewConsole(historyFile(), opts...), nil
	}

	tui := ui.NewUI(renderer, ui.DefaultSpinner, a.flags.quiet)
	errc := make(chan error, 1)
	go func() { errc <- tui.Start() }()
	select {
	case <-tui.Ready():
		return tui, nil
	case err := <-errc:
		return nil, fmt.Errorf("start terminal UI: %w", err)
	}
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "turnkit", "history")
}

// start prepares a conversation with the selected agent.
func (a *App) start(ctx context.Context, console ui.UserInterface) (*conversation, *environment, *eventPump, error) {
	pump := startEventPump(console)
	env, err := a.setup(ctx, pump.events)
	if err != nil {
		pump.Close()
		return nil, nil, nil, err
	}

	entry, ok := env.catalog.Get(a.flags.agent)
	if !ok {
		env.Close(ctx)
		pump.Close()
		return nil, nil, nil, fmt.Errorf("unknown agent %q, available: %s", a.flags.agent, strings.Join(env.catalog.Keys(), ", "))
	}
	if err := requireCredentials(entry, env.cfg); err != nil {
		env.Close(ctx)
		pump.Close()
		return nil, nil, nil, err
	}

	id := a.flags.session
	if id == "" {
		id = uuid.NewString()
	}
	conv := &conversation{
		runner: env.runner,
		entry:  entry,
		active: entry.Agent,
		store:  env.store,
		id:     id,
		state: catalog.NewState(catalog.User{
			Name: a.flags.userName,
			Role: a.flags.userRole,
			Age:  a.flags.userAge,
		}),
		ui:   console,
		pump: pump,
	}
	return conv, env, pump, nil
}

func (a *App) chat(ctx context.Context) error {
	console, err := a.newConsole(true)
	if err != nil {
		return err
	}
	defer console.Close()

	conv, env, pump, err := a.start(ctx, console)
	if err != nil {
		return err
	}
	defer pump.Close()
	defer env.Close(context.WithoutCancel(ctx))

	console.WriteNotice("", fmt.Sprintf("Chatting with %s (session %s). Type \"exit\" to quit.", conv.active.Name(), conv.id))

	for {
		line, err := console.ReadInput(ctx, "You: ")
		if errors.Is(err, ui.ErrInterrupted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "reset":
			if err := conv.Reset(ctx); err != nil {
				return err
			}
			console.WriteNotice("", "Session cleared.")
			continue
		}

		if err := conv.Send(ctx, line); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, errTurnInterrupted) {
				console.WriteNotice("", "Turn interrupted.")
				continue
			}
			logging.Error().With(logging.Agent(conv.active.Name()), logging.Err(err)).Msg("turn failed")
			console.WriteNotice(views.PhaseError, err.Error())
		}
	}
}

func (a *App) runOnce(ctx context.Context, prompt string) error {
	console, err := a.newConsole(false)
	if err != nil {
		return err
	}
	defer console.Close()

	conv, env, pump, err := a.start(ctx, console)
	if err != nil {
		return err
	}
	defer pump.Close()
	defer env.Close(context.WithoutCancel(ctx))

	return conv.Send(ctx, prompt)
}

// conversation is one chat session. It owns its state and history; the
// runner is shared.
type conversation struct {
	runner *runner.Runner
	entry  catalog.Entry
	active *agent.Agent
	store  session.Store
	id     string
	state  *catalog.State
	ui     ui.UserInterface
	pump   *eventPump
}

// errTurnInterrupted is returned by Send when the user abandons the turn.
var errTurnInterrupted = errors.New("turn interrupted")

// Send runs one user turn. Guardrail trips are reported to the user and are
// not errors; the blocked exchange is not saved. An interrupted turn is not
// saved either and leaves the conversation usable.
func (c *conversation) Send(ctx context.Context, text string) error {
	history, err := c.store.Load(ctx, c.id)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	user := provider.UserMessage(text)

	turnCtx, stop := turnContext(ctx, c.ui.Interrupts())
	res, err := c.runner.Run(turnCtx, c.active, append(history, user), runner.WithState(c.state))
	interrupted := turnCtx.Err() != nil && ctx.Err() == nil
	stop()
	c.pump.Flush()
	if err != nil {
		if interrupted {
			logging.Info().With(logging.Agent(c.active.Name())).Msg("turn interrupted")
			return errTurnInterrupted
		}
		var blocked *runner.GuardrailBlockedError
		if errors.As(err, &blocked) {
			logging.Info().With(logging.Agent(blocked.Agent), logging.Direction(string(blocked.Direction)), logging.Guardrail(blocked.Guardrail)).Msg("turn blocked")
			c.ui.WriteNotice(views.PhaseBlocked, c.entry.Refusal(blocked))
			return nil
		}
		return err
	}

	if err := c.store.Append(ctx, c.id, append([]provider.Message{user}, res.NewItems...)...); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	c.active = res.LastAgent
	c.ui.WriteMessage(res.LastAgent.Name(), answerText(res))
	return nil
}

// turnContext derives the context of one turn. SIGINT or a front-end
// interrupt cancels it without touching the parent.
func turnContext(parent context.Context, interrupts <-chan struct{}) (context.Context, context.CancelFunc) {
	sigCtx, stopSignals := signal.NotifyContext(parent, os.Interrupt)
	ctx, cancel := context.WithCancel(sigCtx)
	go func() {
		select {
		case <-interrupts:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		cancel()
		stopSignals()
	}
}

// Reset clears the history and returns to the entry agent.
func (c *conversation) Reset(ctx context.Context) error {
	c.active = c.entry.Agent
	return c.store.Reset(ctx, c.id)
}

// answerText prefers the "response" field of a structured answer.
func answerText(res *runner.Result) string {
	if obj, ok := res.FinalObject.(map[string]any); ok {
		if s, ok := obj["response"].(string); ok && s != "" {
			return s
		}
	}
	return res.FinalText
}

// eventPump forwards runner events to the UI as status lines.
type eventPump struct {
	events chan workflow.Event
	flush  chan chan struct{}
	done   chan struct{}
}

func startEventPump(u ui.UserInterface) *eventPump {
	p := &eventPump{
		events: make(chan workflow.Event),
		flush:  make(chan chan struct{}),
		done:   make(chan struct{}),
	}
	go p.run(u)
	return p
}

func (p *eventPump) run(u ui.UserInterface) {
	for {
		select {
		case ev := <-p.events:
			if phase, msg, ok := views.DescribeEvent(ev); ok {
				u.WriteStatus(phase, msg)
			}
		case ack := <-p.flush:
			close(ack)
		case <-p.done:
			return
		}
	}
}

// Flush waits until every event sent so far has been written. The events
// channel is unbuffered, so once Run returns its events were all received.
func (p *eventPump) Flush() {
	ack := make(chan struct{})
	p.flush <- ack
	<-ack
}

func (p *eventPump) Close() {
	close(p.done)
}
