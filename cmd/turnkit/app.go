package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Cyclone1070/turnkit/internal/catalog"
	"github.com/Cyclone1070/turnkit/internal/config"
	"github.com/Cyclone1070/turnkit/internal/provider"
)

// Version is set at build time.
var Version = "dev"

// App is the turnkit command tree.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer
	// stdin replaces the terminal line editor when set.
	stdin io.Reader

	loadConfig  func() (*config.Config, error)
	newProvider func(context.Context, *config.Config) (provider.Provider, error)

	flags flags
}

type flags struct {
	agent     string
	maxTurns  int
	session   string
	db        string
	userName  string
	userRole  string
	userAge   int
	trace     bool
	quiet     bool
	plain     bool
	logLevel  string
	failClose bool
	line      bool
}

func New() *App {
	app := &App{
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		loadConfig:  config.Load,
		newProvider: newProvider,
	}

	app.root = &cobra.Command{
		Use:   "turnkit",
		Short: "Chat with tool-using agents",
		Long: `turnkit runs conversational agents that call tools, hand off to each
other and are gated by input and output guardrails.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := app.root.PersistentFlags()
	pf.IntVar(&app.flags.maxTurns, "max-turns", 0, "model invocations allowed per turn (default from config)")
	pf.StringVar(&app.flags.session, "session", "", "session id; history is kept per session")
	pf.StringVar(&app.flags.db, "db", "", "SQLite history database (default from config, empty keeps history in memory)")
	pf.StringVar(&app.flags.userName, "user-name", "guest", "name of the chatting user")
	pf.StringVar(&app.flags.userRole, "user-role", catalog.RoleBasic, "user role: admin, \"super user\" or basic")
	pf.IntVar(&app.flags.userAge, "user-age", 30, "user age, used by handoff permissions")
	pf.BoolVar(&app.flags.trace, "trace", false, "write OpenTelemetry spans to stderr")
	pf.BoolVar(&app.flags.quiet, "quiet", false, "hide tool and handoff status lines")
	pf.BoolVar(&app.flags.plain, "plain", false, "print answers without markdown rendering")
	pf.StringVar(&app.flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	pf.BoolVar(&app.flags.failClose, "fail-closed", false, "block when a classifier guardrail returns no verdict")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newAgentsCmd(),
		app.newChatCmd(),
		app.newRunCmd(),
		app.newSessionsCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// WithInput reads chat lines from r instead of the terminal.
func (a *App) WithInput(r io.Reader) *App {
	a.stdin = r
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	// SIGINT only abandons the running turn, see turnContext.
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "turnkit version %s\n", Version)
		},
	}
}

var keyStyle = lipgloss.NewStyle().Bold(true)

func (a *App) newAgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the agents you can chat with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalog.New(catalog.Deps{})
			for _, key := range cat.Keys() {
				e, _ := cat.Get(key)
				fmt.Fprintf(a.stdout, "%s  %s (%s)\n", keyStyle.Render(fmt.Sprintf("%-9s", key)), e.Description, e.Agent.Name())
				if len(e.Requires) > 0 {
					fmt.Fprintf(a.stdout, "%11s requires %v\n", "", e.Requires)
				}
			}
			return nil
		},
	}
}
