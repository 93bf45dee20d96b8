// Package ui implements the chat front-ends: a full-screen Bubble Tea program
// for terminals and a line console for pipes and the --line flag.
package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Cyclone1070/turnkit/internal/ui/services"
	"github.com/Cyclone1070/turnkit/internal/ui/views"
	"github.com/chzyer/readline"
)

const defaultWidth = 80

type lineSource interface {
	ReadLine(prompt string) (string, error)
	Output() io.Writer
	Close() error
}

// Console implements UserInterface on a terminal line editor.
type Console struct {
	src      lineSource
	renderer services.MarkdownRenderer
	width    int
	quiet    bool

	mu sync.Mutex
}

type Option func(*Console)

// WithRenderer sets the markdown renderer used for answers.
func WithRenderer(r services.MarkdownRenderer) Option {
	return func(c *Console) { c.renderer = r }
}

func WithWidth(width int) Option {
	return func(c *Console) {
		if width > 0 {
			c.width = width
		}
	}
}

// WithQuiet suppresses status lines.
func WithQuiet(quiet bool) Option {
	return func(c *Console) { c.quiet = quiet }
}

// NewConsole opens a readline editor when stdin and stdout are terminals
// and falls back to buffered stdio otherwise.
func NewConsole(historyFile string, opts ...Option) *Console {
	var src lineSource
	if IsTerminal() {
		if rl, err := newReadlineSource(historyFile); err == nil {
			src = rl
		}
	}
	if src == nil {
		src = &stdioSource{reader: bufio.NewReader(os.Stdin), out: os.Stdout}
	}
	return newConsole(src, opts...)
}

// NewStreamConsole reads lines from in and writes to out.
func NewStreamConsole(in io.Reader, out io.Writer, opts ...Option) *Console {
	return newConsole(&stdioSource{reader: bufio.NewReader(in), out: out}, opts...)
}

func newConsole(src lineSource, opts ...Option) *Console {
	c := &Console{src: src, width: defaultWidth}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) ReadInput(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.src.ReadLine(prompt)
}

func (c *Console) WriteStatus(phase string, message string) {
	if c.quiet {
		return
	}
	c.println(views.RenderStatus(phase, message))
}

func (c *Console) WriteMessage(agent string, content string) {
	c.println(views.FormatAnswer(agent, content, c.width, c.renderer))
}

func (c *Console) WriteNotice(phase string, content string) {
	c.println(views.FormatNotice(phase, content))
}

// Interrupts is nil: in a line console Ctrl+C during a turn arrives as SIGINT.
func (c *Console) Interrupts() <-chan struct{} { return nil }

func (c *Console) Close() error {
	return c.src.Close()
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.src.Output(), s)
}

func isTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

type readlineSource struct {
	rl *readline.Instance
}

func newReadlineSource(historyFile string) (*readlineSource, error) {
	historyFile = strings.TrimSpace(historyFile)
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0o755); err != nil {
			return nil, fmt.Errorf("ui: create history dir: %w", err)
		}
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, err
	}
	return &readlineSource{rl: rl}, nil
}

func (r *readlineSource) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if err == nil {
		return strings.TrimSpace(line), nil
	}
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupted
	}
	return "", err
}

func (r *readlineSource) Output() io.Writer { return r.rl.Stdout() }

func (r *readlineSource) Close() error { return r.rl.Close() }

type stdioSource struct {
	reader *bufio.Reader
	out    io.Writer
}

func (s *stdioSource) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(s.out, prompt)
	}
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *stdioSource) Output() io.Writer { return s.out }

func (s *stdioSource) Close() error { return nil }
