package ui

import (
	"context"
	"io"
	"os"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cyclone1070/turnkit/internal/ui/services"
)

// UI implements UserInterface as a full-screen Bubble Tea program.
type UI struct {
	program *tea.Program

	// Chat loop -> UI
	inputReq chan inputRequest
	updates  chan tea.Msg

	// UI -> chat loop
	inputResp  chan string
	interrupts chan struct{}

	readyChan chan struct{}
	done      chan struct{}
	started   atomic.Bool
}

type inputRequest struct {
	prompt string
}

// Messages the chat loop pushes to the model. They share one channel so the
// transcript keeps the order they were written in.
type statusMsg struct {
	phase   string
	message string
}

type answerMsg struct {
	agent   string
	content string
}

type noticeMsg struct {
	phase   string
	content string
}

// NewUI creates the Bubble Tea front-end. It does nothing until Start.
func NewUI(renderer services.MarkdownRenderer, spinnerFactory SpinnerFactory, quiet bool, opts ...tea.ProgramOption) *UI {
	u := &UI{
		inputReq:   make(chan inputRequest),
		updates:    make(chan tea.Msg, 64),
		inputResp:  make(chan string, 1),
		interrupts: make(chan struct{}, 1),
		readyChan:  make(chan struct{}),
		done:       make(chan struct{}),
	}

	model := newBubbleTeaModel(
		u.inputReq,
		u.inputResp,
		u.updates,
		u.interrupts,
		u.readyChan,
		renderer,
		spinnerFactory,
		quiet,
	)
	u.program = tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	return u
}

// IsTerminal reports whether stdin and stdout are both terminals.
func IsTerminal() bool {
	return isTTY(os.Stdin) && isTTY(os.Stdout)
}

// Start runs the program until the user quits or Close is called.
func (u *UI) Start() error {
	u.started.Store(true)
	defer close(u.done)
	_, err := u.program.Run()
	return err
}

// Ready is closed once the program accepts requests.
func (u *UI) Ready() <-chan struct{} {
	return u.readyChan
}

// Done is closed when the program has exited.
func (u *UI) Done() <-chan struct{} {
	return u.done
}

// ReadInput waits for the user to submit a line. It returns io.EOF once the
// user has quit the program.
func (u *UI) ReadInput(ctx context.Context, prompt string) (string, error) {
	// an interrupt pressed after the previous turn finished is stale
	select {
	case <-u.interrupts:
	default:
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-u.done:
		return "", io.EOF
	case u.inputReq <- inputRequest{prompt: prompt}:
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-u.done:
		return "", io.EOF
	case line := <-u.inputResp:
		return line, nil
	}
}

func (u *UI) WriteStatus(phase string, message string) {
	u.send(statusMsg{phase: phase, message: message})
}

func (u *UI) WriteMessage(agent string, content string) {
	u.send(answerMsg{agent: agent, content: content})
}

func (u *UI) WriteNotice(phase string, content string) {
	u.send(noticeMsg{phase: phase, content: content})
}

// Interrupts fires when the user presses Ctrl+C or Esc during a turn.
func (u *UI) Interrupts() <-chan struct{} {
	return u.interrupts
}

// Close quits the program and waits for the terminal to be restored.
func (u *UI) Close() error {
	if !u.started.Load() {
		return nil
	}
	select {
	case <-u.done:
		return nil
	default:
	}
	u.program.Quit()
	<-u.done
	return nil
}

func (u *UI) send(msg tea.Msg) {
	select {
	case u.updates <- msg:
	case <-u.done:
	}
}
