package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cyclone1070/turnkit/internal/ui/services"
	"github.com/Cyclone1070/turnkit/internal/ui/views"
)

// Rows taken by the input box and the status bar.
const chromeHeight = 4

const helpText = `Commands:
- reset: clear the session and return to the first agent
- exit, quit: leave the chat
- Ctrl+C or Esc during a turn: abandon the turn
- PgUp/PgDn: scroll`

type state struct {
	Input    textinput.Model
	Viewport viewport.Model
	Spinner  spinner.Model

	Entries []views.Entry
	// rendered caches FormatEntry output for Entries at the current width.
	rendered []string

	Width  int
	Height int

	CanSubmit     bool
	Busy          bool
	StatusPhase   string
	StatusMessage string
}

// BubbleTeaModel implements tea.Model
type BubbleTeaModel struct {
	state state

	renderer services.MarkdownRenderer
	quiet    bool

	inputReq <-chan inputRequest
	updates  <-chan tea.Msg

	inputResp  chan<- string
	interrupts chan<- struct{}

	readyChan chan<- struct{}
}

// SpinnerFactory creates the spinner shown while a turn runs.
type SpinnerFactory func() spinner.Model

// DefaultSpinner is a dot spinner.
func DefaultSpinner() spinner.Model {
	return spinner.New(spinner.WithSpinner(spinner.Dot))
}

func newBubbleTeaModel(
	inputReq <-chan inputRequest,
	inputResp chan<- string,
	updates <-chan tea.Msg,
	interrupts chan<- struct{},
	readyChan chan<- struct{},
	renderer services.MarkdownRenderer,
	spinnerFactory SpinnerFactory,
	quiet bool,
) BubbleTeaModel {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Focus()

	if spinnerFactory == nil {
		spinnerFactory = DefaultSpinner
	}

	return BubbleTeaModel{
		state: state{
			Input:    ti,
			Viewport: viewport.New(defaultWidth, 20),
			Spinner:  spinnerFactory(),
			Width:    defaultWidth,
		},
		renderer:   renderer,
		quiet:      quiet,
		inputReq:   inputReq,
		inputResp:  inputResp,
		updates:    updates,
		interrupts: interrupts,
		readyChan:  readyChan,
	}
}

type inputRequestMsg inputRequest

func (m BubbleTeaModel) Init() tea.Cmd {
	if m.readyChan != nil {
		close(m.readyChan)
	}

	return tea.Batch(
		textinput.Blink,
		m.state.Spinner.Tick,
		listenForInputRequests(m.inputReq),
		listenForUpdates(m.updates),
	)
}

func (m BubbleTeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		m.state.Viewport.Width = msg.Width
		m.state.Viewport.Height = max(msg.Height-chromeHeight, 1)
		m.state.Input.Width = max(msg.Width-8, 10)
		m.rerender()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.state.Spinner, cmd = m.state.Spinner.Update(msg)
		return m, cmd

	case inputRequestMsg:
		m.state.CanSubmit = true
		m.state.Busy = false
		m.state.StatusPhase = ""
		m.state.StatusMessage = ""
		m.state.Input.Prompt = msg.prompt
		return m, listenForInputRequests(m.inputReq)

	case statusMsg:
		m.state.StatusPhase = msg.phase
		m.state.StatusMessage = msg.message
		if !m.quiet {
			m.appendEntry(views.Entry{Kind: views.EntryStatus, Phase: msg.phase, Content: msg.message})
		}
		return m, listenForUpdates(m.updates)

	case answerMsg:
		m.appendEntry(views.Entry{Kind: views.EntryAnswer, Agent: msg.agent, Content: msg.content})
		return m, listenForUpdates(m.updates)

	case noticeMsg:
		m.appendEntry(views.Entry{Kind: views.EntryNotice, Phase: msg.phase, Content: msg.content})
		return m, listenForUpdates(m.updates)
	}

	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	return m, cmd
}

func (m BubbleTeaModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if !m.state.CanSubmit {
			m.interrupt()
			return m, nil
		}
		if m.state.Input.Value() != "" {
			m.state.Input.SetValue("")
			return m, nil
		}
		return m, tea.Quit

	case "ctrl+d":
		if m.state.Input.Value() == "" {
			return m, tea.Quit
		}

	case "esc":
		if !m.state.CanSubmit {
			m.interrupt()
		}
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.state.Viewport, cmd = m.state.Viewport.Update(msg)
		return m, cmd

	case "enter":
		if !m.state.CanSubmit {
			return m, nil
		}
		input := strings.TrimSpace(m.state.Input.Value())
		m.state.Input.SetValue("")
		if input == "" {
			return m, nil
		}
		if input == "/help" {
			m.appendEntry(views.Entry{Kind: views.EntryNotice, Content: helpText})
			return m, nil
		}

		m.appendEntry(views.Entry{Kind: views.EntryUser, Content: input})
		m.inputResp <- input
		m.state.CanSubmit = false
		m.state.Busy = true
		m.state.StatusPhase = views.PhaseThinking
		m.state.StatusMessage = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	return m, cmd
}

func (m *BubbleTeaModel) interrupt() {
	select {
	case m.interrupts <- struct{}{}:
	default:
	}
	m.state.StatusPhase = views.PhaseError
	m.state.StatusMessage = "Interrupting"
}

func (m BubbleTeaModel) View() string {
	return views.RenderRoot(m.state.Viewport.View(), m.state.Input.View(), views.Bar{
		Busy:    m.state.Busy,
		Spinner: m.state.Spinner.View(),
		Phase:   m.state.StatusPhase,
		Message: m.state.StatusMessage,
	})
}

func (m *BubbleTeaModel) appendEntry(e views.Entry) {
	m.state.Entries = append(m.state.Entries, e)
	m.state.rendered = append(m.state.rendered, views.FormatEntry(e, m.contentWidth(), m.renderer))
	m.updateViewport()
}

// rerender formats every entry again after a width change.
func (m *BubbleTeaModel) rerender() {
	rendered := make([]string, 0, len(m.state.Entries))
	for _, e := range m.state.Entries {
		rendered = append(rendered, views.FormatEntry(e, m.contentWidth(), m.renderer))
	}
	m.state.rendered = rendered
	m.updateViewport()
}

func (m *BubbleTeaModel) updateViewport() {
	m.state.Viewport.SetContent(views.JoinTranscript(m.state.rendered))
	m.state.Viewport.GotoBottom()
}

func (m BubbleTeaModel) contentWidth() int {
	return max(m.state.Width-4, 20)
}

func listenForInputRequests(ch <-chan inputRequest) tea.Cmd {
	return func() tea.Msg {
		return inputRequestMsg(<-ch)
	}
}

func listenForUpdates(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}
