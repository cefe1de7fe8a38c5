// Package tui renders a chat view in the terminal with Bubble Tea.
package tui

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/fostercare-aficionado/chat/internal/chatview"
)

// SnapshotMsg carries a chat view change into the Bubble Tea loop.
type SnapshotMsg chatview.Snapshot

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx  context.Context
	chat *chatview.View
	snap chatview.Snapshot

	// Dimensions
	width  int
	height int
	ready  bool

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	glamourStyle string
	renderer     *glamour.TermRenderer

	styles styles
	status string
}

// Layout rows outside the viewport: title, subtitle, blank, status, input.
const chromeHeight = 5

// Subscribe forwards changes of v to send, typically tea.Program.Send. Deliveries happen on a
// separate goroutine because the view notifies synchronously from Submit, which runs inside
// Update, and Program.Send blocks until the event loop is free. Snapshots carry the whole state,
// so when send falls behind only the newest pending one is delivered. The returned function stops
// forwarding.
func Subscribe(v *chatview.View, send func(tea.Msg)) func() {
	f := &forwarder{
		send: send,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go f.loop()

	unsubscribe := v.Subscribe(f.push)
	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			close(f.done)
		})
	}
}

type forwarder struct {
	send func(tea.Msg)

	mu      sync.Mutex
	pending *chatview.Snapshot

	wake chan struct{}
	done chan struct{}
}

func (f *forwarder) push(s chatview.Snapshot) {
	f.mu.Lock()
	f.pending = &s
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

func (f *forwarder) loop() {
	for {
		select {
		case <-f.done:
			return
		case <-f.wake:
		}

		f.mu.Lock()
		s := f.pending
		f.pending = nil
		f.mu.Unlock()

		if s != nil {
			f.send(SnapshotMsg(*s))
		}
	}
}

// New creates the chat screen for v. ctx bounds every reply requested from the screen.
// glamourStyle names a glamour standard style, or "auto" to detect it from the terminal.
func New(ctx context.Context, v *chatview.View, glamourStyle string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about foster care policies..."
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	st := newStyles()
	sp.Style = st.thinking

	return Model{
		ctx:          ctx,
		chat:         v,
		snap:         v.Snapshot(),
		input:        ti,
		spinner:      sp,
		glamourStyle: glamourStyle,
		styles:       st,
	}
}

// Init starts the cursor blink and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles terminal events and chat view changes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			m.submit()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case SnapshotMsg:
		m.snap = chatview.Snapshot(msg)
		if m.snap.Busy {
			m.input.Blur()
		} else {
			cmds = append(cmds, m.input.Focus())
		}
		m.refresh()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) submit() {
	_, err := m.chat.Submit(m.ctx, m.input.Value())
	switch {
	case err == nil:
		m.status = ""
		m.input.SetValue("")
		m.input.Blur()
	case errors.Is(err, chatview.ErrBusy):
		m.status = "Still answering the previous question..."
	case errors.Is(err, chatview.ErrEmptyMessage):
		m.status = ""
	default:
		m.status = err.Error()
	}
}

func (m *Model) resize() {
	vh := m.height - chromeHeight
	if vh < 1 {
		vh = 1
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, vh)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vh
	}
	m.input.Width = m.width - len(m.input.Prompt) - 1

	m.renderer = newRenderer(m.glamourStyle, m.width)
}

// refresh re-renders the conversation and keeps the newest message in view.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func newRenderer(style string, width int) *glamour.TermRenderer {
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}

	styleOpt := glamour.WithStandardStyle(style)
	if style == "" || style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}

	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
	if err != nil {
		return nil
	}
	return r
}
