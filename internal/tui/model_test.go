package tui_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fostercare-aficionado/chat/internal/chatview"
	"github.com/fostercare-aficionado/chat/internal/tui"
)

type mockTransport struct {
	reply string
}

func (m mockTransport) Send(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(m.reply)), nil
}

func update(t *testing.T, m tea.Model, msg tea.Msg) tea.Model {
	t.Helper()

	next, _ := m.Update(msg)
	return next
}

func typeText(t *testing.T, m tea.Model, text string) tea.Model {
	t.Helper()

	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestViewBeforeResize(t *testing.T) {
	m := tui.New(context.Background(), chatview.New(mockTransport{}), "notty")
	assert.Equal(t, "Loading...", m.View())
}

func TestViewShowsGreeting(t *testing.T) {
	var m tea.Model = tui.New(context.Background(), chatview.New(mockTransport{}), "notty")
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	assert.Contains(t, view, "Foster Care Aficionado")
	assert.Contains(t, view, "Hello!")
	assert.Contains(t, view, "Assistant")
}

func TestSubmitAndStream(t *testing.T) {
	v := chatview.New(mockTransport{reply: "Reunification is the goal."})

	msgs := make(chan tea.Msg, 64)
	unsubscribe := tui.Subscribe(v, func(msg tea.Msg) { msgs <- msg })
	defer unsubscribe()

	var m tea.Model = tui.New(context.Background(), v, "notty")
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = typeText(t, m, "What is reunification?")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	deadline := time.After(5 * time.Second)
	for {
		select {
		case msg := <-msgs:
			m = update(t, m, msg)
			if snap, ok := msg.(tui.SnapshotMsg); ok && !snap.Busy {
				view := m.View()
				assert.Contains(t, view, "You")
				assert.Contains(t, view, "What is reunification?")
				assert.Contains(t, view, "Reunification is the goal.")
				assert.NotContains(t, view, "Thinking...")
				return
			}
		case <-deadline:
			require.FailNow(t, "reply did not finish")
		}
	}
}

func TestEmptySubmitIsIgnored(t *testing.T) {
	v := chatview.New(mockTransport{reply: "unused"})

	var m tea.Model = tui.New(context.Background(), v, "notty")
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m = typeText(t, m, "   ")
	update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Len(t, v.Snapshot().Messages, 1)
	assert.False(t, v.Busy())
}

func TestBusySnapshotShowsThinking(t *testing.T) {
	v := chatview.New(mockTransport{})

	var m tea.Model = tui.New(context.Background(), v, "notty")
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	snap := v.Snapshot()
	snap.Busy = true
	m = update(t, m, tui.SnapshotMsg(snap))

	assert.Contains(t, m.View(), "Thinking...")
}

func TestQuitKeys(t *testing.T) {
	m := tui.New(context.Background(), chatview.New(mockTransport{}), "notty")

	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		_, cmd := m.Update(tea.KeyMsg{Type: key})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	}
}
