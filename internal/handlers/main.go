package handlers

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	chatui "github.com/fostercare-aficionado/chat"
	"github.com/fostercare-aficionado/chat/internal/chatview"
	"github.com/tmaxmax/go-sse"
	"github.com/yuin/goldmark"
)

// ViewFactory creates the chat view for a new browser session.
type ViewFactory func() *chatview.View

// Main serves the chat page. It keeps one chat view per browser session and pushes every change of
// a view to that session's browser through server-sent events.
type Main struct {
	sseSrv    *sse.Server
	templates *template.Template
	markdown  goldmark.Markdown

	newView  ViewFactory
	sessions *sessions

	// ctx bounds every request/stream sequence started by this server.
	ctx context.Context

	logger *slog.Logger
}

const (
	errLoggerKey = "err"

	sessionCookie = "chat_session"
)

// SSE event types for real-time updates.
var (
	messagesSSEType = sse.Type("messages")
	closeSSEType    = sse.Type("closeChat")
)

// NewMain creates a new Main instance. ctx is the lifetime of the server: cancelling it aborts every
// in-flight reply. Sessions idle for longer than sessionTTL may be evicted by EvictIdle.
func NewMain(ctx context.Context, newView ViewFactory, sessionTTL time.Duration, logger *slog.Logger) (Main, error) {
	// We parse templates from three distinct directories to separate layout, pages, and partial views
	tmpl, err := template.ParseFS(
		chatui.TemplateFS,
		"templates/layout/*.html",
		"templates/pages/*.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return Main{}, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := newSessions(sessionTTL)

	return Main{
		sseSrv: &sse.Server{
			OnSession: func(ss *sse.Session) (sse.Subscription, bool) {
				c, err := ss.Req.Cookie(sessionCookie)
				if err != nil {
					return sse.Subscription{}, false
				}
				if _, ok := s.get(c.Value); !ok {
					return sse.Subscription{}, false
				}

				return sse.Subscription{
					Client:      ss,
					LastEventID: ss.LastEventID,
					Topics:      []string{sse.DefaultTopic, sessionTopic(c.Value)},
				}, true
			},
		},
		templates: tmpl,
		markdown:  newMarkdown(),
		newView:   newView,
		sessions:  s,
		ctx:       ctx,
		logger:    logger.With(slog.String("module", "handlers")),
	}, nil
}

func sessionTopic(sessionID string) string {
	return fmt.Sprintf("session-%s", sessionID)
}

// publish renders snap and sends it to the browser of the given session.
func (m Main) publish(sessionID string, snap chatview.Snapshot) {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, "messages", m.pageData(snap)); err != nil {
		m.logger.Error("Failed to render messages",
			slog.String("session", sessionID),
			slog.String(errLoggerKey, err.Error()))
		return
	}

	msg := sse.Message{
		Type: messagesSSEType,
	}
	msg.AppendData(buf.String())
	if err := m.sseSrv.Publish(&msg, sessionTopic(sessionID)); err != nil {
		m.logger.Error("Failed to publish messages",
			slog.String("session", sessionID),
			slog.String(errLoggerKey, err.Error()))
	}
}

// EvictIdle drops sessions that have not been seen for longer than the session TTL and have no
// reply in flight. It returns the number of evicted sessions.
func (m Main) EvictIdle(now time.Time) int {
	return m.sessions.evict(now)
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (m Main) RunEviction(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.EvictIdle(now); n > 0 {
				m.logger.Info("Evicted idle sessions", slog.Int("count", n))
			}
		}
	}
}

// Shutdown gracefully terminates the Main instance's SSE server. It broadcasts a close message to all
// connected clients and waits up to 5 seconds for connections to terminate. After the timeout, any
// remaining connections are forcefully closed.
func (m Main) Shutdown(ctx context.Context) error {
	e := &sse.Message{Type: closeSSEType}
	// SSE events must carry data to be dispatched by the browser
	e.AppendData("bye")

	// We ignore the error here since we're shutting down anyway
	_ = m.sseSrv.Publish(e)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	return m.sseSrv.Shutdown(ctx)
}
