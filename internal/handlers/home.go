package handlers

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/fostercare-aficionado/chat/internal/chatview"
	"github.com/google/uuid"
)

type message struct {
	ID        string
	Role      string
	Content   template.HTML
	Timestamp string

	StreamingState string
}

type homePageData struct {
	Messages []message
	Busy     bool
}

// HandleHome renders the chat page for the caller's session, starting a new session with a fresh
// conversation when the browser has none.
func (m Main) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	sess := m.session(w, r)

	err := m.templates.ExecuteTemplate(w, "home.html", m.pageData(sess.view.Snapshot()))
	if err != nil {
		m.logger.Error("Failed to render home", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// session returns the session named by the request cookie, creating one if needed.
func (m Main) session(w http.ResponseWriter, r *http.Request) *session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := m.sessions.get(c.Value); ok {
			return sess
		}
	}

	sess := &session{
		id:   uuid.New().String(),
		view: m.newView(),
	}
	sess.unsubscribe = sess.view.Subscribe(func(snap chatview.Snapshot) {
		m.publish(sess.id, snap)
	})
	m.sessions.add(sess)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	m.logger.Debug("Started session", slog.String("session", sess.id))

	return sess
}

func (m Main) pageData(snap chatview.Snapshot) homePageData {
	msgs := make([]message, len(snap.Messages))
	for i, msg := range snap.Messages {
		msgs[i] = message{
			ID:             msg.ID,
			Role:           string(msg.Role),
			Content:        m.renderContent(msg),
			Timestamp:      msg.Clock(),
			StreamingState: string(msg.StreamingState),
		}
	}
	return homePageData{
		Messages: msgs,
		Busy:     snap.Busy,
	}
}
