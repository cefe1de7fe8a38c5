package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fostercare-aficionado/chat/internal/chatview"
)

// HandleChats submits the "message" form field as a user turn of the caller's session. The reply
// is not part of the response: the user turn, the streamed reply and the busy state all reach the
// browser through the session's SSE stream.
//
// It answers 202 when the turn was accepted, 400 for a blank message, 409 while a previous turn is
// still in flight and 405 for methods other than POST.
func (m Main) HandleChats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	c, err := r.Cookie(sessionCookie)
	if err != nil {
		http.Error(w, "Session is required", http.StatusBadRequest)
		return
	}
	sess, ok := m.sessions.get(c.Value)
	if !ok {
		http.Error(w, "Session expired, reload the page", http.StatusBadRequest)
		return
	}

	msg := r.FormValue("message")

	// The sequence outlives this request, so it runs under the server context.
	if _, err := sess.view.Submit(m.ctx, msg); err != nil {
		switch {
		case errors.Is(err, chatview.ErrEmptyMessage):
			http.Error(w, "Message is required", http.StatusBadRequest)
		case errors.Is(err, chatview.ErrBusy):
			http.Error(w, "A reply is still in progress", http.StatusConflict)
		default:
			m.logger.Error("Failed to submit message",
				slog.String("session", sess.id),
				slog.String(errLoggerKey, err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// HandleSSE streams the caller's session updates.
func (m Main) HandleSSE(w http.ResponseWriter, r *http.Request) {
	m.sseSrv.ServeHTTP(w, r)
}

// HandleHealth reports that the server is up.
func (m Main) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
