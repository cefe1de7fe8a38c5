package handlers

import (
	"io/fs"
	"net/http"

	chatui "github.com/fostercare-aficionado/chat"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires the chat endpoints, static assets, health and metrics. apiProxy, when not nil,
// serves everything under /api/.
func (m Main) Router(apiProxy http.Handler) (http.Handler, error) {
	staticFS, err := fs.Sub(chatui.StaticFS, "static")
	if err != nil {
		return nil, err
	}
	fileServer := http.FileServer(http.FS(staticFS))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	r.Get("/", m.HandleHome)
	r.HandleFunc("/chats", m.HandleChats)
	r.Get("/sse/messages", m.HandleSSE)
	r.Get("/healthz", m.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())

	if apiProxy != nil {
		r.Handle("/api/*", apiProxy)
	}

	return r, nil
}
