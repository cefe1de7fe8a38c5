package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// NewAPIProxy forwards requests under /api/ to the policy assistant API at target. Responses are
// flushed as they arrive so streamed replies reach the client chunk by chunk.
func NewAPIProxy(target *url.URL, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("module", "proxy"))

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.FlushInterval = -1
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("Proxy request failed",
			slog.String("path", r.URL.Path),
			slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
	return proxy
}
