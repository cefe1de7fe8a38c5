package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// DefaultEndpointURL is where the policy assistant API listens in a local deployment.
const DefaultEndpointURL = "http://localhost:8000/api/chat"

// Endpoint sends user turns to the policy assistant API. The API answers each turn with a plain
// text body streamed as it is generated, without any framing.
type Endpoint struct {
	url string

	client *http.Client

	logger *slog.Logger
}

// StatusError reports a non-success HTTP response. Callers treat every status the same way; the
// code is kept for logging.
type StatusError struct {
	StatusCode int
	Status     string
}

type endpointChatRequest struct {
	UserMessage string `json:"user_message"`
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status: %s", e.Status)
}

// NewEndpoint creates an Endpoint posting to url. A nil client uses a client without an overall
// timeout, since replies are streamed for as long as the assistant keeps generating; the caller's
// context bounds each request instead.
func NewEndpoint(url string, client *http.Client, logger *slog.Logger) Endpoint {
	if url == "" {
		url = DefaultEndpointURL
	}
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return Endpoint{
		url:    url,
		client: client,
		logger: logger.With(slog.String("module", "endpoint")),
	}
}

// Send posts text as a JSON chat request and returns the streamed reply body.
func (e Endpoint) Send(ctx context.Context, text string) (io.ReadCloser, error) {
	jsonBody, err := json.Marshal(endpointChatRequest{UserMessage: text})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()

		statusErr := &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
		e.logger.Debug("Chat endpoint rejected request", slog.Int("status", resp.StatusCode))
		return nil, statusErr
	}

	return resp.Body, nil
}

// IsStatusError reports whether err was caused by a non-success response.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
