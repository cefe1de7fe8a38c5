package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// Ollama sends user turns straight to an Ollama server. It lets the chat client run against a
// local model when the policy assistant API is not available.
type Ollama struct {
	host         string
	model        string
	systemPrompt string

	params LLMParameters

	client *api.Client

	logger *slog.Logger
}

// NewOllama creates a new Ollama instance with the specified host URL and model name. The host
// parameter should be a valid URL pointing to an Ollama server.
func NewOllama(host, model, systemPrompt string, params LLMParameters, logger *slog.Logger) (Ollama, error) {
	u, err := url.Parse(host)
	if err != nil {
		return Ollama{}, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if logger == nil {
		logger = slog.Default()
	}

	return Ollama{
		host:         host,
		model:        model,
		systemPrompt: systemPrompt,
		params:       params,
		client:       api.NewClient(u, &http.Client{}),
		logger:       logger.With(slog.String("module", "ollama")),
	}, nil
}

// Send streams the model's reply to text.
func (o Ollama) Send(ctx context.Context, text string) (io.ReadCloser, error) {
	stream := true
	req := api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{Role: "system", Content: o.systemPrompt},
			{Role: "user", Content: text},
		},
		Stream:  &stream,
		Options: o.options(),
	}

	return streamText(ctx, func(ctx context.Context, emit func(string) error) error {
		if err := o.client.Chat(ctx, &req, func(res api.ChatResponse) error {
			return emit(res.Message.Content)
		}); err != nil {
			return fmt.Errorf("error sending request: %w", err)
		}
		return nil
	})
}

func (o Ollama) options() map[string]any {
	opts := map[string]any{}
	if o.params.Temperature != nil {
		opts["temperature"] = *o.params.Temperature
	}
	if o.params.TopP != nil {
		opts["top_p"] = *o.params.TopP
	}
	if o.params.MaxTokens != nil {
		opts["num_predict"] = *o.params.MaxTokens
	}
	return opts
}
