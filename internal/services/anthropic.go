package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tmaxmax/go-sse"
)

// Anthropic sends user turns to the Anthropic Messages API and relays the streamed text deltas.
type Anthropic struct {
	apiKey       string
	baseURL      string
	model        string
	systemPrompt string
	maxTokens    int

	client *http.Client

	logger *slog.Logger
}

type anthropicChatRequest struct {
	Model     string             `json:"model"`
	Messages  []anthropicMessage `json:"messages"`
	System    string             `json:"system,omitempty"`
	MaxTokens int                `json:"max_tokens,omitempty"`
	Stream    bool               `json:"stream"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicStreamResponse struct {
	Type  string `json:"type"`
	Delta struct {
		Text string `json:"text"`
	} `json:"delta"`
}

type anthropicError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

const (
	// DefaultAnthropicURL is the public Anthropic API.
	DefaultAnthropicURL = "https://api.anthropic.com/v1"

	defaultAnthropicMaxTokens = 1024
)

// NewAnthropic creates a new Anthropic instance with the specified API key, model name, and maximum
// token limit. An empty baseURL selects the public API.
func NewAnthropic(apiKey, baseURL, model, systemPrompt string, maxTokens int, logger *slog.Logger) Anthropic {
	if baseURL == "" {
		baseURL = DefaultAnthropicURL
	}
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}

	return Anthropic{
		apiKey:       apiKey,
		baseURL:      baseURL,
		model:        model,
		systemPrompt: systemPrompt,
		maxTokens:    maxTokens,
		client:       &http.Client{},
		logger:       logger.With(slog.String("module", "anthropic")),
	}
}

// Send streams the model's reply to text.
func (a Anthropic) Send(ctx context.Context, text string) (io.ReadCloser, error) {
	reqBody := anthropicChatRequest{
		Model:     a.model,
		Messages:  []anthropicMessage{{Role: "user", Content: text}},
		System:    a.systemPrompt,
		MaxTokens: a.maxTokens,
		Stream:    true,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	return streamText(ctx, func(ctx context.Context, emit func(string) error) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			a.baseURL+"/messages", bytes.NewReader(jsonBody))
		if err != nil {
			return fmt.Errorf("error creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", a.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := a.client.Do(req)
		if err != nil {
			return fmt.Errorf("error sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
		}

		for ev, err := range sse.Read(resp.Body, nil) {
			if err != nil {
				return fmt.Errorf("error reading response: %w", err)
			}
			switch ev.Type {
			case "error":
				var e anthropicError
				if err := json.Unmarshal([]byte(ev.Data), &e); err != nil {
					return fmt.Errorf("error unmarshaling error: %w", err)
				}
				return fmt.Errorf("anthropic error %s: %s", e.Error.Type, e.Error.Message)
			case "message_stop":
				return nil
			case "content_block_delta":
				var res anthropicStreamResponse
				if err := json.Unmarshal([]byte(ev.Data), &res); err != nil {
					return fmt.Errorf("error unmarshaling response: %w", err)
				}
				if err := emit(res.Delta.Text); err != nil {
					return err
				}
			default:
				a.logger.Debug("Skipping event", slog.String("type", ev.Type))
			}
		}
		return nil
	})
}
