package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI sends user turns to an OpenAI-compatible chat completion API. Setting a base URL points
// it at any compatible gateway.
type OpenAI struct {
	model        string
	systemPrompt string

	params LLMParameters

	client *goopenai.Client

	logger *slog.Logger
}

// NewOpenAI creates a new OpenAI instance with the specified API key, base URL, model name, and system prompt.
func NewOpenAI(apiKey, baseURL, model, systemPrompt string, params LLMParameters, logger *slog.Logger) OpenAI {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if logger == nil {
		logger = slog.Default()
	}

	return OpenAI{
		model:        model,
		systemPrompt: systemPrompt,
		params:       params,
		client:       goopenai.NewClientWithConfig(cfg),
		logger:       logger.With(slog.String("module", "openai")),
	}
}

// Send streams the completion for text.
func (o OpenAI) Send(ctx context.Context, text string) (io.ReadCloser, error) {
	req := o.chatRequest([]goopenai.ChatCompletionMessage{
		{Role: goopenai.ChatMessageRoleSystem, Content: o.systemPrompt},
		{Role: goopenai.ChatMessageRoleUser, Content: text},
	})

	return streamText(ctx, func(ctx context.Context, emit func(string) error) error {
		stream, err := o.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			return fmt.Errorf("error sending request: %w", err)
		}
		defer stream.Close()

		for {
			response, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("error receiving response: %w", err)
			}

			if len(response.Choices) == 0 {
				continue
			}
			if err := emit(response.Choices[0].Delta.Content); err != nil {
				return err
			}
		}
	})
}

func (o OpenAI) chatRequest(messages []goopenai.ChatCompletionMessage) goopenai.ChatCompletionRequest {
	req := goopenai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   true,
	}

	if o.params.Temperature != nil {
		req.Temperature = *o.params.Temperature
	}
	if o.params.TopP != nil {
		req.TopP = *o.params.TopP
	}
	if o.params.MaxTokens != nil {
		req.MaxTokens = *o.params.MaxTokens
	}

	return req
}
