package services

import (
	"context"
	"io"
	"sync"
)

// DefaultSystemPrompt steers the direct LLM transports toward the policy assistant's behavior.
const DefaultSystemPrompt = "You are a helpful assistant that guides foster care researchers to authoritative " +
	"information about state policies. Prefer official policy documents and recent updates over your own " +
	"knowledge. You must cite sources for all statements."

// LLMParameters holds the optional sampling parameters shared by the direct LLM transports.
type LLMParameters struct {
	Temperature *float32 `yaml:"temperature"`
	TopP        *float32 `yaml:"topP"`
	MaxTokens   *int     `yaml:"maxTokens"`
}

type textProducer func(ctx context.Context, emit func(string) error) error

type pipeBody struct {
	*io.PipeReader
	cancel context.CancelFunc
}

func (b pipeBody) Close() error {
	b.cancel()
	return b.PipeReader.Close()
}

// streamText runs produce in its own goroutine and exposes the emitted text as a byte stream. It
// returns once the first piece of text is available, so a provider that fails before producing
// anything fails the Send rather than the read.
func streamText(ctx context.Context, produce textProducer) (io.ReadCloser, error) {
	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()

	first := make(chan struct{})
	finished := make(chan error, 1)
	var once sync.Once

	go func() {
		err := produce(ctx, func(s string) error {
			if s == "" {
				return nil
			}
			once.Do(func() { close(first) })
			_, err := io.WriteString(pw, s)
			return err
		})
		_ = pw.CloseWithError(err)
		finished <- err
	}()

	select {
	case <-first:
		return pipeBody{PipeReader: pr, cancel: cancel}, nil
	case err := <-finished:
		if err != nil {
			cancel()
			return nil, err
		}
		// An empty reply is still a successful one.
		return pipeBody{PipeReader: pr, cancel: cancel}, nil
	case <-ctx.Done():
		cancel()
		_ = pr.Close()
		return nil, ctx.Err()
	}
}
