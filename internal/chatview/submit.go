package chatview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fostercare-aficionado/chat/internal/metrics"
	"github.com/fostercare-aficionado/chat/internal/models"
	"github.com/fostercare-aficionado/chat/internal/textstream"
)

// Submit appends text as a user turn and starts streaming the assistant's reply in the background.
// It returns ErrEmptyMessage for blank text and ErrBusy while another turn is in flight; in both
// cases the conversation is left untouched.
//
// The returned channel is closed once the reply has been fully streamed or the error reply has
// been appended, and the view is idle again. ctx bounds the whole sequence, so it must outlive the
// caller when the caller is a short-lived request handler.
func (v *View) Submit(ctx context.Context, text string) (<-chan struct{}, error) {
	if strings.TrimSpace(text) == "" {
		metrics.TurnsRejected.WithLabelValues(metrics.ReasonEmpty).Inc()
		return nil, ErrEmptyMessage
	}
	if !v.gate.TryAcquire() {
		metrics.TurnsRejected.WithLabelValues(metrics.ReasonBusy).Inc()
		return nil, ErrBusy
	}
	metrics.TurnsSubmitted.Inc()

	v.appendMessage(models.NewMessage(models.RoleUser, text, v.now()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		v.run(ctx, text)
	}()

	return done, nil
}

func (v *View) run(ctx context.Context, text string) {
	start := time.Now()
	defer func() {
		v.gate.Release()
		v.notify()
		metrics.StreamDuration.Observe(time.Since(start).Seconds())
	}()

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	body, err := v.transport.Send(ctx, text)
	if err != nil {
		v.fail(metrics.StageRequest, fmt.Errorf("failed to send message: %w", err))
		return
	}
	defer body.Close()

	reply := models.NewMessage(models.RoleAssistant, "", v.now())
	reply.StreamingState = models.StreamingStateStreaming
	v.appendMessage(reply)

	if stage, err := v.stream(body, reply.ID); err != nil {
		v.finalize(reply.ID)
		v.fail(stage, err)
		return
	}
	v.finalize(reply.ID)
}

// stream copies the body into the message identified by id, one chunk at a time.
func (v *View) stream(body io.Reader, id string) (string, error) {
	dec := textstream.NewDecoder()
	buf := make([]byte, v.chunkSize)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			metrics.StreamBytes.Add(float64(n))

			s, err := dec.Decode(buf[:n])
			if s != "" {
				v.appendContent(id, s)
			}
			if err != nil {
				return metrics.StageDecode, err
			}
		}

		if errors.Is(readErr, io.EOF) {
			s, err := dec.Flush()
			if s != "" {
				v.appendContent(id, s)
			}
			if err != nil {
				return metrics.StageDecode, err
			}
			return "", nil
		}
		if readErr != nil {
			return metrics.StageRead, fmt.Errorf("failed to read response: %w", readErr)
		}
	}
}

func (v *View) fail(stage string, err error) {
	metrics.StreamFailures.WithLabelValues(stage).Inc()
	v.logger.Error("Chat request failed",
		slog.String("stage", stage),
		slog.String(errLoggerKey, err.Error()))

	v.appendMessage(models.NewMessage(models.RoleAssistant, models.ErrorReply, v.now()))
}
