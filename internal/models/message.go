package models

import (
	"time"

	"github.com/google/uuid"
)

// Message represents one turn in the conversation. It carries the participant's role, the text
// shown to the user, the time the turn was created, and whether the turn is still receiving
// streamed content.
type Message struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time

	StreamingState StreamingState
}

// Role represents the role of a message participant.
type Role string

// StreamingState tells whether a message is still being filled by a response stream.
type StreamingState string

const (
	// RoleUser represents a turn typed by the user. Its content never changes after creation.
	RoleUser Role = "user"
	// RoleAssistant represents a turn produced by the assistant, including the synthetic greeting
	// and error turns.
	RoleAssistant Role = "assistant"

	StreamingStateLoading   StreamingState = "loading"
	StreamingStateStreaming StreamingState = "streaming"
	StreamingStateEnded     StreamingState = "ended"
)

const (
	// Greeting seeds every new conversation.
	Greeting = "Hello! I can help you explore state foster care policies and find relevant information. " +
		"What would you like to know?"
	// ErrorReply is appended as an assistant turn whenever a request fails.
	ErrorReply = "Sorry, I encountered an error while processing your request. Please try again."
)

// NewMessage creates an ended message with a fresh time-ordered ID.
func NewMessage(role Role, content string, now time.Time) Message {
	return Message{
		ID:             newID(),
		Role:           role,
		Content:        content,
		CreatedAt:      now,
		StreamingState: StreamingStateEnded,
	}
}

// Clock formats the creation time as local hour:minute.
func (m Message) Clock() string {
	return m.CreatedAt.Local().Format("15:04")
}

// Streaming reports whether the message is the one currently receiving chunks.
func (m Message) Streaming() bool {
	return m.StreamingState == StreamingStateStreaming
}

func newID() string {
	// UUIDv7 is time-ordered, so consecutive turns sort in creation order.
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
