// Package chatview holds the state of one conversation with the foster-care policy assistant and
// drives the request/stream sequence for every user turn. Frontends render from Snapshots and
// subscribe to change notifications; they never mutate the conversation directly.
package chatview

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fostercare-aficionado/chat/internal/models"
)

// Transport sends one user turn to the assistant backend. On success it returns the response body
// as an unframed text byte stream which the caller must close.
type Transport interface {
	Send(ctx context.Context, text string) (io.ReadCloser, error)
}

// Snapshot is a copy of the view state at one point in time.
type Snapshot struct {
	Messages []models.Message
	Busy     bool
}

// Observer receives a Snapshot after every change to the conversation or to the busy flag.
// Observers are called one at a time, in change order, and must not call Submit.
type Observer func(Snapshot)

// Option configures a View.
type Option func(*View)

var (
	// ErrBusy is returned by Submit while a previous turn is still in flight.
	ErrBusy = errors.New("a request is already in flight")
	// ErrEmptyMessage is returned by Submit when the text is blank.
	ErrEmptyMessage = errors.New("message is empty")
)

const (
	// DefaultTimeout bounds a whole request/stream sequence.
	DefaultTimeout = 2 * time.Minute
	// DefaultChunkSize is the size of a single read from the response body.
	DefaultChunkSize = 4096

	errLoggerKey = "err"
)

// View owns a conversation and the busy gate guarding it.
type View struct {
	transport Transport
	timeout   time.Duration
	chunkSize int
	greeting  string
	now       func() time.Time
	logger    *slog.Logger

	gate gate

	mu        sync.Mutex
	messages  []models.Message
	observers []observerEntry
	nextObsID int

	// notifyMu keeps observer deliveries in the order the snapshots were taken.
	notifyMu sync.Mutex
}

type observerEntry struct {
	id int
	fn Observer
}

// WithTimeout sets the limit for one request/stream sequence. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(v *View) {
		if d >= 0 {
			v.timeout = d
		}
	}
}

// WithChunkSize sets how many bytes are read from the response body at a time.
func WithChunkSize(n int) Option {
	return func(v *View) {
		if n > 0 {
			v.chunkSize = n
		}
	}
}

// WithLogger sets the logger used to report failed sequences.
func WithLogger(logger *slog.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithGreeting replaces the assistant greeting that seeds the conversation.
func WithGreeting(greeting string) Option {
	return func(v *View) {
		if greeting != "" {
			v.greeting = greeting
		}
	}
}

// WithClock replaces time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(v *View) {
		if now != nil {
			v.now = now
		}
	}
}

// New creates a View that sends turns through transport. The conversation starts with a single
// assistant greeting.
func New(transport Transport, opts ...Option) *View {
	v := &View{
		transport: transport,
		timeout:   DefaultTimeout,
		chunkSize: DefaultChunkSize,
		greeting:  models.Greeting,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With(slog.String("module", "chatview"))

	v.messages = []models.Message{models.NewMessage(models.RoleAssistant, v.greeting, v.now())}

	return v
}

// Snapshot returns a copy of the current messages and busy flag.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.snapshotLocked()
}

// Busy reports whether a turn is in flight.
func (v *View) Busy() bool {
	return v.gate.Held()
}

// Subscribe registers fn for change notifications. The returned function removes it.
func (v *View) Subscribe(fn Observer) func() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.nextObsID++
	id := v.nextObsID
	v.observers = append(v.observers, observerEntry{id: id, fn: fn})

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()

		for i, o := range v.observers {
			if o.id == id {
				v.observers = append(v.observers[:i], v.observers[i+1:]...)
				return
			}
		}
	}
}

func (v *View) snapshotLocked() Snapshot {
	msgs := make([]models.Message, len(v.messages))
	copy(msgs, v.messages)
	return Snapshot{
		Messages: msgs,
		Busy:     v.gate.Held(),
	}
}

func (v *View) notify() {
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()

	v.mu.Lock()
	snap := v.snapshotLocked()
	observers := make([]Observer, len(v.observers))
	for i, o := range v.observers {
		observers[i] = o.fn
	}
	v.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

func (v *View) appendMessage(msg models.Message) {
	v.mu.Lock()
	v.messages = append(v.messages, msg)
	v.mu.Unlock()

	v.notify()
}

// appendContent extends the streaming message identified by id. Finalized messages are left as
// they are.
func (v *View) appendContent(id, text string) {
	v.mu.Lock()
	changed := false
	for i := len(v.messages) - 1; i >= 0; i-- {
		if v.messages[i].ID != id {
			continue
		}
		if v.messages[i].Streaming() {
			v.messages[i].Content += text
			changed = true
		}
		break
	}
	v.mu.Unlock()

	if changed {
		v.notify()
	}
}

func (v *View) finalize(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := len(v.messages) - 1; i >= 0; i-- {
		if v.messages[i].ID == id {
			v.messages[i].StreamingState = models.StreamingStateEnded
			return
		}
	}
}
