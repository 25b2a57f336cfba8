package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/sccse-chat/internal/apperr"
	"github.com/raphaelgruber/sccse-chat/internal/client"
	"github.com/raphaelgruber/sccse-chat/internal/metrics"
	"github.com/raphaelgruber/sccse-chat/internal/session"
)

// FallbackReply is shown when a cycle ends without a usable reply: the call
// failed, the response could not be decoded, or it carried neither field.
const FallbackReply = "⚠️ Sorry, I couldn't reach the chat service. Please try again."

var (
	// ErrEmptyInput is returned by Begin for empty or whitespace-only input.
	ErrEmptyInput = apperr.Validation("send", "message is empty")

	// ErrBusy is returned by Begin in serialized mode while a cycle is in flight.
	ErrBusy = apperr.Validation("send", "a message is already being sent")
)

// State is the dispatcher's position in the send-cycle state machine.
type State int

const (
	// StateIdle means no cycle is in flight.
	StateIdle State = iota
	// StateSending means at least one cycle is in flight and new sends are accepted.
	StateSending
	// StateBusy means a cycle is in flight and serialized mode rejects new sends.
	StateBusy
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Replier is the chat-reply service.
type Replier interface {
	Chat(ctx context.Context, requestID string, in client.ChatRequest) (*client.ChatResponse, error)
}

var _ Replier = (*client.Client)(nil)

// Cycle is one in-flight send: the optimistic user entry plus the request
// that will produce its bot reply.
type Cycle struct {
	ID        string
	Request   client.ChatRequest
	StartedAt time.Time
}

// Outcome is the result of a cycle's outbound call.
type Outcome struct {
	Cycle    *Cycle
	Response *client.ChatResponse
	Err      error
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSerializedSends makes Begin reject new sends while one is in flight.
func WithSerializedSends(enabled bool) Option {
	return func(d *Dispatcher) { d.serialized = enabled }
}

// WithLogger sets the dispatcher's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics records the duration of every finished cycle in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(d *Dispatcher) { d.metrics = c }
}

// Dispatcher runs send cycles against a Conversation.
//
// Begin and Finish mutate the conversation and are meant to be called from
// the UI goroutine; Exchange only performs I/O and may run anywhere. Cycles
// are not serialized by default, so replies append in arrival order.
type Dispatcher struct {
	conv     *Conversation
	sessions session.Store
	replier  Replier
	logger   *slog.Logger
	metrics  *metrics.Collector

	serialized bool

	mu       sync.Mutex
	inFlight int
}

// NewDispatcher creates a dispatcher that appends to conv.
func NewDispatcher(conv *Conversation, sessions session.Store, replier Replier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		conv:     conv,
		sessions: sessions,
		replier:  replier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Conversation returns the log this dispatcher appends to.
func (d *Dispatcher) Conversation() *Conversation {
	return d.conv
}

// State reports the current state.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stateLocked()
}

func (d *Dispatcher) stateLocked() State {
	switch {
	case d.inFlight == 0:
		return StateIdle
	case d.serialized:
		return StateBusy
	default:
		return StateSending
	}
}

// InFlight returns the number of cycles awaiting a reply.
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight
}

// Begin starts a cycle for input. The user entry is appended immediately,
// before any network call. Whitespace-only input returns ErrEmptyInput and
// changes nothing.
func (d *Dispatcher) Begin(input string) (*Cycle, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	d.mu.Lock()
	if d.stateLocked() == StateBusy {
		d.mu.Unlock()
		return nil, ErrBusy
	}
	d.inFlight++
	d.mu.Unlock()

	s, err := d.sessions.Get()
	if err != nil {
		d.logger.Warn("failed to read session, sending without identity", "error", err)
		s = session.Session{}
	}

	d.conv.Append(MessageEntry{Sender: SenderUser, Text: input})

	cycle := &Cycle{
		ID: uuid.New().String(),
		Request: client.ChatRequest{
			UserID:  s.UserID,
			Name:    s.DisplayName,
			Message: input,
		},
		StartedAt: time.Now(),
	}
	d.logger.Debug("send cycle started", "cycle_id", cycle.ID, "in_flight", d.InFlight())
	return cycle, nil
}

// Exchange issues the cycle's single outbound call. It does not touch the
// conversation.
func (d *Dispatcher) Exchange(ctx context.Context, cycle *Cycle) Outcome {
	resp, err := d.replier.Chat(ctx, cycle.ID, cycle.Request)
	return Outcome{Cycle: cycle, Response: resp, Err: err}
}

// Finish appends exactly one bot entry for o and returns it.
func (d *Dispatcher) Finish(o Outcome) MessageEntry {
	entry := MessageEntry{Sender: SenderBot, Text: ReplyText(o)}
	d.conv.Append(entry)

	d.mu.Lock()
	if d.inFlight > 0 {
		d.inFlight--
	}
	remaining := d.inFlight
	d.mu.Unlock()

	attrs := []any{"in_flight", remaining}
	if o.Cycle != nil {
		elapsed := time.Since(o.Cycle.StartedAt)
		attrs = append(attrs, "cycle_id", o.Cycle.ID, "duration_ms", elapsed.Milliseconds())
		if d.metrics != nil {
			d.metrics.RecordTiming(metrics.OpChat, elapsed, OutcomeError(o) != nil)
		}
	}
	switch {
	case o.Err != nil:
		d.logger.Warn("send cycle failed", append(attrs, "kind", apperr.KindOf(o.Err), "error", o.Err)...)
	case o.Response != nil && o.Response.Reply == "" && o.Response.Error != "":
		d.logger.Info("send cycle returned service error", append(attrs, "error", o.Response.Error)...)
	default:
		d.logger.Debug("send cycle completed", attrs...)
	}
	return entry
}

// Send runs a whole cycle synchronously and returns the bot entry.
func (d *Dispatcher) Send(ctx context.Context, input string) (MessageEntry, error) {
	cycle, err := d.Begin(input)
	if err != nil {
		return MessageEntry{}, err
	}
	return d.Finish(d.Exchange(ctx, cycle)), nil
}

// ReplyText picks the text for a cycle's bot entry: the reply, else the
// service error payload, else FallbackReply.
func ReplyText(o Outcome) string {
	if o.Err != nil || o.Response == nil {
		return FallbackReply
	}
	if o.Response.Reply != "" {
		return o.Response.Reply
	}
	if o.Response.Error != "" {
		return o.Response.Error
	}
	return FallbackReply
}

// OutcomeError classifies o: nil for a reply, a KindService error for an
// error payload, and a KindTransport error otherwise. The UI renders all of
// them the same way; this is for callers that want to tell them apart.
func OutcomeError(o Outcome) error {
	switch {
	case o.Err != nil:
		if apperr.KindOf(o.Err) != "" {
			return o.Err
		}
		return apperr.Transport("chat", o.Err)
	case o.Response == nil:
		return apperr.Transport("chat", errors.New("no response"))
	case o.Response.Reply != "":
		return nil
	case o.Response.Error != "":
		return apperr.Service("chat", o.Response.Error)
	default:
		return apperr.Transport("chat", errors.New("response has neither reply nor error"))
	}
}
