package chat_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/raphaelgruber/sccse-chat/internal/apperr"
	"github.com/raphaelgruber/sccse-chat/internal/chat"
	"github.com/raphaelgruber/sccse-chat/internal/client"
	"github.com/raphaelgruber/sccse-chat/internal/metrics"
	"github.com/raphaelgruber/sccse-chat/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReplier answers each call from a function and records requests.
type fakeReplier struct {
	mu       sync.Mutex
	requests []client.ChatRequest
	ids      []string
	respond  func(in client.ChatRequest) (*client.ChatResponse, error)
}

func (f *fakeReplier) Chat(_ context.Context, requestID string, in client.ChatRequest) (*client.ChatResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, in)
	f.ids = append(f.ids, requestID)
	f.mu.Unlock()
	return f.respond(in)
}

func (f *fakeReplier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func replyWith(resp *client.ChatResponse, err error) *fakeReplier {
	return &fakeReplier{respond: func(client.ChatRequest) (*client.ChatResponse, error) { return resp, err }}
}

func loggedIn(t *testing.T) session.Store {
	t.Helper()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set("42", "Ana"))
	return store
}

func newDispatcher(t *testing.T, r chat.Replier, opts ...chat.Option) (*chat.Dispatcher, *chat.Conversation) {
	t.Helper()
	conv := chat.NewConversation()
	opts = append([]chat.Option{chat.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return chat.NewDispatcher(conv, loggedIn(t), r, opts...), conv
}

func TestBeginAppendsUserEntryBeforeReply(t *testing.T) {
	replier := replyWith(&client.ChatResponse{Reply: "hi"}, nil)
	d, conv := newDispatcher(t, replier)

	cycle, err := d.Begin("  hello there ")
	require.NoError(t, err)

	// No network call has been made yet, but the user entry is already visible.
	assert.Equal(t, 0, replier.calls())
	require.Equal(t, 1, conv.Len())
	assert.Equal(t, chat.MessageEntry{Sender: chat.SenderUser, Text: "  hello there "}, conv.Entries()[0], "raw input is kept")
	assert.Equal(t, chat.StateSending, d.State())
	assert.Equal(t, 1, d.InFlight())

	assert.Equal(t, client.ChatRequest{UserID: "42", Name: "Ana", Message: "  hello there "}, cycle.Request)
	assert.NotEmpty(t, cycle.ID)
}

func TestBeginEmptyInputIsNoop(t *testing.T) {
	for _, input := range []string{"", " ", "\t\n  "} {
		replier := replyWith(&client.ChatResponse{Reply: "hi"}, nil)
		d, conv := newDispatcher(t, replier)

		cycle, err := d.Begin(input)
		assert.Nil(t, cycle)
		assert.ErrorIs(t, err, chat.ErrEmptyInput)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

		_, err = d.Send(context.Background(), input)
		assert.ErrorIs(t, err, chat.ErrEmptyInput)

		assert.Equal(t, 0, conv.Len())
		assert.Equal(t, 0, replier.calls())
		assert.Equal(t, chat.StateIdle, d.State())
	}
}

func TestSendReply(t *testing.T) {
	replier := replyWith(&client.ChatResponse{Reply: "hi"}, nil)
	d, conv := newDispatcher(t, replier)

	entry, err := d.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, chat.MessageEntry{Sender: chat.SenderBot, Text: "hi"}, entry)

	assert.Equal(t, []chat.MessageEntry{
		{Sender: chat.SenderUser, Text: "hello"},
		{Sender: chat.SenderBot, Text: "hi"},
	}, conv.Entries())
	assert.Equal(t, chat.StateIdle, d.State())
	assert.Equal(t, 1, replier.calls(), "exactly one outbound call per cycle")
}

func TestRequestIDIsCycleID(t *testing.T) {
	replier := replyWith(&client.ChatResponse{Reply: "hi"}, nil)
	d, _ := newDispatcher(t, replier)

	cycle, err := d.Begin("hello")
	require.NoError(t, err)
	d.Finish(d.Exchange(context.Background(), cycle))

	require.Len(t, replier.ids, 1)
	assert.Equal(t, cycle.ID, replier.ids[0])
}

func TestReplyText(t *testing.T) {
	tests := []struct {
		name    string
		outcome chat.Outcome
		want    string
	}{
		{"reply", chat.Outcome{Response: &client.ChatResponse{Reply: "hi"}}, "hi"},
		{"error payload", chat.Outcome{Response: &client.ChatResponse{Error: "bad"}}, "bad"},
		{"reply wins", chat.Outcome{Response: &client.ChatResponse{Reply: "hi", Error: "bad"}}, "hi"},
		{"empty reply falls through", chat.Outcome{Response: &client.ChatResponse{Reply: "", Error: "bad"}}, "bad"},
		{"neither field", chat.Outcome{Response: &client.ChatResponse{}}, chat.FallbackReply},
		{"transport failure", chat.Outcome{Err: errors.New("connection refused")}, chat.FallbackReply},
		{"nil response", chat.Outcome{}, chat.FallbackReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chat.ReplyText(tt.outcome))
		})
	}
}

func TestOutcomeError(t *testing.T) {
	assert.NoError(t, chat.OutcomeError(chat.Outcome{Response: &client.ChatResponse{Reply: "hi"}}))
	assert.Equal(t, apperr.KindService, apperr.KindOf(chat.OutcomeError(chat.Outcome{Response: &client.ChatResponse{Error: "bad"}})))
	assert.Equal(t, apperr.KindTransport, apperr.KindOf(chat.OutcomeError(chat.Outcome{Err: errors.New("refused")})))
	assert.Equal(t, apperr.KindTransport, apperr.KindOf(chat.OutcomeError(chat.Outcome{Response: &client.ChatResponse{}})))
}

func TestServiceErrorRenderedAsBubble(t *testing.T) {
	d, conv := newDispatcher(t, replyWith(&client.ChatResponse{Error: "bad"}, nil))

	_, err := d.Send(context.Background(), "hello")
	require.NoError(t, err)

	last, _ := conv.Last()
	assert.Equal(t, chat.MessageEntry{Sender: chat.SenderBot, Text: "bad"}, last)
}

func TestTransportFailureAppendsFallbackAndReturnsToIdle(t *testing.T) {
	d, conv := newDispatcher(t, replyWith(nil, apperr.Transport("chat", errors.New("connection refused"))))

	entry, err := d.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, chat.FallbackReply, entry.Text)

	assert.Equal(t, 2, conv.Len(), "the optimistic user entry is not rolled back")
	assert.Equal(t, chat.StateIdle, d.State())

	// The UI stays usable after a failure.
	_, err = d.Begin("again")
	assert.NoError(t, err)
}

func TestOverlappingCyclesFinishInArrivalOrder(t *testing.T) {
	replier := &fakeReplier{respond: func(in client.ChatRequest) (*client.ChatResponse, error) {
		return &client.ChatResponse{Reply: "re: " + in.Message}, nil
	}}
	d, conv := newDispatcher(t, replier)

	first, err := d.Begin("first")
	require.NoError(t, err)
	second, err := d.Begin("second")
	require.NoError(t, err, "sends are not serialized by default")
	assert.Equal(t, 2, d.InFlight())

	// The second reply arrives before the first.
	d.Finish(d.Exchange(context.Background(), second))
	assert.Equal(t, chat.StateSending, d.State())
	d.Finish(d.Exchange(context.Background(), first))
	assert.Equal(t, chat.StateIdle, d.State())

	assert.Equal(t, []chat.MessageEntry{
		{Sender: chat.SenderUser, Text: "first"},
		{Sender: chat.SenderUser, Text: "second"},
		{Sender: chat.SenderBot, Text: "re: second"},
		{Sender: chat.SenderBot, Text: "re: first"},
	}, conv.Entries())
}

func TestSerializedSendsRejectWhileBusy(t *testing.T) {
	d, conv := newDispatcher(t, replyWith(&client.ChatResponse{Reply: "hi"}, nil), chat.WithSerializedSends(true))

	cycle, err := d.Begin("first")
	require.NoError(t, err)
	assert.Equal(t, chat.StateBusy, d.State())

	_, err = d.Begin("second")
	assert.ErrorIs(t, err, chat.ErrBusy)
	assert.Equal(t, 1, conv.Len(), "a rejected send appends nothing")

	d.Finish(d.Exchange(context.Background(), cycle))
	assert.Equal(t, chat.StateIdle, d.State())

	_, err = d.Begin("second")
	assert.NoError(t, err)
}

func TestConcurrentExchanges(t *testing.T) {
	release := make(chan struct{})
	replier := &fakeReplier{respond: func(in client.ChatRequest) (*client.ChatResponse, error) {
		<-release
		return &client.ChatResponse{Reply: "ok"}, nil
	}}
	d, conv := newDispatcher(t, replier)

	const n = 5
	outcomes := make(chan chat.Outcome, n)
	for i := 0; i < n; i++ {
		cycle, err := d.Begin("msg")
		require.NoError(t, err)
		go func() { outcomes <- d.Exchange(context.Background(), cycle) }()
	}

	// Every user entry is visible while all calls are still pending.
	assert.Equal(t, n, conv.Len())
	close(release)

	for i := 0; i < n; i++ {
		select {
		case o := <-outcomes:
			d.Finish(o)
		case <-time.After(2 * time.Second):
			t.Fatal("exchange did not complete")
		}
	}

	assert.Equal(t, 2*n, conv.Len())
	assert.Equal(t, chat.StateIdle, d.State())
}

func TestBeginWithoutSession(t *testing.T) {
	conv := chat.NewConversation()
	d := chat.NewDispatcher(conv, session.NewMemoryStore(), replyWith(&client.ChatResponse{Reply: "hi"}, nil))

	cycle, err := d.Begin("hello")
	require.NoError(t, err)
	assert.Equal(t, client.ChatRequest{Message: "hello"}, cycle.Request)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", chat.StateIdle.String())
	assert.Equal(t, "sending", chat.StateSending.String())
	assert.Equal(t, "busy", chat.StateBusy.String())
}

func TestFinishRecordsMetrics(t *testing.T) {
	c := metrics.NewCollector()
	d, _ := newDispatcher(t, replyWith(&client.ChatResponse{Reply: "hi"}, nil), chat.WithMetrics(c))
	failing, _ := newDispatcher(t, replyWith(nil, errors.New("connection refused")), chat.WithMetrics(c))

	_, err := d.Send(context.Background(), "hello")
	require.NoError(t, err)
	_, err = failing.Send(context.Background(), "hello")
	require.NoError(t, err)

	s := c.Snapshot(metrics.OpChat)
	require.NotNil(t, s)
	assert.Equal(t, int64(2), s.Count)
	assert.Equal(t, int64(1), s.Failures)
}
