package chat

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souschef/internal/storage"
)

type fakeGenerator struct {
	calls   atomic.Int32
	reply   string
	err     error
	started chan struct{} // when non-nil, closed once a call is in flight
	block   chan struct{} // when non-nil, GenerateReply waits on it
	history []Message
}

func (g *fakeGenerator) GenerateReply(ctx context.Context, history []Message, userText string) (string, error) {
	g.calls.Add(1)
	g.history = history
	if g.started != nil {
		close(g.started)
	}
	if g.block != nil {
		<-g.block
	}
	return g.reply, g.err
}

func newSender(t *testing.T, gen Generator) (*Sender, *Store) {
	t.Helper()
	store := NewStore(storage.NewFileBackend(t.TempDir()), nil)
	return NewSender(store, gen, nil), store
}

func TestSender_SuccessfulTurn(t *testing.T) {
	gen := &fakeGenerator{reply: "use 200g of flour"}
	sender, store := newSender(t, gen)
	store.Append(Message{Text: "earlier turn", IsUser: true})

	reply, ok := sender.Send(context.Background(), "how much flour?")
	require.True(t, ok)
	assert.Equal(t, Message{Text: "use 200g of flour", IsUser: false}, reply)

	msgs := store.All()
	require.Len(t, msgs, 3)
	assert.Equal(t, Message{Text: "how much flour?", IsUser: true}, msgs[1])
	assert.Equal(t, reply, msgs[2])

	// The generator sees the history as it was before the new turn.
	require.Len(t, gen.history, 1)
	assert.Equal(t, "earlier turn", gen.history[0].Text)
}

func TestSender_FailureAppendsApology(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	sender, store := newSender(t, gen)

	reply, ok := sender.Send(context.Background(), "hi")
	require.True(t, ok)
	assert.Equal(t, ErrorReply, reply.Text)
	assert.False(t, reply.IsUser)

	msgs := store.All()
	require.Len(t, msgs, 2)
	assert.Equal(t, Message{Text: "hi", IsUser: true}, msgs[0])
	assert.Equal(t, Message{Text: ErrorReply, IsUser: false}, msgs[1])

	diag := sender.LastDiagnostic()
	require.NotNil(t, diag)
	assert.Contains(t, diag.Summary, "quota exceeded")
	assert.NotEmpty(t, diag.ID)

	// The busy flag is cleared even after a failure.
	assert.False(t, sender.Busy())
}

func TestSender_BlankInputIsNoOp(t *testing.T) {
	gen := &fakeGenerator{reply: "never"}
	sender, store := newSender(t, gen)

	_, ok := sender.Send(context.Background(), "   \t ")
	assert.False(t, ok)
	assert.Zero(t, store.Len())
	assert.Zero(t, gen.calls.Load())
}

func TestSender_BusyFlagBlocksOverlappingSends(t *testing.T) {
	gen := &fakeGenerator{reply: "done", started: make(chan struct{}), block: make(chan struct{})}
	sender, store := newSender(t, gen)

	first := make(chan struct{})
	go func() {
		defer close(first)
		sender.Send(context.Background(), "first")
	}()

	// Wait until the first generation call is in flight; the user turn is
	// already appended and the busy flag is held.
	select {
	case <-gen.started:
	case <-time.After(time.Second):
		t.Fatal("generator never called")
	}
	require.True(t, sender.Busy())

	// A second send while busy is silently ignored: no store mutation,
	// no second generator call.
	_, ok := sender.Send(context.Background(), "second")
	assert.False(t, ok)
	assert.Equal(t, int32(1), gen.calls.Load())
	assert.Equal(t, 1, store.Len())

	close(gen.block)
	<-first

	msgs := store.All()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "done", msgs[1].Text)
	assert.False(t, sender.Busy())
}
