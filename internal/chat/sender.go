package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrorReply is appended to the conversation as a model turn whenever the
// generation call fails, whatever the cause.
const ErrorReply = "Sorry, I encountered an error. Please try again."

// Generator produces one reply for the conversation so far plus a new user
// turn. Implemented by the Gemini client.
type Generator interface {
	GenerateReply(ctx context.Context, history []Message, userText string) (string, error)
}

// Diagnostic is a structured record of a failed generation call, kept for
// on-demand inspection. It is never persisted into the conversation.
type Diagnostic struct {
	ID      string
	When    time.Time
	Summary string
	Err     error
}

// Sender orchestrates one send: append the user turn, call the generator,
// append the reply (or ErrorReply on failure). It owns the busy flag that
// keeps at most one generation call outstanding.
type Sender struct {
	store  *Store
	gen    Generator
	logger *zap.Logger

	mu       sync.Mutex
	busy     bool
	lastDiag *Diagnostic
}

// NewSender wires a sender onto a conversation store and a generator.
func NewSender(store *Store, gen Generator, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{store: store, gen: gen, logger: logger}
}

// Busy reports whether a generation call is in flight.
func (s *Sender) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// LastDiagnostic returns the record of the most recent failure, or nil.
func (s *Sender) LastDiagnostic() *Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDiag
}

// Send runs one turn. Blank input is rejected before any mutation. A send
// attempted while another is in flight is silently ignored, not queued. The
// returned bool reports whether the turn ran; the Message is the model turn
// that was appended (ErrorReply on failure).
//
// The busy flag is set before the generation call and cleared unconditionally
// when it resolves or fails, so one failure can never wedge future sends.
func (s *Sender) Send(ctx context.Context, text string) (Message, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, false
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return Message{}, false
	}
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	// History is captured before the new turn: the generator receives the
	// prior transcript plus the new user text as a separate argument.
	history := s.store.All()
	s.store.Append(Message{Text: text, IsUser: true})

	replyText, err := s.gen.GenerateReply(ctx, history, text)
	if err != nil {
		s.logger.Warn("generation failed", zap.Error(err))
		s.mu.Lock()
		s.lastDiag = &Diagnostic{
			ID:      uuid.NewString(),
			When:    time.Now(),
			Summary: err.Error(),
			Err:     err,
		}
		s.mu.Unlock()
		replyText = ErrorReply
	}

	reply := Message{Text: replyText, IsUser: false}
	s.store.Append(reply)
	return reply, true
}
