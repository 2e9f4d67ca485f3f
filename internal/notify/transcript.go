package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/lingoquiz/internal/engine"
)

// Message is one delivered chat message.
type Message struct {
	Handle string
	Kind   string
	Text   string
	At     time.Time

	// Prompt is set for question messages.
	Prompt *engine.Prompt
}

// Transcript is an in-memory notifier that records every delivery per
// identity. The terminal client and the HTTP API read conversations from it.
type Transcript struct {
	mu   sync.Mutex
	msgs map[string][]Message
	now  func() time.Time
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{msgs: make(map[string][]Message), now: time.Now}
}

func (t *Transcript) append(identity string, m Message) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	m.Handle = uuid.NewString()
	m.At = t.now()
	t.msgs[identity] = append(t.msgs[identity], m)
	return m.Handle
}

// DeliverQuestion implements engine.Notifier.
func (t *Transcript) DeliverQuestion(_ context.Context, identity string, p engine.Prompt) (string, error) {
	return t.append(identity, Message{Kind: KindQuestion, Text: QuestionText(p), Prompt: &p}), nil
}

// DeliverSummary implements engine.Notifier.
func (t *Transcript) DeliverSummary(_ context.Context, identity string, text string) error {
	t.append(identity, Message{Kind: KindSummary, Text: text})
	return nil
}

// Send records a free-form notice.
func (t *Transcript) Send(_ context.Context, identity, text string) error {
	t.append(identity, Message{Kind: KindNotice, Text: text})
	return nil
}

// Messages returns a copy of identity's conversation, oldest first.
func (t *Transcript) Messages(identity string) []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.msgs[identity]...)
}

// Since returns the messages delivered after the first n.
func (t *Transcript) Since(identity string, n int) []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	msgs := t.msgs[identity]
	if n >= len(msgs) {
		return nil
	}
	if n < 0 {
		n = 0
	}
	return append([]Message(nil), msgs[n:]...)
}

// Last returns identity's latest message.
func (t *Transcript) Last(identity string) (Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	msgs := t.msgs[identity]
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}
