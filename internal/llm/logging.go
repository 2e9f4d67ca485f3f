package llm

import (
	"context"
	"log"
	"time"

	"github.com/abhisek/lingoquiz/internal/store"
)

type logged struct {
	inner  Provider
	vendor string
	events store.EventRepo
	logger *log.Logger
	now    func() time.Time
}

// WithLogging appends one LLM request event per call of p to events.
// A failure to record is logged and does not fail the call.
func WithLogging(p Provider, vendor string, events store.EventRepo, logger *log.Logger) Provider {
	if logger == nil {
		logger = log.Default()
	}
	return &logged{inner: p, vendor: vendor, events: events, logger: logger, now: time.Now}
}

func (l *logged) ModelID() string { return l.inner.ModelID() }

func (l *logged) Generate(ctx context.Context, req Request) (*Response, error) {
	start := l.now()
	resp, err := l.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:  l.vendor,
		Model:     l.inner.ModelID(),
		Purpose:   string(req.purpose()),
		LatencyMs: l.now().Sub(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			ev.Model = resp.Model
		}
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}
	if lerr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); lerr != nil {
		l.logger.Printf("llm: record %s request: %v", ev.Purpose, lerr)
	}
	return resp, err
}

type bounded struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout bounds each call of p. A non-positive timeout returns p.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &bounded{inner: p, timeout: timeout}
}

func (b *bounded) ModelID() string { return b.inner.ModelID() }

func (b *bounded) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.inner.Generate(ctx, req)
}
