package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/abhisek/lingoquiz/internal/engine"
)

// WebhookConfig configures a WebhookNotifier.
type WebhookConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Retries int
}

// WebhookNotifier posts messages to a chat gateway's /messages endpoint.
// The gateway owns the chat transport and returns a message handle for
// each delivery.
type WebhookNotifier struct {
	client *resty.Client
}

// OutboundMessage is the JSON body posted to the gateway.
type OutboundMessage struct {
	Recipient  string       `json:"recipient"`
	Kind       string       `json:"kind"`
	Text       string       `json:"text"`
	QuestionID string       `json:"question_id,omitempty"`
	Options    []string     `json:"options,omitempty"`
	Media      *MediaRef    `json:"media,omitempty"`
	Deadline   *DeadlineRef `json:"deadline,omitempty"`
}

// MediaRef points the gateway at a question attachment.
type MediaRef struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// DeadlineRef tells the gateway how long the session has left.
type DeadlineRef struct {
	RemainingSeconds int `json:"remaining_seconds"`
}

type deliveryResponse struct {
	MessageID string `json:"message_id"`
}

// Message kinds.
const (
	KindQuestion = "question"
	KindSummary  = "summary"
	KindNotice   = "notice"
)

// NewWebhookNotifier returns a notifier for the gateway at cfg.BaseURL.
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	return &WebhookNotifier{client: client}
}

// DeliverQuestion implements engine.Notifier.
func (w *WebhookNotifier) DeliverQuestion(ctx context.Context, identity string, p engine.Prompt) (string, error) {
	msg := OutboundMessage{
		Recipient:  identity,
		Kind:       KindQuestion,
		Text:       QuestionText(p),
		QuestionID: p.Question.ID,
		Options:    p.Question.Options,
		Deadline:   &DeadlineRef{RemainingSeconds: int(p.Remaining / time.Second)},
	}
	if m := p.Question.Media; m != nil {
		msg.Media = &MediaRef{Path: m.Path, Kind: string(m.Kind)}
	}
	handle, err := w.post(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("deliver question %s: %w", p.Question.ID, err)
	}
	return handle, nil
}

// DeliverSummary implements engine.Notifier.
func (w *WebhookNotifier) DeliverSummary(ctx context.Context, identity string, text string) error {
	if _, err := w.post(ctx, OutboundMessage{Recipient: identity, Kind: KindSummary, Text: text}); err != nil {
		return fmt.Errorf("deliver summary: %w", err)
	}
	return nil
}

// Send posts a free-form text message, used for notices such as cooldown
// warnings that are not part of a session.
func (w *WebhookNotifier) Send(ctx context.Context, identity, text string) error {
	_, err := w.post(ctx, OutboundMessage{Recipient: identity, Kind: KindNotice, Text: text})
	return err
}

func (w *WebhookNotifier) post(ctx context.Context, msg OutboundMessage) (string, error) {
	var out deliveryResponse
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(msg).
		SetResult(&out).
		Post("/messages")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("gateway returned %d: %s", resp.StatusCode(), resp.String())
	}
	return out.MessageID, nil
}
