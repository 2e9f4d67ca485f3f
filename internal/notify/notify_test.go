package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/quiz"
)

func samplePrompt() engine.Prompt {
	return engine.Prompt{
		Question: quiz.Question{
			ID:           "17",
			Text:         "She ___ to school every day.",
			Options:      []string{"go", "goes", "going"},
			CorrectIndex: 1,
			Skill:        quiz.SkillGrammar,
			Level:        quiz.LevelEasy,
		},
		Number:     2,
		Total:      5,
		LevelLabel: "Grammar – Easy",
		Remaining:  65 * time.Second,
	}
}

func TestQuestionText(t *testing.T) {
	p := samplePrompt()
	text := QuestionText(p)
	assert.Contains(t, text, "Grammar – Easy · Question 2/5")
	assert.Contains(t, text, "⏳ 1m05s left")
	assert.Contains(t, text, "She ___ to school every day.")
	assert.Contains(t, text, "1) go\n2) goes\n3) going")
	assert.NotContains(t, text, "📎")

	p.Question.Media = &quiz.Media{Path: "img/school.png", Kind: quiz.MediaImage}
	assert.Contains(t, QuestionText(p), "📎 Image: img/school.png")
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{-time.Second, "0s"},
		{0, "0s"},
		{42 * time.Second, "42s"},
		{1500 * time.Millisecond, "2s"},
		{200 * time.Second, "3m20s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRemaining(tt.in), tt.in.String())
	}
}

func TestFormatWait(t *testing.T) {
	assert.Equal(t, "30s", FormatWait(30*time.Second))
	assert.Equal(t, "12m", FormatWait(12*time.Minute+10*time.Second))
	assert.Equal(t, "5h07m", FormatWait(5*time.Hour+7*time.Minute))
	assert.Equal(t, "24h00m", FormatWait(24*time.Hour))
}

func TestWebhookNotifier_DeliverQuestion(t *testing.T) {
	var got OutboundMessage
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message_id":"tg-991"}`))
	}))
	defer srv.Close()

	n := NewWebhookNotifier(WebhookConfig{BaseURL: srv.URL, Token: "secret"})
	p := samplePrompt()
	p.Question.Media = &quiz.Media{Path: "a.ogg", Kind: quiz.MediaAudio}

	handle, err := n.DeliverQuestion(context.Background(), "u1", p)
	require.NoError(t, err)
	assert.Equal(t, "tg-991", handle)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "u1", got.Recipient)
	assert.Equal(t, KindQuestion, got.Kind)
	assert.Equal(t, "17", got.QuestionID)
	assert.Equal(t, []string{"go", "goes", "going"}, got.Options)
	require.NotNil(t, got.Media)
	assert.Equal(t, "audio", got.Media.Kind)
	require.NotNil(t, got.Deadline)
	assert.Equal(t, 65, got.Deadline.RemainingSeconds)
}

func TestWebhookNotifier_GatewayError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "chat not found", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(WebhookConfig{BaseURL: srv.URL, Retries: 2})
	err := n.DeliverSummary(context.Background(), "u1", "done")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	// Client errors are not retried.
	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhookNotifier_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message_id":"m2"}`))
	}))
	defer srv.Close()

	n := NewWebhookNotifier(WebhookConfig{BaseURL: srv.URL, Retries: 2})
	handle, err := n.DeliverQuestion(context.Background(), "u1", samplePrompt())
	require.NoError(t, err)
	assert.Equal(t, "m2", handle)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTranscript(t *testing.T) {
	tr := NewTranscript()
	ctx := context.Background()

	h1, err := tr.DeliverQuestion(ctx, "u1", samplePrompt())
	require.NoError(t, err)
	require.NoError(t, tr.DeliverSummary(ctx, "u1", "Score: 1/5"))
	require.NoError(t, tr.Send(ctx, "u2", "hello"))

	msgs := tr.Messages("u1")
	require.Len(t, msgs, 2)
	assert.Equal(t, h1, msgs[0].Handle)
	assert.Equal(t, KindQuestion, msgs[0].Kind)
	require.NotNil(t, msgs[0].Prompt)
	assert.Equal(t, "17", msgs[0].Prompt.Question.ID)
	assert.Equal(t, KindSummary, msgs[1].Kind)
	assert.NotEqual(t, msgs[0].Handle, msgs[1].Handle)

	assert.Len(t, tr.Since("u1", 1), 1)
	assert.Nil(t, tr.Since("u1", 2))

	last, ok := tr.Last("u2")
	require.True(t, ok)
	assert.Equal(t, KindNotice, last.Kind)

	_, ok = tr.Last("nobody")
	assert.False(t, ok)
}
