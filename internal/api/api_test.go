package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/notify"
	"github.com/abhisek/lingoquiz/internal/quiz"
	"github.com/abhisek/lingoquiz/internal/store"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type testServer struct {
	srv        *Server
	store      *store.Store
	transcript *notify.Transcript
	outbox     *flakyOutbox
	now        time.Time
	questions  []int
}

// flakyOutbox delivers through a transcript but fails question delivery
// while failQuestion is set.
type flakyOutbox struct {
	*notify.Transcript
	failQuestion error
}

func (f *flakyOutbox) DeliverQuestion(ctx context.Context, identity string, p engine.Prompt) (string, error) {
	if f.failQuestion != nil {
		return "", f.failQuestion
	}
	return f.Transcript.DeliverQuestion(ctx, identity, p)
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open("file:api_" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ts := &testServer{store: st, transcript: notify.NewTranscript(), now: t0}
	ts.outbox = &flakyOutbox{Transcript: ts.transcript}
	ctx := context.Background()
	for i := range 3 {
		id, err := st.Questions().Add(ctx, store.KindComprehensive, quiz.Question{
			Text:         fmt.Sprintf("Pick option two (%d)", i),
			Options:      []string{"one", "two", "three"},
			CorrectIndex: 1,
			Skill:        quiz.AllSkills()[i%len(quiz.AllSkills())],
			Level:        quiz.LevelMedium,
		}, t0)
		require.NoError(t, err)
		ts.questions = append(ts.questions, id)
	}

	eng, err := engine.New(engine.Deps{
		Questions: st.Questions(),
		Sessions:  st.Sessions(),
		Results:   st.Results(),
		Notifier:  ts.outbox,
		Premium:   st.Users(),
		Logger:    log.New(io.Discard, "", 0),
	}, engine.DefaultPolicy())
	require.NoError(t, err)

	ts.srv, err = NewServer(Deps{
		Engine:   eng,
		Stats:    st.Results(),
		Users:    st.Users(),
		Messages: ts.transcript,
		Logger:   log.New(io.Discard, "", 0),
		Now:      func() time.Time { return ts.now },
	})
	require.NoError(t, err)
	return ts
}

func (ts *testServer) do(t *testing.T, method, uri, body string) (int, Response) {
	t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}
	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	ts.srv.Handler(&ctx)

	var resp Response
	if len(ctx.Response.Body()) > 0 {
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	}
	return ctx.Response.StatusCode(), resp
}

// data re-decodes the envelope's data into v.
func data(t *testing.T, resp Response, v any) {
	t.Helper()
	b, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func answerBody(identity string, questionID, choice int) string {
	return fmt.Sprintf(`{"identity":%q,"question_id":%q,"choice":%d}`, identity, strconv.Itoa(questionID), choice)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	status, resp := ts.do(t, fasthttp.MethodGet, "/health", "")
	assert.Equal(t, fasthttp.StatusOK, status)
	assert.True(t, resp.Success)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	status, resp := ts.do(t, fasthttp.MethodGet, "/v1/nope", "")
	assert.Equal(t, fasthttp.StatusNotFound, status)
	assert.Equal(t, "not_found", resp.Code)
}

func TestPreflight(t *testing.T) {
	ts := newTestServer(t)
	var req fasthttp.Request
	req.Header.SetMethod(fasthttp.MethodOptions)
	req.SetRequestURI("/v1/sessions")
	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	ts.srv.Handler(&ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "*", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
}

func TestFullComprehensiveQuiz(t *testing.T) {
	ts := newTestServer(t)

	status, resp := ts.do(t, fasthttp.MethodPost, "/v1/sessions",
		`{"identity":"u1","display_name":"Asha","mode":"comprehensive"}`)
	require.Equal(t, fasthttp.StatusOK, status, resp.Error)
	var started StartView
	data(t, resp, &started)
	assert.Equal(t, 3, started.Session.Questions)
	assert.Equal(t, quiz.ComprehensiveLabel, started.Session.LevelLabel)
	assert.Equal(t, t0.Add(120*time.Second), started.Session.Deadline.UTC())
	assert.NotEmpty(t, started.Session.Handle)
	assert.Nil(t, started.Previous)

	// Right, wrong, right.
	for i, choice := range []int{1, 0, 1} {
		ts.now = ts.now.Add(5 * time.Second)
		status, resp = ts.do(t, fasthttp.MethodPost, "/v1/answers", answerBody("u1", ts.questions[i], choice))
		require.Equal(t, fasthttp.StatusOK, status, resp.Error)
	}

	var ended AnswerView
	data(t, resp, &ended)
	assert.Equal(t, "session_ended", ended.Outcome)
	assert.True(t, ended.Correct)
	require.NotNil(t, ended.Summary)
	assert.Equal(t, "completed", ended.Summary.Outcome)
	assert.Equal(t, 2, ended.Summary.Score)
	assert.Equal(t, 3, ended.Summary.Total)
	assert.Equal(t, 67, ended.Summary.Percentage)

	status, resp = ts.do(t, fasthttp.MethodGet, "/v1/stats?identity=u1", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var stats StatsView
	data(t, resp, &stats)
	assert.Equal(t, 1, stats.TestsTaken)
	assert.Equal(t, 2, stats.HighestScore)

	status, resp = ts.do(t, fasthttp.MethodGet, "/v1/leaderboard", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var rows []LeaderboardRow
	data(t, resp, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, LeaderboardRow{Rank: 1, Identity: "u1", DisplayName: "Asha", TotalScore: 2, Tests: 1}, rows[0])

	status, resp = ts.do(t, fasthttp.MethodGet, "/v1/messages?identity=u1", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var msgs []MessageView
	data(t, resp, &msgs)
	require.Len(t, msgs, 4)
	assert.Equal(t, notify.KindQuestion, msgs[0].Kind)
	assert.Equal(t, strconv.Itoa(ts.questions[0]), msgs[0].QuestionID)
	assert.Equal(t, notify.KindSummary, msgs[3].Kind)

	status, resp = ts.do(t, fasthttp.MethodGet, "/v1/messages?identity=u1&since=3", "")
	require.Equal(t, fasthttp.StatusOK, status)
	data(t, resp, &msgs)
	assert.Len(t, msgs, 1)
}

func TestStart_ConflictsAndCooldown(t *testing.T) {
	ts := newTestServer(t)
	body := `{"identity":"u1","mode":"comprehensive"}`

	status, _ := ts.do(t, fasthttp.MethodPost, "/v1/sessions", body)
	require.Equal(t, fasthttp.StatusOK, status)

	status, resp := ts.do(t, fasthttp.MethodPost, "/v1/sessions", body)
	assert.Equal(t, fasthttp.StatusConflict, status)
	assert.Equal(t, "session_active", resp.Code)

	// Past the deadline the leftover session is finalized, which starts
	// the cooldown.
	ts.now = ts.now.Add(10 * time.Minute)
	status, resp = ts.do(t, fasthttp.MethodPost, "/v1/sessions", body)
	assert.Equal(t, fasthttp.StatusTooManyRequests, status)
	assert.Equal(t, "cooldown_active", resp.Code)
	var cd cooldownData
	data(t, resp, &cd)
	assert.Equal(t, int((24 * time.Hour).Seconds()), cd.RemainingSeconds)
}

func TestStart_PremiumSkipsCooldown(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, ts.store.Users().Ensure(ctx, "u1", "", t0))
	_, err := ts.store.Users().SetPremium(ctx, "u1", 30, t0)
	require.NoError(t, err)
	require.NoError(t, ts.store.Results().AppendResult(ctx, quiz.HistoricalResult{
		Owner: "u1", Mode: quiz.ModeComprehensive, Level: quiz.ComprehensiveLabel,
		Score: 1, Total: 3, FinishedAt: t0.Add(-time.Hour),
	}))

	status, resp := ts.do(t, fasthttp.MethodPost, "/v1/sessions", `{"identity":"u1","mode":"comprehensive"}`)
	assert.Equal(t, fasthttp.StatusOK, status, resp.Error)
}

func TestStart_Validation(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "missing identity", body: `{"mode":"comprehensive"}`, field: "Identity"},
		{name: "unknown mode", body: `{"identity":"u1","mode":"speed"}`, field: "Mode"},
		{name: "skill without level", body: `{"identity":"u1","mode":"skill","skill":"grammar"}`, field: "Level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := ts.do(t, fasthttp.MethodPost, "/v1/sessions", tt.body)
			assert.Equal(t, fasthttp.StatusBadRequest, status)
			assert.Equal(t, "invalid_request", resp.Code)
			var fields map[string]string
			data(t, resp, &fields)
			assert.Contains(t, fields, tt.field)
		})
	}

	status, resp := ts.do(t, fasthttp.MethodPost, "/v1/sessions", `{not json`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Equal(t, "invalid JSON body", resp.Error)

	status, resp = ts.do(t, fasthttp.MethodPost, "/v1/sessions",
		`{"identity":"u1","mode":"skill","skill":"dancing","level":"easy"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Contains(t, resp.Error, "dancing")
}

func TestStart_NoQuestions(t *testing.T) {
	ts := newTestServer(t)
	status, resp := ts.do(t, fasthttp.MethodPost, "/v1/sessions",
		`{"identity":"u1","mode":"skill","skill":"conversation","level":"hard"}`)
	assert.Equal(t, fasthttp.StatusNotFound, status)
	assert.Equal(t, "no_questions", resp.Code)
}

func TestAnswer_Rejections(t *testing.T) {
	ts := newTestServer(t)

	status, resp := ts.do(t, fasthttp.MethodPost, "/v1/answers", answerBody("u1", ts.questions[0], 1))
	require.Equal(t, fasthttp.StatusOK, status)
	var v AnswerView
	data(t, resp, &v)
	assert.Equal(t, "rejected", v.Outcome)
	assert.Equal(t, engine.ErrNoActiveSession.Error(), v.Reason)

	status, _ = ts.do(t, fasthttp.MethodPost, "/v1/sessions", `{"identity":"u1","mode":"comprehensive"}`)
	require.Equal(t, fasthttp.StatusOK, status)

	status, resp = ts.do(t, fasthttp.MethodPost, "/v1/answers", answerBody("u1", ts.questions[2], 1))
	require.Equal(t, fasthttp.StatusOK, status)
	data(t, resp, &v)
	assert.Equal(t, "rejected", v.Outcome)
	assert.Equal(t, engine.ErrStaleAnswer.Error(), v.Reason)

	status, resp = ts.do(t, fasthttp.MethodPost, "/v1/answers", `{"identity":"u1","question_id":"1"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	var fields map[string]string
	data(t, resp, &fields)
	assert.Equal(t, "required", fields["Choice"])
}

func TestAnswer_AfterDeadlineEndsSession(t *testing.T) {
	ts := newTestServer(t)
	status, _ := ts.do(t, fasthttp.MethodPost, "/v1/sessions", `{"identity":"u1","mode":"comprehensive"}`)
	require.Equal(t, fasthttp.StatusOK, status)

	ts.now = ts.now.Add(121 * time.Second)
	status, resp := ts.do(t, fasthttp.MethodPost, "/v1/answers", answerBody("u1", ts.questions[0], 1))
	require.Equal(t, fasthttp.StatusOK, status)
	var v AnswerView
	data(t, resp, &v)
	assert.Equal(t, "session_ended", v.Outcome)
	assert.False(t, v.Correct)
	require.NotNil(t, v.Summary)
	assert.Equal(t, "expired", v.Summary.Outcome)
	assert.Equal(t, 0, v.Summary.Answered)
}

func TestAnswer_RecordedWhenDeliveryFails(t *testing.T) {
	ts := newTestServer(t)
	status, _ := ts.do(t, fasthttp.MethodPost, "/v1/sessions", `{"identity":"u1","mode":"comprehensive"}`)
	require.Equal(t, fasthttp.StatusOK, status)

	ts.outbox.failQuestion = errors.New("gateway down")
	ts.now = ts.now.Add(5 * time.Second)
	status, resp := ts.do(t, fasthttp.MethodPost, "/v1/answers", answerBody("u1", ts.questions[0], 1))
	require.Equal(t, fasthttp.StatusOK, status, resp.Error)
	assert.True(t, resp.Success)
	assert.Equal(t, "answer recorded, delivery failed", resp.Message)
	var v AnswerView
	data(t, resp, &v)
	assert.Equal(t, "ack", v.Outcome)
	assert.True(t, v.Correct)
	assert.Empty(t, v.Handle)

	status, resp = ts.do(t, fasthttp.MethodGet, "/v1/sessions?identity=u1", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var active map[string]any
	data(t, resp, &active)
	assert.EqualValues(t, 2, active["question_number"])
	assert.EqualValues(t, 1, active["score"])

	ts.outbox.failQuestion = nil
	status, resp = ts.do(t, fasthttp.MethodPost, "/v1/sessions/resume", `{"identity":"u1"}`)
	require.Equal(t, fasthttp.StatusOK, status)
	data(t, resp, &v)
	assert.Equal(t, "ack", v.Outcome)

	last, ok := ts.transcript.Last("u1")
	require.True(t, ok)
	require.NotNil(t, last.Prompt)
	assert.Equal(t, strconv.Itoa(ts.questions[1]), last.Prompt.Question.ID)
	assert.Equal(t, 2, last.Prompt.Number)
}

func TestActiveResumeAndReset(t *testing.T) {
	ts := newTestServer(t)

	status, resp := ts.do(t, fasthttp.MethodGet, "/v1/sessions?identity=u1", "")
	assert.Equal(t, fasthttp.StatusNotFound, status)
	assert.Equal(t, "no_session", resp.Code)

	status, _ = ts.do(t, fasthttp.MethodGet, "/v1/sessions", "")
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, _ = ts.do(t, fasthttp.MethodPost, "/v1/sessions", `{"identity":"u1","mode":"comprehensive"}`)
	require.Equal(t, fasthttp.StatusOK, status)

	ts.now = ts.now.Add(30 * time.Second)
	status, resp = ts.do(t, fasthttp.MethodGet, "/v1/sessions?identity=u1", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var active map[string]any
	data(t, resp, &active)
	assert.EqualValues(t, 1, active["question_number"])
	assert.EqualValues(t, 90, active["remaining_seconds"])
	assert.Equal(t, false, active["expired"])

	status, resp = ts.do(t, fasthttp.MethodPost, "/v1/sessions/resume", `{"identity":"u1"}`)
	require.Equal(t, fasthttp.StatusOK, status)
	var v AnswerView
	data(t, resp, &v)
	assert.Equal(t, "ack", v.Outcome)
	assert.Len(t, ts.transcript.Messages("u1"), 2)

	status, resp = ts.do(t, fasthttp.MethodDelete, "/v1/sessions?identity=u1", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var reset map[string]bool
	data(t, resp, &reset)
	assert.True(t, reset["reset"])

	// A reset session leaves no result, so no cooldown either.
	status, _ = ts.do(t, fasthttp.MethodPost, "/v1/sessions", `{"identity":"u1","mode":"comprehensive"}`)
	assert.Equal(t, fasthttp.StatusOK, status)
}

func TestLeaderboard_Limit(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	for i, score := range []int{3, 1, 2} {
		require.NoError(t, ts.store.Results().AppendResult(ctx, quiz.HistoricalResult{
			Owner: fmt.Sprintf("u%d", i), Mode: quiz.ModeComprehensive, Level: quiz.ComprehensiveLabel,
			Score: score, Total: 3, FinishedAt: t0,
		}))
	}

	status, resp := ts.do(t, fasthttp.MethodGet, "/v1/leaderboard?limit=2", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var rows []LeaderboardRow
	data(t, resp, &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, "u0", rows[0].Identity)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, "u2", rows[1].Identity)

	status, _ = ts.do(t, fasthttp.MethodGet, "/v1/leaderboard?limit=0", "")
	assert.Equal(t, fasthttp.StatusBadRequest, status)
}

func TestMessages_WithoutTranscript(t *testing.T) {
	ts := newTestServer(t)
	ts.srv.messages = nil
	status, _ := ts.do(t, fasthttp.MethodGet, "/v1/messages?identity=u1", "")
	assert.Equal(t, fasthttp.StatusNotFound, status)
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := NewServer(Deps{})
	assert.Error(t, err)
}
