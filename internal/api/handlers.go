package api

import (
	"errors"
	"strconv"

	"github.com/valyala/fasthttp"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/quiz"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// handleStart handles POST /v1/sessions.
func (s *Server) handleStart(ctx *fasthttp.RequestCtx) {
	var req StartRequest
	if !s.decode(ctx, &req) {
		return
	}
	mode, err := quiz.ParseMode(req.Mode)
	if err != nil {
		respondInvalid(ctx, err)
		return
	}
	var sel *engine.Selection
	if mode == quiz.ModeSkill {
		skill, err := quiz.ParseSkill(req.Skill)
		if err != nil {
			respondInvalid(ctx, err)
			return
		}
		level, err := quiz.ParseLevel(req.Level)
		if err != nil {
			respondInvalid(ctx, err)
			return
		}
		sel = &engine.Selection{Skill: skill, Level: level}
	}

	now := s.now()
	if err := s.users.Ensure(ctx, req.Identity, req.DisplayName, now); err != nil {
		s.respondEngineError(ctx, err)
		return
	}

	started, err := s.engine.StartSession(ctx, req.Identity, mode, sel, now)
	if err != nil {
		s.respondEngineError(ctx, err)
		return
	}
	sess := started.Session
	respondOK(ctx, StartView{
		Session: SessionView{
			SessionID:  sess.ID,
			Mode:       string(sess.Mode),
			LevelLabel: sess.LevelLabel,
			Questions:  len(sess.Questions),
			Deadline:   sess.Deadline,
			Handle:     started.Handle,
		},
		Previous: summaryView(started.Previous),
	}, "session started")
}

// handleAnswer handles POST /v1/answers.
func (s *Server) handleAnswer(ctx *fasthttp.RequestCtx) {
	var req AnswerRequest
	if !s.decode(ctx, &req) {
		return
	}
	res, err := s.engine.SubmitAnswer(ctx, req.Identity, req.QuestionID, *req.Choice, s.now())
	if err != nil {
		// An ack whose next question could not be delivered still counts;
		// the gateway can resume to re-deliver.
		if res != nil {
			s.logger.Printf("answer %s: %v", req.Identity, err)
			respondOK(ctx, answerView(res), "answer recorded, delivery failed")
			return
		}
		s.respondEngineError(ctx, err)
		return
	}
	respondOK(ctx, answerView(res), "")
}

// handleResume handles POST /v1/sessions/resume.
func (s *Server) handleResume(ctx *fasthttp.RequestCtx) {
	var req IdentityRequest
	if !s.decode(ctx, &req) {
		return
	}
	res, err := s.engine.Resume(ctx, req.Identity, s.now())
	if err != nil {
		s.respondEngineError(ctx, err)
		return
	}
	respondOK(ctx, answerView(res), "")
}

// handleActive handles GET /v1/sessions?identity=.
func (s *Server) handleActive(ctx *fasthttp.RequestCtx) {
	id, ok := identityParam(ctx)
	if !ok {
		return
	}
	sess, err := s.engine.Active(ctx, id)
	if err != nil {
		s.respondEngineError(ctx, err)
		return
	}
	if sess == nil {
		respondError(ctx, fasthttp.StatusNotFound, "no_session", engine.ErrNoActiveSession.Error(), nil)
		return
	}
	now := s.now()
	respondOK(ctx, map[string]any{
		"session_id":        sess.ID,
		"mode":              sess.Mode,
		"level_label":       sess.LevelLabel,
		"question_number":   sess.Index + 1,
		"questions":         len(sess.Questions),
		"score":             sess.Score,
		"deadline":          sess.Deadline,
		"remaining_seconds": int(sess.Remaining(now).Seconds()),
		"expired":           engine.IsExpired(sess, now),
	}, "")
}

// handleReset handles DELETE /v1/sessions?identity=.
func (s *Server) handleReset(ctx *fasthttp.RequestCtx) {
	id, ok := identityParam(ctx)
	if !ok {
		return
	}
	existed, err := s.engine.Reset(ctx, id)
	if err != nil {
		s.respondEngineError(ctx, err)
		return
	}
	respondOK(ctx, map[string]bool{"reset": existed}, "")
}

// handleStats handles GET /v1/stats?identity=.
func (s *Server) handleStats(ctx *fasthttp.RequestCtx) {
	id, ok := identityParam(ctx)
	if !ok {
		return
	}
	st, err := s.stats.Stats(ctx, id)
	if err != nil {
		s.respondEngineError(ctx, err)
		return
	}
	respondOK(ctx, statsView(id, st), "")
}

// handleLeaderboard handles GET /v1/leaderboard?limit=.
func (s *Server) handleLeaderboard(ctx *fasthttp.RequestCtx) {
	limit := defaultLeaderboardSize
	if ctx.QueryArgs().Has("limit") {
		n, err := ctx.QueryArgs().GetUint("limit")
		if err != nil || n == 0 || n > maxLeaderboardSize {
			respondInvalid(ctx, errors.New("limit must be between 1 and "+strconv.Itoa(maxLeaderboardSize)))
			return
		}
		limit = n
	}
	entries, err := s.stats.Leaderboard(ctx, limit)
	if err != nil {
		s.respondEngineError(ctx, err)
		return
	}
	rows := make([]LeaderboardRow, len(entries))
	for i, e := range entries {
		rows[i] = LeaderboardRow{
			Rank:        i + 1,
			Identity:    e.Identity,
			DisplayName: e.DisplayName,
			TotalScore:  e.TotalScore,
			Tests:       e.Tests,
		}
	}
	respondOK(ctx, rows, "")
}

// handleMessages handles GET /v1/messages?identity=&since=.
func (s *Server) handleMessages(ctx *fasthttp.RequestCtx) {
	if s.messages == nil {
		respondError(ctx, fasthttp.StatusNotFound, "not_found", "messages are delivered through the gateway", nil)
		return
	}
	id, ok := identityParam(ctx)
	if !ok {
		return
	}
	since := 0
	if ctx.QueryArgs().Has("since") {
		n, err := ctx.QueryArgs().GetUint("since")
		if err != nil {
			respondInvalid(ctx, errors.New("since must be a non-negative integer"))
			return
		}
		since = n
	}
	msgs := s.messages.Since(id, since)
	out := make([]MessageView, len(msgs))
	for i, m := range msgs {
		out[i] = messageView(m)
	}
	respondOK(ctx, out, "")
}
