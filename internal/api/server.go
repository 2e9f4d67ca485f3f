// Package api exposes the quiz engine to a chat gateway over HTTP. The
// gateway forwards user events (start, answer, resume) and receives
// questions and summaries through the configured notifier.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/valyala/fasthttp"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/notify"
	"github.com/abhisek/lingoquiz/internal/store"
)

// StatsSource serves per-identity statistics and the leaderboard.
type StatsSource interface {
	Stats(ctx context.Context, identity string) (store.UserStats, error)
	Leaderboard(ctx context.Context, limit int) ([]store.LeaderboardEntry, error)
}

// UserRegistry records identities as they appear.
type UserRegistry interface {
	Ensure(ctx context.Context, identity, displayName string, now time.Time) error
}

// Deps wires a Server.
type Deps struct {
	Engine *engine.Engine
	Stats  StatsSource
	Users  UserRegistry

	// Messages is optional. When set, GET /v1/messages serves the
	// conversation recorded by the transcript notifier.
	Messages *notify.Transcript

	Logger *log.Logger
	Now    func() time.Time
}

// Server routes HTTP requests to the engine.
type Server struct {
	engine   *engine.Engine
	stats    StatsSource
	users    UserRegistry
	messages *notify.Transcript
	logger   *log.Logger
	now      func() time.Time
	validate *validator.Validate
}

// NewServer returns a Server. Engine, Stats and Users are required.
func NewServer(deps Deps) (*Server, error) {
	switch {
	case deps.Engine == nil:
		return nil, errors.New("api: engine is required")
	case deps.Stats == nil:
		return nil, errors.New("api: stats source is required")
	case deps.Users == nil:
		return nil, errors.New("api: user registry is required")
	}
	s := &Server{
		engine:   deps.Engine,
		stats:    deps.Stats,
		users:    deps.Users,
		messages: deps.Messages,
		logger:   deps.Logger,
		now:      deps.Now,
		validate: validator.New(),
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &fasthttp.Server{
		Handler:      s.Handler,
		Name:         "lingoquiz",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe(addr) }()
	s.logger.Printf("api listening on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.ShutdownWithContext(shutdownCtx)
	}
}

// Handler is the fasthttp request handler.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if method == fasthttp.MethodOptions {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}

	switch {
	case path == "/health":
		respondOK(ctx, map[string]string{"status": "ok"}, "")

	case path == "/v1/sessions" && method == fasthttp.MethodPost:
		s.handleStart(ctx)
	case path == "/v1/sessions" && method == fasthttp.MethodGet:
		s.handleActive(ctx)
	case path == "/v1/sessions" && method == fasthttp.MethodDelete:
		s.handleReset(ctx)
	case path == "/v1/sessions/resume" && method == fasthttp.MethodPost:
		s.handleResume(ctx)
	case path == "/v1/answers" && method == fasthttp.MethodPost:
		s.handleAnswer(ctx)

	case path == "/v1/stats" && method == fasthttp.MethodGet:
		s.handleStats(ctx)
	case path == "/v1/leaderboard" && method == fasthttp.MethodGet:
		s.handleLeaderboard(ctx)
	case path == "/v1/messages" && method == fasthttp.MethodGet:
		s.handleMessages(ctx)

	default:
		respondError(ctx, fasthttp.StatusNotFound, "not_found", "not found", nil)
	}
}

// decode parses and validates a JSON body into v.
func (s *Server) decode(ctx *fasthttp.RequestCtx, v any) bool {
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		respondInvalid(ctx, errors.New("invalid JSON body"))
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		respondInvalid(ctx, err)
		return false
	}
	return true
}

// identityParam reads the required identity query parameter.
func identityParam(ctx *fasthttp.RequestCtx) (string, bool) {
	id := string(ctx.QueryArgs().Peek("identity"))
	if id == "" {
		respondInvalid(ctx, errors.New("identity query parameter is required"))
		return "", false
	}
	return id, true
}
