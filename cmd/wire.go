package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/abhisek/lingoquiz/internal/config"
	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/notify"
	"github.com/abhisek/lingoquiz/internal/store"
	"github.com/abhisek/lingoquiz/internal/sweeper"
)

// newNotifier posts to the chat gateway when one is configured. Otherwise
// conversations are kept in the returned transcript.
func newNotifier(cfg config.Config) (engine.Notifier, *notify.Transcript) {
	if cfg.GatewayURL != "" {
		return notify.NewWebhookNotifier(notify.WebhookConfig{
			BaseURL: cfg.GatewayURL,
			Token:   cfg.GatewayToken,
			Timeout: 10 * time.Second,
			Retries: 2,
		}), nil
	}
	t := notify.NewTranscript()
	return t, t
}

// sessionStore returns the session backend selected by cfg and a closer
// for any connection it opened.
func sessionStore(ctx context.Context, cfg config.Config, st *store.Store) (engine.SessionStore, func(), error) {
	switch cfg.SessionBackend {
	case config.BackendRedis:
		rdb, err := store.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisSessionStore(rdb, cfg.SessionTTL), func() { rdb.Close() }, nil
	default:
		return st.Sessions(), func() {}, nil
	}
}

// buildEngine wires an engine over the store, the configured session
// backend and notifier.
func buildEngine(ctx context.Context, cfg config.Config, st *store.Store, notifier engine.Notifier, logger *log.Logger) (*engine.Engine, func(), error) {
	sessions, closeSessions, err := sessionStore(ctx, cfg, st)
	if err != nil {
		return nil, nil, fmt.Errorf("session store: %w", err)
	}
	eng, err := engine.New(engine.Deps{
		Questions: st.Questions(),
		Sessions:  sessions,
		Results:   st.Results(),
		Notifier:  notifier,
		Premium:   st.Users(),
		Logger:    logger,
	}, cfg.Policy())
	if err != nil {
		closeSessions()
		return nil, nil, err
	}
	return eng, closeSessions, nil
}

// startSweeper runs the expiry sweep in the background when a schedule is
// configured. The returned wait blocks until the sweep has stopped after
// ctx is cancelled.
func startSweeper(ctx context.Context, cfg config.Config, eng *engine.Engine, logger *log.Logger) (wait func(), err error) {
	if cfg.SweepSchedule == "" {
		return func() {}, nil
	}
	sw, err := sweeper.New(eng, cfg.SweepSchedule, logger)
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		sw.Run(ctx)
	}()
	return func() { <-done }, nil
}
