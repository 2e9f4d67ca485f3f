package screen

import (
	"context"
	"time"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/notify"
	"github.com/abhisek/lingoquiz/internal/quiz"
	"github.com/abhisek/lingoquiz/internal/store"
)

// ResultReader serves the local player's statistics.
type ResultReader interface {
	Stats(ctx context.Context, identity string) (store.UserStats, error)
	History(ctx context.Context, identity string, limit int) ([]quiz.HistoricalResult, error)
	Leaderboard(ctx context.Context, limit int) ([]store.LeaderboardEntry, error)
}

// UserDirectory records the local player and reads premium status.
type UserDirectory interface {
	Ensure(ctx context.Context, identity, displayName string, now time.Time) error
	PremiumExpiry(ctx context.Context, identity string) (time.Time, bool, error)
}

// Services are shared by every screen. The terminal acts as the chat
// transport: the engine delivers into Transcript and screens read it back.
type Services struct {
	Engine     *engine.Engine
	Transcript *notify.Transcript
	Results    ResultReader
	Users      UserDirectory

	// Identity is the local player. Empty until the welcome screen asks.
	Identity    string
	DisplayName string

	// PremiumUntil is refreshed by the home screen.
	PremiumUntil time.Time

	Now func() time.Time
}

// Clock returns the configured clock or time.Now.
func (s *Services) Clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IsPremium reports whether the cached premium expiry is in the future.
func (s *Services) IsPremium() bool {
	return s.PremiumUntil.After(s.Clock())
}
