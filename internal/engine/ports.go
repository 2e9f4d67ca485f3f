package engine

import (
	"context"
	"time"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

// QuestionSupplier returns question snapshots for a new session.
type QuestionSupplier interface {
	// FetchComprehensive returns up to maxCount mixed-skill questions.
	FetchComprehensive(ctx context.Context, maxCount int) ([]quiz.Question, error)

	// FetchBySkillAndLevel returns up to maxCount questions for one skill and level.
	FetchBySkillAndLevel(ctx context.Context, skill quiz.Skill, level quiz.Level, maxCount int) ([]quiz.Question, error)
}

// SessionStore persists at most one session per identity.
type SessionStore interface {
	// Get returns the identity's session, or nil if none exists.
	Get(ctx context.Context, identity string) (*quiz.Session, error)

	// Put stores the session under its owner, replacing any previous one.
	Put(ctx context.Context, s *quiz.Session) error

	// Delete removes the identity's session. Deleting a missing session is not an error.
	Delete(ctx context.Context, identity string) error
}

// SessionLister is implemented by session stores that can enumerate
// their identities. It enables SweepExpired.
type SessionLister interface {
	Identities(ctx context.Context) ([]string, error)
}

// ResultStore is the append-only historical result log.
type ResultStore interface {
	AppendResult(ctx context.Context, r quiz.HistoricalResult) error

	// LastResultTime returns the finish time of the identity's latest
	// result in mode, and false if there is none.
	LastResultTime(ctx context.Context, identity string, mode quiz.Mode) (time.Time, bool, error)
}

// PremiumChecker reports whether an identity is exempt from cooldowns.
type PremiumChecker interface {
	IsPremium(ctx context.Context, identity string, now time.Time) (bool, error)
}

// Prompt is a question ready for delivery.
type Prompt struct {
	Question   quiz.Question
	Number     int // 1-based
	Total      int
	LevelLabel string
	Remaining  time.Duration
}

// Notifier delivers messages to the identity's conversation.
type Notifier interface {
	// DeliverQuestion sends a question and returns the transport's message handle.
	DeliverQuestion(ctx context.Context, identity string, p Prompt) (string, error)

	// DeliverSummary sends the final result text.
	DeliverSummary(ctx context.Context, identity string, text string) error
}
