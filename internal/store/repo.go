package store

import (
	"context"
	"time"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

// Question kinds. Comprehensive questions form one ordered pool; skill
// questions are drawn per skill and level.
const (
	KindComprehensive = "comprehensive"
	KindSkill         = "skill"
)

// BankEntry is a question as stored in the bank.
type BankEntry struct {
	ID        int
	Kind      string
	Question  quiz.Question
	CreatedAt time.Time
}

// QuestionFilter narrows List. Zero values match everything.
type QuestionFilter struct {
	Kind  string
	Skill quiz.Skill
	Level quiz.Level
	Limit int
}

// UserStats aggregates an identity's finished quizzes.
type UserStats struct {
	TestsTaken   int
	TotalScore   int
	HighestScore int
	AverageScore float64
	LastLevel    string
	LastFinished time.Time
}

// LeaderboardEntry is one row of the leaderboard.
type LeaderboardEntry struct {
	Identity    string
	DisplayName string
	TotalScore  int
	Tests       int
}

// User is a known identity.
type User struct {
	Identity     string
	DisplayName  string
	JoinedAt     time.Time
	PremiumUntil time.Time // zero when never premium
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// EventRepo provides append access to the LLM request log.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
