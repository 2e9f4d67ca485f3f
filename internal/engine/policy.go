package engine

import (
	"fmt"
	"time"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

// ModePolicy holds the parameters that differ between quiz modes.
type ModePolicy struct {
	// PerQuestion is the time budget each question adds to the deadline.
	PerQuestion time.Duration

	// CooldownGated subjects free-tier identities to the cooldown window.
	CooldownGated bool
}

// Policy is the engine configuration, resolved once at startup.
type Policy struct {
	Modes          map[quiz.Mode]ModePolicy
	MaxQuestions   int
	CooldownWindow time.Duration
	Levels         quiz.LevelTable
}

// DefaultPolicy returns the stock policy: 40s per comprehensive question,
// 60s per skill question, a 24h cooldown on comprehensive quizzes, and at
// most 100 questions per session.
func DefaultPolicy() Policy {
	return Policy{
		Modes: map[quiz.Mode]ModePolicy{
			quiz.ModeComprehensive: {PerQuestion: 40 * time.Second, CooldownGated: true},
			quiz.ModeSkill:         {PerQuestion: 60 * time.Second},
		},
		MaxQuestions:   100,
		CooldownWindow: 24 * time.Hour,
		Levels:         quiz.DefaultLevelTable(),
	}
}

// Mode returns the policy for mode.
func (p Policy) Mode(mode quiz.Mode) (ModePolicy, error) {
	mp, ok := p.Modes[mode]
	if !ok {
		return ModePolicy{}, fmt.Errorf("no policy for mode %q", mode)
	}
	return mp, nil
}

// Validate checks that every mode is configured with a positive budget.
func (p Policy) Validate() error {
	for _, m := range quiz.AllModes() {
		mp, err := p.Mode(m)
		if err != nil {
			return err
		}
		if mp.PerQuestion <= 0 {
			return fmt.Errorf("mode %s: per-question budget must be positive", m)
		}
	}
	if p.MaxQuestions <= 0 {
		return fmt.Errorf("max questions must be positive")
	}
	if p.CooldownWindow < 0 {
		return fmt.Errorf("cooldown window must not be negative")
	}
	return p.Levels.Validate()
}
