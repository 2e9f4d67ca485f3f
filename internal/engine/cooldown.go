package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

// Decision is the Cooldown Gate's verdict.
type Decision struct {
	Allowed   bool
	Remaining time.Duration
}

// CanStart reports whether identity may start mode at now. Premium
// identities and modes without a cooldown are always allowed.
func (e *Engine) CanStart(ctx context.Context, identity string, mode quiz.Mode, now time.Time) (Decision, error) {
	mp, err := e.policy.Mode(mode)
	if err != nil {
		return Decision{}, err
	}
	if !mp.CooldownGated || e.policy.CooldownWindow == 0 {
		return Decision{Allowed: true}, nil
	}

	if e.premium != nil {
		premium, err := e.premium.IsPremium(ctx, identity, now)
		if err != nil {
			return Decision{}, fmt.Errorf("check premium: %w", err)
		}
		if premium {
			return Decision{Allowed: true}, nil
		}
	}

	last, ok, err := e.results.LastResultTime(ctx, identity, mode)
	if err != nil {
		return Decision{}, fmt.Errorf("last result time: %w", err)
	}
	if !ok {
		return Decision{Allowed: true}, nil
	}

	if elapsed := now.Sub(last); elapsed < e.policy.CooldownWindow {
		return Decision{Remaining: e.policy.CooldownWindow - elapsed}, nil
	}
	return Decision{Allowed: true}, nil
}
