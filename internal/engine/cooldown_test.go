package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

func TestCanStart(t *testing.T) {
	now := t0
	tests := []struct {
		name      string
		premium   bool
		mode      quiz.Mode
		lastAgo   time.Duration // 0 = no history
		allowed   bool
		remaining time.Duration
	}{
		{name: "no history", mode: quiz.ModeComprehensive, allowed: true},
		{name: "free tier inside window", mode: quiz.ModeComprehensive, lastAgo: 2 * time.Hour, remaining: 22 * time.Hour},
		{name: "premium inside window", premium: true, mode: quiz.ModeComprehensive, lastAgo: 2 * time.Hour, allowed: true},
		{name: "free tier after window", mode: quiz.ModeComprehensive, lastAgo: 25 * time.Hour, allowed: true},
		{name: "window edge", mode: quiz.ModeComprehensive, lastAgo: 24 * time.Hour, allowed: true},
		{name: "ungated mode", mode: quiz.ModeSkill, lastAgo: time.Minute, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(DefaultPolicy())
			h.premium["u1"] = tt.premium
			if tt.lastAgo > 0 {
				require.NoError(t, h.results.AppendResult(context.Background(), quiz.HistoricalResult{
					Owner: "u1", Mode: tt.mode, FinishedAt: now.Add(-tt.lastAgo),
				}))
			}

			d, err := h.engine.CanStart(context.Background(), "u1", tt.mode, now)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.remaining, d.Remaining)
		})
	}
}

func TestCanStart_OtherModeHistoryIgnored(t *testing.T) {
	h := newHarness(DefaultPolicy())
	require.NoError(t, h.results.AppendResult(context.Background(), quiz.HistoricalResult{
		Owner: "u1", Mode: quiz.ModeSkill, FinishedAt: t0.Add(-time.Minute),
	}))

	d, err := h.engine.CanStart(context.Background(), "u1", quiz.ModeComprehensive, t0)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestStartSession_CooldownError(t *testing.T) {
	h := newHarness(DefaultPolicy())
	ctx := context.Background()
	require.NoError(t, h.results.AppendResult(ctx, quiz.HistoricalResult{
		Owner: "u1", Mode: quiz.ModeComprehensive, FinishedAt: t0.Add(-2 * time.Hour),
	}))

	_, err := h.engine.StartSession(ctx, "u1", quiz.ModeComprehensive, nil, t0)
	require.ErrorIs(t, err, ErrCooldownActive)

	var ce *CooldownError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 22*time.Hour, ce.Remaining)

	s, err := h.sessions.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestCanStart_ZeroWindowDisablesCooldown(t *testing.T) {
	policy := DefaultPolicy()
	policy.CooldownWindow = 0
	h := newHarness(policy)
	require.NoError(t, h.results.AppendResult(context.Background(), quiz.HistoricalResult{
		Owner: "u1", Mode: quiz.ModeComprehensive, FinishedAt: t0,
	}))

	d, err := h.engine.CanStart(context.Background(), "u1", quiz.ModeComprehensive, t0)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
