package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/quiz"
)

func TestDefaultConfig_MatchesDefaultPolicy(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, engine.DefaultPolicy(), cfg.Policy())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("LINGOQUIZ_MAX_QUESTIONS", "20")
	t.Setenv("LINGOQUIZ_COMPREHENSIVE_BUDGET", "30s")
	t.Setenv("LINGOQUIZ_SKILL_BUDGET", "1m30s")
	t.Setenv("LINGOQUIZ_COOLDOWN", "12h")
	t.Setenv("LINGOQUIZ_COOLDOWN_MODES", "Comprehensive, skill")
	t.Setenv("LINGOQUIZ_SESSION_BACKEND", "REDIS")
	t.Setenv("LINGOQUIZ_REDIS_ADDR", "cache:6379")
	t.Setenv("LINGOQUIZ_SWEEP_SCHEDULE", "@every 1m")
	t.Setenv("LINGOQUIZ_USER", "alice")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, BackendRedis, cfg.SessionBackend)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, "alice", cfg.User)

	p := cfg.Policy()
	assert.Equal(t, 20, p.MaxQuestions)
	assert.Equal(t, 12*time.Hour, p.CooldownWindow)
	assert.Equal(t, engine.ModePolicy{PerQuestion: 30 * time.Second, CooldownGated: true}, p.Modes[quiz.ModeComprehensive])
	assert.Equal(t, engine.ModePolicy{PerQuestion: 90 * time.Second, CooldownGated: true}, p.Modes[quiz.ModeSkill])
}

func TestFromEnv_NoGatedModes(t *testing.T) {
	t.Setenv("LINGOQUIZ_COOLDOWN_MODES", "none")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.CooldownModes)
	assert.False(t, cfg.Policy().Modes[quiz.ModeComprehensive].CooldownGated)
}

func TestFromEnv_ReportsEveryBadVariable(t *testing.T) {
	t.Setenv("LINGOQUIZ_MAX_QUESTIONS", "lots")
	t.Setenv("LINGOQUIZ_COOLDOWN", "a day")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LINGOQUIZ_MAX_QUESTIONS")
	assert.Contains(t, err.Error(), "LINGOQUIZ_COOLDOWN")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max questions", func(c *Config) { c.MaxQuestions = 0 }},
		{"zero budget", func(c *Config) { c.SkillBudget = 0 }},
		{"negative cooldown", func(c *Config) { c.Cooldown = -time.Hour }},
		{"unknown backend", func(c *Config) { c.SessionBackend = "memcached" }},
		{"redis without addr", func(c *Config) { c.SessionBackend = BackendRedis; c.RedisAddr = "" }},
		{"bad gated mode", func(c *Config) { c.CooldownModes = []string{"daily"} }},
		{"bad gateway url", func(c *Config) { c.GatewayURL = "not a url" }},
		{"expiring redis sessions without sweep", func(c *Config) { c.SessionBackend = BackendRedis }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_RedisSessionExpiry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SessionBackend = BackendRedis
	assert.ErrorContains(t, cfg.Validate(), "LINGOQUIZ_SWEEP_SCHEDULE")

	swept := cfg
	swept.SweepSchedule = "@every 30s"
	assert.NoError(t, swept.Validate())

	kept := cfg
	kept.SessionTTL = 0
	assert.NoError(t, kept.Validate())
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("LINGOQUIZ_HTTP_ADDR=127.0.0.1:9090\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LINGOQUIZ_HTTP_ADDR") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTPAddr)
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}
