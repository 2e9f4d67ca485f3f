// Package config resolves lingoquiz runtime configuration from an optional
// .env file and LINGOQUIZ_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/quiz"
)

// Session store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds everything the commands need to wire an engine and its
// collaborators.
type Config struct {
	// DBPath overrides the default SQLite location. Empty means default.
	DBPath string

	MaxQuestions        int           `validate:"gt=0,lte=1000"`
	ComprehensiveBudget time.Duration `validate:"gt=0"`
	SkillBudget         time.Duration `validate:"gt=0"`
	Cooldown            time.Duration `validate:"gte=0"`
	CooldownModes       []string      `validate:"dive,oneof=comprehensive skill"`

	SessionBackend string        `validate:"required,oneof=sqlite redis"`
	RedisAddr      string        `validate:"required_if=SessionBackend redis"`
	RedisPassword  string
	RedisDB        int           `validate:"gte=0"`
	SessionTTL     time.Duration `validate:"gte=0"`

	HTTPAddr     string `validate:"required"`
	GatewayURL   string `validate:"omitempty,url"`
	GatewayToken string

	// SweepSchedule is a cron spec. Empty disables the background sweep and
	// leaves expiry to the lazy check on the next inbound event. Redis
	// sessions with a TTL require it.
	SweepSchedule string

	// User is the local identity used by the terminal client.
	User string
}

// DefaultConfig returns a Config with the stock policy values.
func DefaultConfig() Config {
	return Config{
		MaxQuestions:        100,
		ComprehensiveBudget: 40 * time.Second,
		SkillBudget:         60 * time.Second,
		Cooldown:            24 * time.Hour,
		CooldownModes:       []string{string(quiz.ModeComprehensive)},
		SessionBackend:      BackendSQLite,
		RedisAddr:           "localhost:6379",
		SessionTTL:          48 * time.Hour,
		HTTPAddr:            ":8080",
	}
}

// Load reads envFile (if non-empty and present) into the process
// environment without overriding variables that are already set, then
// builds a validated Config from the environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv builds a Config from LINGOQUIZ_* variables over DefaultConfig.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	p := &envParser{}

	cfg.DBPath = p.str("LINGOQUIZ_DB", cfg.DBPath)
	cfg.MaxQuestions = p.integer("LINGOQUIZ_MAX_QUESTIONS", cfg.MaxQuestions)
	cfg.ComprehensiveBudget = p.duration("LINGOQUIZ_COMPREHENSIVE_BUDGET", cfg.ComprehensiveBudget)
	cfg.SkillBudget = p.duration("LINGOQUIZ_SKILL_BUDGET", cfg.SkillBudget)
	cfg.Cooldown = p.duration("LINGOQUIZ_COOLDOWN", cfg.Cooldown)
	cfg.CooldownModes = p.list("LINGOQUIZ_COOLDOWN_MODES", cfg.CooldownModes)
	cfg.SessionBackend = strings.ToLower(p.str("LINGOQUIZ_SESSION_BACKEND", cfg.SessionBackend))
	cfg.RedisAddr = p.str("LINGOQUIZ_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = p.str("LINGOQUIZ_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = p.integer("LINGOQUIZ_REDIS_DB", cfg.RedisDB)
	cfg.SessionTTL = p.duration("LINGOQUIZ_SESSION_TTL", cfg.SessionTTL)
	cfg.HTTPAddr = p.str("LINGOQUIZ_HTTP_ADDR", cfg.HTTPAddr)
	cfg.GatewayURL = p.str("LINGOQUIZ_GATEWAY_URL", cfg.GatewayURL)
	cfg.GatewayToken = p.str("LINGOQUIZ_GATEWAY_TOKEN", cfg.GatewayToken)
	cfg.SweepSchedule = p.str("LINGOQUIZ_SWEEP_SCHEDULE", cfg.SweepSchedule)
	cfg.User = p.str("LINGOQUIZ_USER", cfg.User)

	if len(p.errs) > 0 {
		return Config{}, errors.Join(p.errs...)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and that the resolved policy is usable.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.evictsSessions() && c.SweepSchedule == "" {
		return fmt.Errorf("invalid config: LINGOQUIZ_SWEEP_SCHEDULE is required when redis sessions expire " +
			"(LINGOQUIZ_SESSION_TTL > 0); without a sweep an evicted session never records its result")
	}
	return nil
}

// evictsSessions reports whether the session backend drops sessions on
// its own after their deadline.
func (c Config) evictsSessions() bool {
	return c.SessionBackend == BackendRedis && c.SessionTTL > 0
}

// Policy resolves the per-mode parameters into an engine policy.
func (c Config) Policy() engine.Policy {
	gated := make(map[quiz.Mode]bool, len(c.CooldownModes))
	for _, m := range c.CooldownModes {
		if mode, err := quiz.ParseMode(m); err == nil {
			gated[mode] = true
		}
	}

	p := engine.DefaultPolicy()
	p.MaxQuestions = c.MaxQuestions
	p.CooldownWindow = c.Cooldown
	p.Modes = map[quiz.Mode]engine.ModePolicy{
		quiz.ModeComprehensive: {
			PerQuestion:   c.ComprehensiveBudget,
			CooldownGated: gated[quiz.ModeComprehensive],
		},
		quiz.ModeSkill: {
			PerQuestion:   c.SkillBudget,
			CooldownGated: gated[quiz.ModeSkill],
		},
	}
	return p
}

// envParser collects parse errors so every bad variable is reported at once.
type envParser struct {
	errs []error
}

func (p *envParser) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (p *envParser) integer(key string, def int) int {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *envParser) duration(key string, def time.Duration) time.Duration {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

// list splits a comma separated value. A variable set to "none" yields an
// empty list.
func (p *envParser) list(key string, def []string) []string {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	if strings.EqualFold(v, "none") {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
