package engine

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

// Deps are the collaborators the engine drives.
type Deps struct {
	Questions QuestionSupplier
	Sessions  SessionStore
	Results   ResultStore
	Notifier  Notifier

	// Premium is optional. Without it every identity is free-tier.
	Premium PremiumChecker

	// Logger defaults to log.Default().
	Logger *log.Logger

	// NewID defaults to random UUIDs.
	NewID func() string
}

// Engine runs quiz sessions. All operations on one identity are
// serialized; different identities proceed in parallel.
type Engine struct {
	questions QuestionSupplier
	sessions  SessionStore
	results   ResultStore
	notifier  Notifier
	premium   PremiumChecker
	logger    *log.Logger
	newID     func() string

	policy Policy
	lanes  *lanes
}

// New creates an Engine from its collaborators and a resolved policy.
func New(deps Deps, policy Policy) (*Engine, error) {
	switch {
	case deps.Questions == nil:
		return nil, errors.New("engine: question supplier is required")
	case deps.Sessions == nil:
		return nil, errors.New("engine: session store is required")
	case deps.Results == nil:
		return nil, errors.New("engine: result store is required")
	case deps.Notifier == nil:
		return nil, errors.New("engine: notifier is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		questions: deps.Questions,
		sessions:  deps.Sessions,
		results:   deps.Results,
		notifier:  deps.Notifier,
		premium:   deps.Premium,
		logger:    deps.Logger,
		newID:     deps.NewID,
		policy:    policy,
		lanes:     newLanes(),
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if e.newID == nil {
		e.newID = func() string { return uuid.New().String() }
	}
	return e, nil
}

// Policy returns the engine's resolved policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// IsExpired reports whether now is past the session deadline.
func IsExpired(s *quiz.Session, now time.Time) bool {
	return now.After(s.Deadline)
}

func (e *Engine) prompt(s *quiz.Session, now time.Time) Prompt {
	q, _ := s.Current()
	return Prompt{
		Question:   q,
		Number:     s.Index + 1,
		Total:      len(s.Questions),
		LevelLabel: s.LevelLabel,
		Remaining:  s.Remaining(now),
	}
}
