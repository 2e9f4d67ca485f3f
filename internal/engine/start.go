package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

// Selection narrows a skill-based quiz to one skill and level.
type Selection struct {
	Skill quiz.Skill
	Level quiz.Level
}

// Started is the result of a successful StartSession.
type Started struct {
	Session *quiz.Session
	Handle  string

	// Previous is set when a leftover session was finalized
	// before the new one started.
	Previous *Summary
}

// StartSession creates a session for identity and delivers its first
// question. A live session yields ErrSessionAlreadyActive; a session past
// its deadline is finalized as expired first.
func (e *Engine) StartSession(ctx context.Context, identity string, mode quiz.Mode, sel *Selection, now time.Time) (*Started, error) {
	mp, err := e.policy.Mode(mode)
	if err != nil {
		return nil, err
	}
	if mode == quiz.ModeSkill && sel == nil {
		return nil, fmt.Errorf("skill quiz needs a skill and level")
	}

	release, err := e.lanes.acquire(ctx, identity)
	if err != nil {
		return nil, err
	}
	defer release()

	out := &Started{}

	existing, err := e.sessions.Get(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if existing != nil {
		if _, recorded := settled(existing); !recorded && !IsExpired(existing, now) {
			return nil, ErrSessionAlreadyActive
		}
		sum, err := e.finalize(ctx, existing, OutcomeExpired, now)
		if err != nil {
			return nil, err
		}
		out.Previous = sum
	}

	decision, err := e.CanStart(ctx, identity, mode, now)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &CooldownError{Remaining: decision.Remaining}
	}

	questions, err := e.fetch(ctx, mode, sel)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestionsAvailable
	}
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("fetch questions: %w", err)
		}
	}

	s := &quiz.Session{
		ID:        e.newID(),
		Owner:     identity,
		Mode:      mode,
		Questions: questions,
		StartedAt: now,
		Deadline:  now.Add(mp.PerQuestion * time.Duration(len(questions))),
		Answers:   []quiz.AnswerRecord{},
		Status:    quiz.StatusActive,
	}
	if sel != nil && mode == quiz.ModeSkill {
		s.Skill, s.Level = sel.Skill, sel.Level
	}
	s.LevelLabel = quiz.LevelLabel(mode, s.Skill, s.Level)

	if err := e.sessions.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	handle, err := e.notifier.DeliverQuestion(ctx, identity, e.prompt(s, now))
	if err != nil {
		if delErr := e.sessions.Delete(ctx, identity); delErr != nil {
			e.logger.Printf("start %s: roll back session: %v", identity, delErr)
		}
		return nil, fmt.Errorf("deliver question: %w", err)
	}
	e.recordHandle(ctx, s, handle)

	out.Session = s
	out.Handle = handle
	return out, nil
}

func (e *Engine) fetch(ctx context.Context, mode quiz.Mode, sel *Selection) ([]quiz.Question, error) {
	limit := e.policy.MaxQuestions
	var (
		qs  []quiz.Question
		err error
	)
	if mode == quiz.ModeComprehensive {
		qs, err = e.questions.FetchComprehensive(ctx, limit)
	} else {
		qs, err = e.questions.FetchBySkillAndLevel(ctx, sel.Skill, sel.Level, limit)
	}
	if len(qs) > limit {
		qs = qs[:limit]
	}
	return qs, err
}

// recordHandle stores the transport handle of the delivered question.
// Failure is logged: the handle only helps transports correlate input.
func (e *Engine) recordHandle(ctx context.Context, s *quiz.Session, handle string) {
	if handle == "" || handle == s.MessageHandle {
		return
	}
	s.MessageHandle = handle
	if err := e.sessions.Put(ctx, s); err != nil {
		e.logger.Printf("session %s: save message handle: %v", s.ID, err)
	}
}
