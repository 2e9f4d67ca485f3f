package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

// AnswerOutcome classifies the result of SubmitAnswer.
type AnswerOutcome int

const (
	// AnswerAck means the answer was recorded and the next question delivered.
	AnswerAck AnswerOutcome = iota

	// AnswerRejected means the input was absorbed without any state change.
	AnswerRejected

	// AnswerSessionEnded means the session was finalized.
	AnswerSessionEnded
)

func (o AnswerOutcome) String() string {
	switch o {
	case AnswerAck:
		return "ack"
	case AnswerRejected:
		return "rejected"
	case AnswerSessionEnded:
		return "session_ended"
	}
	return fmt.Sprintf("AnswerOutcome(%d)", int(o))
}

// AnswerResult describes what SubmitAnswer did.
type AnswerResult struct {
	Outcome AnswerOutcome

	// Reason is ErrNoActiveSession or ErrStaleAnswer for rejections.
	Reason error

	// Correct reports the scored answer. False for rejections and for
	// sessions that ended before the answer was considered.
	Correct bool

	// Handle is the transport handle of the next question on ack.
	Handle string

	// Summary is set when the session ended.
	Summary *Summary
}

// SubmitAnswer applies one answer event for identity. Duplicate and late
// input is rejected without error; the returned error is reserved for
// storage and delivery failures.
func (e *Engine) SubmitAnswer(ctx context.Context, identity, questionID string, chosen int, now time.Time) (*AnswerResult, error) {
	release, err := e.lanes.acquire(ctx, identity)
	if err != nil {
		return nil, err
	}
	defer release()

	s, err := e.sessions.Get(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return &AnswerResult{Outcome: AnswerRejected, Reason: ErrNoActiveSession}, nil
	}
	if outcome, ok := settled(s); ok {
		return e.end(ctx, s, outcome, now)
	}

	if IsExpired(s, now) {
		return e.end(ctx, s, OutcomeExpired, now)
	}

	current, ok := s.Current()
	if !ok {
		// Every question was answered but the session survived; finish it.
		return e.end(ctx, s, OutcomeCompleted, now)
	}

	if questionID != current.ID {
		return &AnswerResult{Outcome: AnswerRejected, Reason: ErrStaleAnswer}, nil
	}

	correct := chosen == current.CorrectIndex
	s.Answers = append(s.Answers, quiz.AnswerRecord{
		QuestionID:  current.ID,
		Skill:       current.Skill,
		Correct:     correct,
		ChosenIndex: chosen,
	})
	if correct {
		s.Score++
	}
	s.Index++

	if err := e.sessions.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if s.Index == len(s.Questions) {
		res, err := e.end(ctx, s, OutcomeCompleted, now)
		if res != nil {
			res.Correct = correct
		}
		return res, err
	}

	handle, err := e.notifier.DeliverQuestion(ctx, identity, e.prompt(s, now))
	if err != nil {
		return &AnswerResult{Outcome: AnswerAck, Correct: correct}, fmt.Errorf("deliver question: %w", err)
	}
	e.recordHandle(ctx, s, handle)

	return &AnswerResult{Outcome: AnswerAck, Correct: correct, Handle: handle}, nil
}

// Resume re-delivers the current question of identity's session, for
// example after a restart of the transport. An expired session is
// finalized instead.
func (e *Engine) Resume(ctx context.Context, identity string, now time.Time) (*AnswerResult, error) {
	release, err := e.lanes.acquire(ctx, identity)
	if err != nil {
		return nil, err
	}
	defer release()

	s, err := e.sessions.Get(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return &AnswerResult{Outcome: AnswerRejected, Reason: ErrNoActiveSession}, nil
	}
	if outcome, ok := settled(s); ok {
		return e.end(ctx, s, outcome, now)
	}
	if IsExpired(s, now) {
		return e.end(ctx, s, OutcomeExpired, now)
	}
	if _, ok := s.Current(); !ok {
		return e.end(ctx, s, OutcomeCompleted, now)
	}

	handle, err := e.notifier.DeliverQuestion(ctx, identity, e.prompt(s, now))
	if err != nil {
		return nil, fmt.Errorf("deliver question: %w", err)
	}
	e.recordHandle(ctx, s, handle)
	return &AnswerResult{Outcome: AnswerAck, Handle: handle}, nil
}

// Active returns identity's session without mutating it, or nil.
// Expired sessions are reported as they are; callers that act on the
// session go through Resume or SubmitAnswer.
func (e *Engine) Active(ctx context.Context, identity string) (*quiz.Session, error) {
	release, err := e.lanes.acquire(ctx, identity)
	if err != nil {
		return nil, err
	}
	defer release()

	s, err := e.sessions.Get(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

func (e *Engine) end(ctx context.Context, s *quiz.Session, outcome Outcome, now time.Time) (*AnswerResult, error) {
	sum, err := e.finalize(ctx, s, outcome, now)
	if err != nil {
		return nil, err
	}
	return &AnswerResult{Outcome: AnswerSessionEnded, Summary: sum}, nil
}

// Reset discards identity's session without recording a result. It
// reports whether a session existed.
func (e *Engine) Reset(ctx context.Context, identity string) (bool, error) {
	release, err := e.lanes.acquire(ctx, identity)
	if err != nil {
		return false, err
	}
	defer release()

	s, err := e.sessions.Get(ctx, identity)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return false, nil
	}
	if err := e.sessions.Delete(ctx, identity); err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return true, nil
}
