package engine

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSessionAlreadyActive is returned by StartSession when the identity
	// already has a live session.
	ErrSessionAlreadyActive = errors.New("a quiz session is already active")

	// ErrCooldownActive matches every *CooldownError.
	ErrCooldownActive = errors.New("quiz cooldown is active")

	// ErrNoQuestionsAvailable is returned when the supplier has nothing for
	// the requested mode. No session is created.
	ErrNoQuestionsAvailable = errors.New("no questions available")

	// ErrNoActiveSession is the rejection reason for input with no session.
	ErrNoActiveSession = errors.New("no active quiz session")

	// ErrStaleAnswer is the rejection reason for an answer to a question
	// that is no longer current.
	ErrStaleAnswer = errors.New("answer does not match the current question")
)

// CooldownError carries the wait left before the mode can be started again.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("quiz cooldown is active (try again in %s)", e.Remaining.Round(time.Minute))
}

func (e *CooldownError) Is(target error) bool { return target == ErrCooldownActive }
