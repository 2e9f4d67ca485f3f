package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

// Validator checks a drafted question before it is kept.
type Validator interface {
	Name() string
	Validate(q quiz.Question, seen map[string]bool) *ValidationError
}

// ValidationError describes why a drafted question was dropped.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator applies the deliverability rules plus drafting
// limits on length and option count.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q quiz.Question, _ map[string]bool) *ValidationError {
	if err := q.Validate(); err != nil {
		return &ValidationError{Validator: v.Name(), Message: err.Error()}
	}
	if len(q.Text) > 600 {
		return &ValidationError{Validator: v.Name(), Message: "text exceeds 600 characters"}
	}
	if len(q.Options) > 6 {
		return &ValidationError{Validator: v.Name(), Message: "more than 6 options"}
	}
	opts := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		key := normalize(o)
		if key == "" {
			return &ValidationError{Validator: v.Name(), Message: "blank option"}
		}
		if opts[key] {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("duplicate option %q", o)}
		}
		opts[key] = true
	}
	return nil
}

// DuplicateValidator drops questions whose text is already in the bank
// or earlier in the same batch.
type DuplicateValidator struct{}

func (v *DuplicateValidator) Name() string { return "duplicate" }

func (v *DuplicateValidator) Validate(q quiz.Question, seen map[string]bool) *ValidationError {
	if seen[normalize(q.Text)] {
		return &ValidationError{Validator: v.Name(), Message: "question already exists"}
	}
	return nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
