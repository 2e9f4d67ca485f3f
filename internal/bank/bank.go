// Package bank reads and writes question bank files.
//
// A bank file is a JSON document:
//
//	{
//	  "version": "v1.0.0",
//	  "questions": [
//	    {"kind": "skill", "skill": "grammar", "level": "easy",
//	     "text": "She ___ to school every day.",
//	     "options": ["go", "goes", "going"], "correct": 1}
//	  ]
//	}
//
// The version is a semantic version; only major version v1 is understood.
package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/mod/semver"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

// CurrentVersion is written by Encode.
const CurrentVersion = "v1.0.0"

const supportedMajor = "v1"

// File is a parsed bank file.
type File struct {
	Version   string  `json:"version" validate:"required"`
	Questions []Entry `json:"questions" validate:"required,min=1,dive"`
}

// Entry is one question in a bank file.
type Entry struct {
	Kind    string      `json:"kind" validate:"required,oneof=comprehensive skill"`
	Skill   string      `json:"skill" validate:"required,oneof=grammar vocabulary reading conversation"`
	Level   string      `json:"level" validate:"required,oneof=easy medium hard"`
	Text    string      `json:"text" validate:"required,max=2000"`
	Options []string    `json:"options" validate:"min=2,max=6,dive,required"`
	Correct int         `json:"correct" validate:"gte=0"`
	Media   *quiz.Media `json:"media,omitempty"`
}

// Question converts the entry to a quiz question without an id.
func (e Entry) Question() quiz.Question {
	return quiz.Question{
		Text:         e.Text,
		Options:      append([]string(nil), e.Options...),
		CorrectIndex: e.Correct,
		Skill:        quiz.Skill(e.Skill),
		Level:        quiz.Level(e.Level),
		Media:        e.Media,
	}
}

// EntryFor builds an entry from a question.
func EntryFor(kind string, q quiz.Question) Entry {
	return Entry{
		Kind:    kind,
		Skill:   string(q.Skill),
		Level:   string(q.Level),
		Text:    q.Text,
		Options: append([]string(nil), q.Options...),
		Correct: q.CorrectIndex,
		Media:   q.Media,
	}
}

// ErrUnsupportedVersion is returned for bank files of another major version.
var ErrUnsupportedVersion = errors.New("unsupported bank file version")

var validate = validator.New()

// Parse reads and validates a bank file.
func Parse(r io.Reader) (*File, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode bank file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the version and every entry.
func (f *File) Validate() error {
	if !semver.IsValid(f.Version) {
		return fmt.Errorf("bank file version %q is not a semantic version", f.Version)
	}
	if major := semver.Major(f.Version); major != supportedMajor {
		return fmt.Errorf("%w: %s (want %s)", ErrUnsupportedVersion, f.Version, supportedMajor)
	}
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid bank file: %w", err)
	}
	var errs []error
	for i, e := range f.Questions {
		if err := e.Question().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("question %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

// Encode writes entries as an indented bank file at CurrentVersion.
func Encode(w io.Writer, entries []Entry) error {
	b, err := json.MarshalIndent(File{Version: CurrentVersion, Questions: entries}, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = io.Copy(w, bytes.NewReader(b))
	return err
}

// Sink stores questions. store.QuestionRepo implements it.
type Sink interface {
	Add(ctx context.Context, kind string, q quiz.Question, now time.Time) (int, error)
}

// Import adds every entry of f to sink in file order and returns the new
// ids. It stops at the first failure; entries added before it remain.
func Import(ctx context.Context, sink Sink, f *File, now time.Time) ([]int, error) {
	ids := make([]int, 0, len(f.Questions))
	for i, e := range f.Questions {
		id, err := sink.Add(ctx, e.Kind, e.Question(), now)
		if err != nil {
			return ids, fmt.Errorf("import question %d: %w", i+1, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
