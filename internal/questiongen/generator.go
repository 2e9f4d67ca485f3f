// Package questiongen drafts question bank entries with an LLM.
package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/lingoquiz/internal/llm"
	"github.com/abhisek/lingoquiz/internal/quiz"
)

// MaxCount caps the questions requested in one call.
const MaxCount = 20

// ErrNoValidQuestions is returned when every drafted question was dropped.
var ErrNoValidQuestions = errors.New("no drafted question passed validation")

// Config controls a Generator.
type Config struct {
	// Validators run in order on every drafted question; the first
	// failure drops it.
	Validators []Validator

	MaxTokens   int
	Temperature float64

	// MaxExisting bounds the bank questions listed in the prompt.
	MaxExisting int
}

// DefaultConfig returns the standard validator chain and limits.
func DefaultConfig() Config {
	return Config{
		Validators:  []Validator{&StructuralValidator{}, &DuplicateValidator{}},
		MaxTokens:   4096,
		Temperature: 0.8,
		MaxExisting: 30,
	}
}

// Input selects what to draft.
type Input struct {
	Skill quiz.Skill
	Level quiz.Level
	Count int

	// Existing holds texts of questions already in the bank.
	Existing []string
}

// Result holds the kept questions and the reasons others were dropped.
type Result struct {
	Questions []quiz.Question
	Dropped   []*ValidationError
}

// Generator drafts questions through an LLM provider.
type Generator struct {
	provider llm.Provider
	config   Config
}

// New returns a Generator.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg}
}

type draftOutput struct {
	Questions []struct {
		Text         string   `json:"text"`
		Options      []string `json:"options"`
		CorrectIndex int      `json:"correct_index"`
		Explanation  string   `json:"explanation"`
	} `json:"questions"`
}

// Generate drafts up to in.Count questions for the skill and level.
func (g *Generator) Generate(ctx context.Context, in Input) (*Result, error) {
	if _, err := quiz.ParseSkill(string(in.Skill)); err != nil {
		return nil, err
	}
	if _, err := quiz.ParseLevel(string(in.Level)); err != nil {
		return nil, err
	}
	if in.Count <= 0 || in.Count > MaxCount {
		return nil, fmt.Errorf("count must be between 1 and %d", MaxCount)
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		Purpose:     llm.PurposeQuestionDraft,
		System:      systemPrompt,
		Prompt:      buildUserMessage(in, g.config),
		Schema:      BatchSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw draftOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	seen := make(map[string]bool, len(in.Existing)+len(raw.Questions))
	for _, text := range in.Existing {
		seen[normalize(text)] = true
	}

	res := &Result{}
	for _, d := range raw.Questions {
		if len(res.Questions) == in.Count {
			break
		}
		q := quiz.Question{
			Text:         d.Text,
			Options:      d.Options,
			CorrectIndex: d.CorrectIndex,
			Skill:        in.Skill,
			Level:        in.Level,
		}
		if verr := g.validate(q, seen); verr != nil {
			res.Dropped = append(res.Dropped, verr)
			continue
		}
		seen[normalize(q.Text)] = true
		res.Questions = append(res.Questions, q)
	}
	if len(res.Questions) == 0 {
		return res, ErrNoValidQuestions
	}
	return res, nil
}

func (g *Generator) validate(q quiz.Question, seen map[string]bool) *ValidationError {
	for _, v := range g.config.Validators {
		if verr := v.Validate(q, seen); verr != nil {
			return verr
		}
	}
	return nil
}
