package quiz

import (
	"fmt"
	"time"
)

// Mode selects how a quiz draws its questions.
type Mode string

const (
	// ModeComprehensive draws a fixed mixed-skill set from the bank.
	ModeComprehensive Mode = "comprehensive"

	// ModeSkill draws questions for one skill at one difficulty level.
	ModeSkill Mode = "skill"
)

// AllModes returns every mode in display order.
func AllModes() []Mode {
	return []Mode{ModeComprehensive, ModeSkill}
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeComprehensive, ModeSkill:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown quiz mode: %q", s)
}

func (m Mode) String() string { return string(m) }

// ComprehensiveLabel is the level label shown for comprehensive sessions.
const ComprehensiveLabel = "Comprehensive"

// LevelLabel returns the display label of a session in the given mode.
func LevelLabel(mode Mode, skill Skill, level Level) string {
	if mode == ModeComprehensive {
		return ComprehensiveLabel
	}
	return skill.DisplayName() + " – " + level.DisplayName()
}

// MediaKind classifies an optional question attachment.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// Media references a file attached to a question.
type Media struct {
	Path string    `json:"path"`
	Kind MediaKind `json:"kind"`
}

// Question is an immutable snapshot of a bank entry taken when a session starts.
type Question struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Skill        Skill    `json:"skill"`
	Level        Level    `json:"level"`
	Media        *Media   `json:"media,omitempty"`
}

// Validate checks the structural rules every deliverable question must meet.
func (q Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("question %s: empty text", q.ID)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %s: need at least 2 options, got %d", q.ID, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("question %s: correct index %d out of range", q.ID, q.CorrectIndex)
	}
	if _, err := ParseSkill(string(q.Skill)); err != nil {
		return fmt.Errorf("question %s: %w", q.ID, err)
	}
	return nil
}

// AnswerRecord is one answered question, appended in answer order.
type AnswerRecord struct {
	QuestionID  string `json:"question_id"`
	Skill       Skill  `json:"skill"`
	Correct     bool   `json:"correct"`
	ChosenIndex int    `json:"chosen_index"`
}

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// Session is the live state of one identity's quiz attempt.
type Session struct {
	ID         string
	Owner      string
	Mode       Mode
	Skill      Skill
	Level      Level
	LevelLabel string
	Questions  []Question
	Index      int
	Score      int
	StartedAt  time.Time
	Deadline   time.Time
	Answers    []AnswerRecord
	Status     Status

	// MessageHandle is the transport handle of the last delivered question.
	MessageHandle string
}

// Current returns the question at the cursor, or false once every
// question has been answered.
func (s *Session) Current() (Question, bool) {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Index], true
}

// Remaining returns the time left before the deadline, floored at zero.
func (s *Session) Remaining(now time.Time) time.Duration {
	d := s.Deadline.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// CheckInvariants reports the first broken structural invariant.
func (s *Session) CheckInvariants() error {
	switch {
	case s.Index < 0 || s.Index > len(s.Questions):
		return fmt.Errorf("index %d outside [0, %d]", s.Index, len(s.Questions))
	case s.Score < 0 || s.Score > s.Index:
		return fmt.Errorf("score %d outside [0, %d]", s.Score, s.Index)
	case len(s.Answers) != s.Index:
		return fmt.Errorf("%d answer records for index %d", len(s.Answers), s.Index)
	}
	return nil
}

// HistoricalResult is the append-only record of a finished session.
type HistoricalResult struct {
	Owner      string
	Score      int
	Total      int
	Level      string
	Mode       Mode
	FinishedAt time.Time
}
