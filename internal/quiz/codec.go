package quiz

import (
	"encoding/json"
	"fmt"
	"time"
)

// codecVersion is bumped whenever the persisted session layout changes.
const codecVersion = 1

// sessionRecord is the persisted layout of a Session.
type sessionRecord struct {
	Version       int            `json:"v"`
	ID            string         `json:"id"`
	Owner         string         `json:"owner"`
	Mode          Mode           `json:"mode"`
	Skill         Skill          `json:"skill,omitempty"`
	Level         Level          `json:"level,omitempty"`
	LevelLabel    string         `json:"level_label"`
	Questions     []Question     `json:"questions"`
	Index         int            `json:"index"`
	Score         int            `json:"score"`
	StartedAt     time.Time      `json:"started_at"`
	Deadline      time.Time      `json:"deadline"`
	Answers       []AnswerRecord `json:"answers"`
	Status        Status         `json:"status"`
	MessageHandle string         `json:"message_handle,omitempty"`
}

// EncodeSession serializes a session for a Session Store.
func EncodeSession(s *Session) ([]byte, error) {
	rec := sessionRecord{
		Version:       codecVersion,
		ID:            s.ID,
		Owner:         s.Owner,
		Mode:          s.Mode,
		Skill:         s.Skill,
		Level:         s.Level,
		LevelLabel:    s.LevelLabel,
		Questions:     s.Questions,
		Index:         s.Index,
		Score:         s.Score,
		StartedAt:     s.StartedAt.UTC(),
		Deadline:      s.Deadline.UTC(),
		Answers:       s.Answers,
		Status:        s.Status,
		MessageHandle: s.MessageHandle,
	}
	if rec.Answers == nil {
		rec.Answers = []AnswerRecord{}
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return b, nil
}

// DecodeSession parses a session written by EncodeSession and checks
// its invariants.
func DecodeSession(data []byte) (*Session, error) {
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if rec.Version != codecVersion {
		return nil, fmt.Errorf("decode session: unsupported version %d", rec.Version)
	}
	if _, err := ParseMode(string(rec.Mode)); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s := &Session{
		ID:            rec.ID,
		Owner:         rec.Owner,
		Mode:          rec.Mode,
		Skill:         rec.Skill,
		Level:         rec.Level,
		LevelLabel:    rec.LevelLabel,
		Questions:     rec.Questions,
		Index:         rec.Index,
		Score:         rec.Score,
		StartedAt:     rec.StartedAt,
		Deadline:      rec.Deadline,
		Answers:       rec.Answers,
		Status:        rec.Status,
		MessageHandle: rec.MessageHandle,
	}
	if s.Answers == nil {
		s.Answers = []AnswerRecord{}
	}
	if err := s.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}
