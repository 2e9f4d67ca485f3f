package api

import (
	"time"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/notify"
	"github.com/abhisek/lingoquiz/internal/store"
)

// StartRequest is the body of POST /v1/sessions.
type StartRequest struct {
	Identity    string `json:"identity" validate:"required,max=128"`
	DisplayName string `json:"display_name" validate:"max=128"`
	Mode        string `json:"mode" validate:"required,oneof=comprehensive skill"`
	Skill       string `json:"skill" validate:"required_if=Mode skill"`
	Level       string `json:"level" validate:"required_if=Mode skill"`
}

// AnswerRequest is the body of POST /v1/answers. Choice is the 0-based
// option index.
type AnswerRequest struct {
	Identity   string `json:"identity" validate:"required,max=128"`
	QuestionID string `json:"question_id" validate:"required"`
	Choice     *int   `json:"choice" validate:"required,gte=0"`
}

// IdentityRequest is the body of endpoints that only need the caller.
type IdentityRequest struct {
	Identity string `json:"identity" validate:"required,max=128"`
}

// SessionView describes a started session.
type SessionView struct {
	SessionID  string    `json:"session_id"`
	Mode       string    `json:"mode"`
	LevelLabel string    `json:"level_label"`
	Questions  int       `json:"questions"`
	Deadline   time.Time `json:"deadline"`
	Handle     string    `json:"message_handle"`
}

// SkillView is one row of a comprehensive breakdown.
type SkillView struct {
	Skill   string `json:"skill"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
}

// SummaryView is a finished session.
type SummaryView struct {
	SessionID  string      `json:"session_id"`
	Outcome    string      `json:"outcome"`
	Score      int         `json:"score"`
	Total      int         `json:"total"`
	Answered   int         `json:"answered"`
	Percentage int         `json:"percentage"`
	Level      string      `json:"level"`
	Skills     []SkillView `json:"skills,omitempty"`
	Text       string      `json:"text"`
}

// StartView is the data of a successful start.
type StartView struct {
	Session  SessionView  `json:"session"`
	Previous *SummaryView `json:"previous,omitempty"`
}

// AnswerView is the data of POST /v1/answers and /v1/sessions/resume.
type AnswerView struct {
	Outcome string       `json:"outcome"`
	Reason  string       `json:"reason,omitempty"`
	Correct bool         `json:"correct"`
	Handle  string       `json:"message_handle,omitempty"`
	Summary *SummaryView `json:"summary,omitempty"`
}

// StatsView is the data of GET /v1/stats.
type StatsView struct {
	Identity     string     `json:"identity"`
	TestsTaken   int        `json:"tests_taken"`
	TotalScore   int        `json:"total_score"`
	HighestScore int        `json:"highest_score"`
	AverageScore float64    `json:"average_score"`
	LastLevel    string     `json:"last_level,omitempty"`
	LastFinished *time.Time `json:"last_finished,omitempty"`
}

// LeaderboardRow is one row of GET /v1/leaderboard.
type LeaderboardRow struct {
	Rank        int    `json:"rank"`
	Identity    string `json:"identity"`
	DisplayName string `json:"display_name,omitempty"`
	TotalScore  int    `json:"total_score"`
	Tests       int    `json:"tests"`
}

// MessageView is one transcript entry of GET /v1/messages.
type MessageView struct {
	Handle     string    `json:"message_handle"`
	Kind       string    `json:"kind"`
	Text       string    `json:"text"`
	QuestionID string    `json:"question_id,omitempty"`
	Options    []string  `json:"options,omitempty"`
	At         time.Time `json:"at"`
}

func summaryView(sum *engine.Summary) *SummaryView {
	if sum == nil {
		return nil
	}
	v := &SummaryView{
		SessionID:  sum.SessionID,
		Outcome:    string(sum.Outcome),
		Score:      sum.Score,
		Total:      sum.Total,
		Answered:   sum.Answered,
		Percentage: sum.Percentage,
		Level:      sum.Tier,
		Text:       sum.Text(),
	}
	for _, sk := range sum.Skills {
		v.Skills = append(v.Skills, SkillView{Skill: string(sk.Skill), Correct: sk.Correct, Total: sk.Total})
	}
	return v
}

func answerView(res *engine.AnswerResult) AnswerView {
	v := AnswerView{
		Outcome: res.Outcome.String(),
		Correct: res.Correct,
		Handle:  res.Handle,
		Summary: summaryView(res.Summary),
	}
	if res.Reason != nil {
		v.Reason = res.Reason.Error()
	}
	return v
}

func statsView(identity string, st store.UserStats) StatsView {
	v := StatsView{
		Identity:     identity,
		TestsTaken:   st.TestsTaken,
		TotalScore:   st.TotalScore,
		HighestScore: st.HighestScore,
		AverageScore: st.AverageScore,
		LastLevel:    st.LastLevel,
	}
	if !st.LastFinished.IsZero() {
		t := st.LastFinished
		v.LastFinished = &t
	}
	return v
}

func messageView(m notify.Message) MessageView {
	v := MessageView{Handle: m.Handle, Kind: m.Kind, Text: m.Text, At: m.At}
	if m.Prompt != nil {
		v.QuestionID = m.Prompt.Question.ID
		v.Options = m.Prompt.Question.Options
	}
	return v
}
