package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

// Outcome is how a session ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeExpired   Outcome = "expired"
)

// SkillScore is the per-skill tally of a comprehensive session.
type SkillScore struct {
	Skill   quiz.Skill
	Correct int
	Total   int
}

// Ratio returns Correct/Total as a fraction in [0, 1].
func (s SkillScore) Ratio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Summary is the scored result of a finished session.
type Summary struct {
	SessionID  string
	Owner      string
	Mode       quiz.Mode
	LevelLabel string
	Outcome    Outcome
	Score      int
	Total      int
	Answered   int
	Percentage int
	Tier       string
	Skills     []SkillScore
	FinishedAt time.Time
}

// Result returns the historical record written for this summary.
func (s *Summary) Result() quiz.HistoricalResult {
	return quiz.HistoricalResult{
		Owner:      s.Owner,
		Score:      s.Score,
		Total:      s.Total,
		Level:      s.Tier,
		Mode:       s.Mode,
		FinishedAt: s.FinishedAt,
	}
}

// Text renders the summary as a chat message.
func (s *Summary) Text() string {
	var b strings.Builder
	if s.Outcome == OutcomeExpired {
		b.WriteString("⏰ Time is up! Your quiz has ended.\n\n")
	} else {
		b.WriteString("✅ Quiz complete!\n\n")
	}
	fmt.Fprintf(&b, "Quiz: %s\n", s.LevelLabel)
	fmt.Fprintf(&b, "Score: %d/%d (%d%%)\n", s.Score, s.Total, s.Percentage)
	if s.Answered < s.Total {
		fmt.Fprintf(&b, "Answered: %d of %d\n", s.Answered, s.Total)
	}
	fmt.Fprintf(&b, "Your level: %s\n", s.Tier)
	if len(s.Skills) > 0 {
		b.WriteString("\nBy skill:\n")
		for _, sk := range s.Skills {
			fmt.Fprintf(&b, "• %s: %d/%d (%.0f%%)\n", sk.Skill.DisplayName(), sk.Correct, sk.Total, sk.Ratio()*100)
		}
	}
	return b.String()
}

// Summarize scores a session without side effects.
func Summarize(s *quiz.Session, outcome Outcome, levels quiz.LevelTable, now time.Time) *Summary {
	pct := quiz.Percentage(s.Score, len(s.Questions))
	sum := &Summary{
		SessionID:  s.ID,
		Owner:      s.Owner,
		Mode:       s.Mode,
		LevelLabel: s.LevelLabel,
		Outcome:    outcome,
		Score:      s.Score,
		Total:      len(s.Questions),
		Answered:   len(s.Answers),
		Percentage: pct,
		Tier:       levels.Classify(pct),
		FinishedAt: now,
	}
	if s.Mode == quiz.ModeComprehensive {
		sum.Skills = skillBreakdown(s.Answers)
	}
	return sum
}

// skillBreakdown tallies answers per skill, omitting skills never attempted.
func skillBreakdown(answers []quiz.AnswerRecord) []SkillScore {
	tally := make(map[quiz.Skill]*SkillScore)
	for _, a := range answers {
		sc := tally[a.Skill]
		if sc == nil {
			sc = &SkillScore{Skill: a.Skill}
			tally[a.Skill] = sc
		}
		sc.Total++
		if a.Correct {
			sc.Correct++
		}
	}

	var out []SkillScore
	for _, sk := range quiz.AllSkills() {
		if sc, ok := tally[sk]; ok {
			out = append(out, *sc)
			delete(tally, sk)
		}
	}
	// Skills outside the known set still count, after the known ones.
	for _, a := range answers {
		if sc, ok := tally[a.Skill]; ok {
			out = append(out, *sc)
			delete(tally, a.Skill)
		}
	}
	return out
}

// Finalize ends identity's session with outcome, records its result and
// removes it. It is a no-op returning nil when the stored session is not
// s, so a session is never finalized twice.
func (e *Engine) Finalize(ctx context.Context, s *quiz.Session, outcome Outcome, now time.Time) (*Summary, error) {
	release, err := e.lanes.acquire(ctx, s.Owner)
	if err != nil {
		return nil, err
	}
	defer release()

	stored, err := e.sessions.Get(ctx, s.Owner)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if stored == nil || stored.ID != s.ID {
		return nil, nil
	}
	return e.finalize(ctx, stored, outcome, now)
}

// settled reports how s ended when an earlier finalize recorded its
// result but could not delete it.
func settled(s *quiz.Session) (Outcome, bool) {
	switch s.Status {
	case quiz.StatusCompleted:
		return OutcomeCompleted, true
	case quiz.StatusExpired:
		return OutcomeExpired, true
	}
	return "", false
}

// finalize must run inside the owner's lane. The result is appended at
// most once per session: the terminal status is written back before the
// delete, and a retry that finds it only cleans up.
func (e *Engine) finalize(ctx context.Context, s *quiz.Session, outcome Outcome, now time.Time) (*Summary, error) {
	prior, recorded := settled(s)
	if recorded {
		outcome = prior
	} else if outcome == OutcomeExpired {
		s.Status = quiz.StatusExpired
	} else {
		s.Status = quiz.StatusCompleted
	}
	sum := Summarize(s, outcome, e.policy.Levels, now)

	if !recorded {
		if err := e.results.AppendResult(ctx, sum.Result()); err != nil {
			return nil, fmt.Errorf("append result: %w", err)
		}
		if err := e.sessions.Put(ctx, s); err != nil {
			e.logger.Printf("session %s: mark %s: %v", s.ID, s.Status, err)
		}
	}
	if err := e.sessions.Delete(ctx, s.Owner); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}

	if err := e.notifier.DeliverSummary(ctx, s.Owner, sum.Text()); err != nil {
		e.logger.Printf("session %s: deliver summary: %v", s.ID, err)
	}
	return sum, nil
}
