package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_TotalOverRange(t *testing.T) {
	table := DefaultLevelTable()
	require.NoError(t, table.Validate())

	for p := 0; p <= 100; p++ {
		assert.NotEmpty(t, table.Classify(p), "percentage %d", p)
	}
}

func TestClassify_BoundariesBelongToLowerTier(t *testing.T) {
	table := DefaultLevelTable()

	tests := []struct {
		pct  int
		want string
	}{
		{0, "A1"},
		{20, "A1"},
		{21, "A2"},
		{35, "A2"},
		{36, "B1"},
		{50, "B1"},
		{65, "B2"},
		{80, "C1"},
		{81, "C2"},
		{100, "C2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, table.Classify(tt.pct), "percentage %d", tt.pct)
	}
}

func TestLevelTableValidate(t *testing.T) {
	bad := LevelTable{Tiers: []Tier{{UpTo: 50, Label: "low"}, {UpTo: 50, Label: "mid"}}, Top: "high"}
	assert.Error(t, bad.Validate())

	noTop := LevelTable{Tiers: []Tier{{UpTo: 50, Label: "low"}}}
	assert.Error(t, noTop.Validate())
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 0))
	assert.Equal(t, 20, Percentage(1, 5))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 100, Percentage(7, 7))
}

func TestPercentage_MonotonicInScore(t *testing.T) {
	for total := 1; total <= 40; total++ {
		prev := -1
		for score := 0; score <= total; score++ {
			p := Percentage(score, total)
			require.GreaterOrEqual(t, p, prev, "score %d/%d", score, total)
			prev = p
		}
	}
}

func TestLevelLabel(t *testing.T) {
	assert.Equal(t, ComprehensiveLabel, LevelLabel(ModeComprehensive, "", ""))
	assert.Equal(t, "Grammar – Easy", LevelLabel(ModeSkill, SkillGrammar, LevelEasy))
}

func TestParseSkillAndLevel(t *testing.T) {
	sk, err := ParseSkill(" Grammar ")
	require.NoError(t, err)
	assert.Equal(t, SkillGrammar, sk)

	_, err = ParseSkill("spelling")
	assert.Error(t, err)

	lv, err := ParseLevel("HARD")
	require.NoError(t, err)
	assert.Equal(t, LevelHard, lv)

	_, err = ParseLevel("expert")
	assert.Error(t, err)
}

func TestQuestionValidate(t *testing.T) {
	ok := Question{ID: "1", Text: "Pick one", Options: []string{"a", "b"}, CorrectIndex: 1, Skill: SkillGrammar}
	assert.NoError(t, ok.Validate())

	oneOption := ok
	oneOption.Options = []string{"a"}
	oneOption.CorrectIndex = 0
	assert.Error(t, oneOption.Validate())

	outOfRange := ok
	outOfRange.CorrectIndex = 2
	assert.Error(t, outOfRange.Validate())

	noSkill := ok
	noSkill.Skill = "math"
	assert.Error(t, noSkill.Validate())
}

func TestSessionCodecRoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := &Session{
		ID:         "s-1",
		Owner:      "42",
		Mode:       ModeSkill,
		Skill:      SkillVocabulary,
		Level:      LevelMedium,
		LevelLabel: LevelLabel(ModeSkill, SkillVocabulary, LevelMedium),
		Questions: []Question{
			{ID: "q1", Text: "x", Options: []string{"a", "b"}, CorrectIndex: 0, Skill: SkillVocabulary, Level: LevelMedium,
				Media: &Media{Path: "media/a.mp3", Kind: MediaAudio}},
			{ID: "q2", Text: "y", Options: []string{"a", "b", "c"}, CorrectIndex: 2, Skill: SkillVocabulary, Level: LevelMedium},
		},
		Index:         1,
		Score:         1,
		StartedAt:     start,
		Deadline:      start.Add(2 * time.Minute),
		Answers:       []AnswerRecord{{QuestionID: "q1", Skill: SkillVocabulary, Correct: true, ChosenIndex: 0}},
		Status:        StatusActive,
		MessageHandle: "m-9",
	}

	data, err := EncodeSession(s)
	require.NoError(t, err)

	got, err := DecodeSession(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestDecodeSession_RejectsBrokenInvariants(t *testing.T) {
	s := &Session{
		ID:        "s-1",
		Owner:     "42",
		Mode:      ModeComprehensive,
		Questions: []Question{{ID: "q1", Text: "x", Options: []string{"a", "b"}, Skill: SkillGrammar}},
		Index:     1,
		Score:     2,
		Answers:   []AnswerRecord{{QuestionID: "q1"}},
		Status:    StatusActive,
	}
	data, err := EncodeSession(s)
	require.NoError(t, err)

	_, err = DecodeSession(data)
	assert.Error(t, err)

	_, err = DecodeSession([]byte(`{"v":99}`))
	assert.Error(t, err)
}

func TestSessionRemaining(t *testing.T) {
	now := time.Now()
	s := &Session{Deadline: now.Add(30 * time.Second)}
	assert.Equal(t, 30*time.Second, s.Remaining(now))
	assert.Equal(t, time.Duration(0), s.Remaining(now.Add(time.Minute)))
}
