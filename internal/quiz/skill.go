package quiz

import (
	"fmt"
	"strings"
)

// Skill is one of the fixed language skills a question exercises.
type Skill string

const (
	SkillGrammar      Skill = "grammar"
	SkillVocabulary   Skill = "vocabulary"
	SkillReading      Skill = "reading"
	SkillConversation Skill = "conversation"
)

var skillNames = map[Skill]string{
	SkillGrammar:      "Grammar",
	SkillVocabulary:   "Vocabulary",
	SkillReading:      "Reading Comprehension",
	SkillConversation: "Conversation",
}

// AllSkills returns the skills in breakdown order.
func AllSkills() []Skill {
	return []Skill{SkillGrammar, SkillVocabulary, SkillReading, SkillConversation}
}

// ParseSkill converts a case-insensitive name to a Skill.
func ParseSkill(s string) (Skill, error) {
	sk := Skill(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := skillNames[sk]; !ok {
		return "", fmt.Errorf("unknown skill: %q", s)
	}
	return sk, nil
}

// DisplayName returns the human-readable skill name.
func (s Skill) DisplayName() string {
	if n, ok := skillNames[s]; ok {
		return n
	}
	return string(s)
}

// Level is the difficulty tag of a question.
type Level string

const (
	LevelEasy   Level = "easy"
	LevelMedium Level = "medium"
	LevelHard   Level = "hard"
)

// AllLevels returns the difficulty levels from easiest to hardest.
func AllLevels() []Level {
	return []Level{LevelEasy, LevelMedium, LevelHard}
}

// ParseLevel converts a case-insensitive name to a Level.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelEasy, LevelMedium, LevelHard:
		return l, nil
	}
	return "", fmt.Errorf("unknown level: %q", s)
}

// DisplayName returns the capitalized level name.
func (l Level) DisplayName() string {
	if l == "" {
		return ""
	}
	return strings.ToUpper(string(l[:1])) + string(l[1:])
}
