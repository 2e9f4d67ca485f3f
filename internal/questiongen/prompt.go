package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

const systemPrompt = `You write multiple-choice questions for an English proficiency quiz delivered in a chat.

Rules:
- Every question tests the given skill at the given difficulty level.
- Each question has between 3 and 4 options and exactly one correct option.
- Distractors reflect mistakes real learners make, never absurd choices.
- Keep question text under 300 characters; it must read well on a phone.
- Use plain text only. No markdown, no numbering inside options.
- Do not repeat or paraphrase any question from the "already in the bank" list.`

var skillGuidance = map[quiz.Skill]string{
	quiz.SkillGrammar:      "verb tenses, articles, prepositions, agreement and sentence structure; use fill-in-the-blank with ___",
	quiz.SkillVocabulary:   "word meaning, synonyms, antonyms, collocations and words in context",
	quiz.SkillReading:      "a short passage of two to four sentences followed by a question about it",
	quiz.SkillConversation: "the most natural reply or phrase in an everyday exchange",
}

var levelGuidance = map[quiz.Level]string{
	quiz.LevelEasy:   "A1-A2: common words, present and past simple",
	quiz.LevelMedium: "B1-B2: everyday topics, perfect tenses, conditionals",
	quiz.LevelHard:   "C1-C2: idioms, nuance, formal register",
}

func buildUserMessage(in Input, cfg Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Skill: %s (%s)\n", in.Skill.DisplayName(), skillGuidance[in.Skill])
	fmt.Fprintf(&b, "Level: %s (%s)\n", in.Level.DisplayName(), levelGuidance[in.Level])
	fmt.Fprintf(&b, "Number of questions: %d\n", in.Count)

	b.WriteString("\nAlready in the bank:\n")
	b.WriteString(buildDedup(in.Existing, cfg.MaxExisting))
	return b.String()
}

// buildDedup lists the most recent max existing questions, or "None".
func buildDedup(existing []string, max int) string {
	if len(existing) == 0 {
		return "None"
	}
	if max > 0 && len(existing) > max {
		existing = existing[len(existing)-max:]
	}
	var b strings.Builder
	for i, q := range existing {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
