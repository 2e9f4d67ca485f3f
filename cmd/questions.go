package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingoquiz/internal/bank"
	"github.com/abhisek/lingoquiz/internal/config"
	"github.com/abhisek/lingoquiz/internal/llm"
	"github.com/abhisek/lingoquiz/internal/questiongen"
	"github.com/abhisek/lingoquiz/internal/quiz"
	"github.com/abhisek/lingoquiz/internal/store"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage the question bank",
}

var questionsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import questions from a bank file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		file, err := bank.Parse(f)
		if err != nil {
			return err
		}

		return withStore(cmd, func(_ config.Config, st *store.Store) error {
			ids, err := bank.Import(cmd.Context(), st.Questions(), file, time.Now())
			if len(ids) > 0 {
				fmt.Printf("Imported %d question(s), ids %d-%d.\n", len(ids), ids[0], ids[len(ids)-1])
			}
			return err
		})
	},
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bank questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := questionFilter(cmd)
		if err != nil {
			return err
		}

		return withStore(cmd, func(_ config.Config, st *store.Store) error {
			entries, err := st.Questions().List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No questions match.")
				return nil
			}
			fmt.Printf("%5s  %-13s  %-12s  %-6s  %s\n", "ID", "Kind", "Skill", "Level", "Question")
			fmt.Println(strings.Repeat("─", 80))
			for _, e := range entries {
				fmt.Printf("%5d  %-13s  %-12s  %-6s  %s\n",
					e.ID, e.Kind, e.Question.Skill, e.Question.Level, firstLine(e.Question.Text, 40))
			}
			return nil
		})
	},
}

var questionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a bank question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid question id %q", args[0])
		}

		return withStore(cmd, func(_ config.Config, st *store.Store) error {
			ok, err := st.Questions().Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("question %d not found", id)
			}
			fmt.Printf("Deleted question %d.\n", id)
			return nil
		})
	},
}

var questionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write bank questions as a bank file",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := questionFilter(cmd)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")

		return withStore(cmd, func(_ config.Config, st *store.Store) error {
			entries, err := st.Questions().List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			file := make([]bank.Entry, len(entries))
			for i, e := range entries {
				file[i] = bank.EntryFor(e.Kind, e.Question)
			}
			return writeBank(out, file)
		})
	},
}

var questionsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft new skill questions with an LLM",
	Long: `Draft new skill questions with an LLM.

The provider comes from LINGOQUIZ_LLM_PROVIDER and its key variable, or
from GEMINI_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY when unset.
Drafts are printed as a bank file unless --save adds them to the bank.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		skillFlag, _ := cmd.Flags().GetString("skill")
		levelFlag, _ := cmd.Flags().GetString("level")
		count, _ := cmd.Flags().GetInt("count")
		save, _ := cmd.Flags().GetBool("save")
		out, _ := cmd.Flags().GetString("out")

		skill, err := quiz.ParseSkill(skillFlag)
		if err != nil {
			return err
		}
		level, err := quiz.ParseLevel(levelFlag)
		if err != nil {
			return err
		}
		if count < 1 || count > questiongen.MaxCount {
			return fmt.Errorf("--count must be between 1 and %d", questiongen.MaxCount)
		}

		llmCfg, err := llm.ResolveConfig()
		if err != nil {
			return err
		}

		return withStore(cmd, func(_ config.Config, st *store.Store) error {
			ctx := cmd.Context()
			provider, err := llm.NewProvider(ctx, llmCfg, st.EventRepo())
			if err != nil {
				return err
			}

			existing, err := st.Questions().List(ctx, store.QuestionFilter{Skill: skill, Level: level})
			if err != nil {
				return err
			}
			texts := make([]string, len(existing))
			for i, e := range existing {
				texts[i] = e.Question.Text
			}

			fmt.Fprintf(os.Stderr, "Drafting %d %s %s question(s) with %s...\n", count, level, skill, llmCfg.Provider)
			res, err := questiongen.New(provider, questiongen.DefaultConfig()).Generate(ctx, questiongen.Input{
				Skill:    skill,
				Level:    level,
				Count:    count,
				Existing: texts,
			})
			if kind, ok := llm.KindOf(err); ok && kind == llm.KindRejected {
				return fmt.Errorf("%w (check the %s API key and model)", err, llmCfg.Provider)
			}
			if err != nil {
				return err
			}
			for _, d := range res.Dropped {
				warnf("dropped draft: %v", d)
			}

			if !save {
				entries := make([]bank.Entry, len(res.Questions))
				for i, q := range res.Questions {
					entries[i] = bank.EntryFor(store.KindSkill, q)
				}
				return writeBank(out, entries)
			}

			now := time.Now()
			for _, q := range res.Questions {
				id, err := st.Questions().Add(ctx, store.KindSkill, q, now)
				if err != nil {
					return err
				}
				fmt.Printf("Added question %d: %s\n", id, firstLine(q.Text, 60))
			}
			return nil
		})
	},
}

func questionFilter(cmd *cobra.Command) (store.QuestionFilter, error) {
	kind, _ := cmd.Flags().GetString("kind")
	skillFlag, _ := cmd.Flags().GetString("skill")
	levelFlag, _ := cmd.Flags().GetString("level")
	limit, _ := cmd.Flags().GetInt("limit")

	f := store.QuestionFilter{Kind: kind, Limit: limit}
	switch kind {
	case "", store.KindComprehensive, store.KindSkill:
	default:
		return f, fmt.Errorf("unknown kind %q", kind)
	}
	if skillFlag != "" {
		s, err := quiz.ParseSkill(skillFlag)
		if err != nil {
			return f, err
		}
		f.Skill = s
	}
	if levelFlag != "" {
		l, err := quiz.ParseLevel(levelFlag)
		if err != nil {
			return f, err
		}
		f.Level = l
	}
	return f, nil
}

func writeBank(path string, entries []bank.Entry) error {
	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := bank.Encode(w, entries); err != nil {
		return err
	}
	if w != os.Stdout {
		fmt.Fprintf(os.Stderr, "Wrote %d question(s) to %s.\n", len(entries), path)
	}
	return nil
}

func firstLine(s string, max int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}

func init() {
	for _, c := range []*cobra.Command{questionsListCmd, questionsExportCmd} {
		c.Flags().String("kind", "", "Filter by kind (comprehensive, skill)")
		c.Flags().String("skill", "", "Filter by skill")
		c.Flags().String("level", "", "Filter by level (easy, medium, hard)")
		c.Flags().Int("limit", 0, "Maximum number of questions (0 = all)")
	}
	questionsExportCmd.Flags().String("out", "", "Output file (default stdout)")

	questionsGenerateCmd.Flags().String("skill", "", "Skill to draft for (required)")
	questionsGenerateCmd.Flags().String("level", string(quiz.LevelEasy), "Difficulty level")
	questionsGenerateCmd.Flags().Int("count", 5, "Number of questions to draft")
	questionsGenerateCmd.Flags().Bool("save", false, "Add the drafts to the bank instead of printing them")
	questionsGenerateCmd.Flags().String("out", "", "Output file when not saving (default stdout)")
	_ = questionsGenerateCmd.MarkFlagRequired("skill")

	questionsCmd.AddCommand(questionsImportCmd)
	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsDeleteCmd)
	questionsCmd.AddCommand(questionsExportCmd)
	questionsCmd.AddCommand(questionsGenerateCmd)
}
