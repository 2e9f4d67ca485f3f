package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingoquiz/internal/config"
	"github.com/abhisek/lingoquiz/internal/quiz"
	"github.com/abhisek/lingoquiz/internal/store"
)

var resultsCmd = &cobra.Command{
	Use:   "results <identity>",
	Short: "Show an identity's statistics and recent quizzes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		identity := args[0]

		return withStore(cmd, func(_ config.Config, st *store.Store) error {
			ctx := cmd.Context()
			stats, err := st.Results().Stats(ctx, identity)
			if err != nil {
				return err
			}
			if stats.TestsTaken == 0 {
				fmt.Printf("No results for %s.\n", identity)
				return nil
			}

			fmt.Printf("Tests taken:   %d\n", stats.TestsTaken)
			fmt.Printf("Total score:   %d\n", stats.TotalScore)
			fmt.Printf("Highest score: %d\n", stats.HighestScore)
			fmt.Printf("Average score: %.1f\n", stats.AverageScore)
			fmt.Printf("Latest level:  %s (%s)\n\n", stats.LastLevel, stats.LastFinished.Local().Format("2006-01-02 15:04"))

			history, err := st.Results().History(ctx, identity, limit)
			if err != nil {
				return err
			}
			fmt.Printf("%-19s  %-14s  %7s  %4s  %s\n", "Finished", "Mode", "Score", "%", "Level")
			fmt.Println(strings.Repeat("─", 60))
			for _, r := range history {
				fmt.Printf("%-19s  %-14s  %3d/%-3d  %3d%%  %s\n",
					r.FinishedAt.Local().Format("2006-01-02 15:04:05"),
					r.Mode, r.Score, r.Total, quiz.Percentage(r.Score, r.Total), r.Level)
			}
			return nil
		})
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Rank identities by their summed score",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withStore(cmd, func(_ config.Config, st *store.Store) error {
			rows, err := st.Results().Leaderboard(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("No results yet.")
				return nil
			}
			fmt.Printf("%4s  %-24s  %-24s  %6s  %5s\n", "Rank", "Name", "Identity", "Score", "Tests")
			fmt.Println(strings.Repeat("─", 72))
			for i, r := range rows {
				fmt.Printf("%4d  %-24s  %-24s  %6d  %5d\n", i+1, r.DisplayName, r.Identity, r.TotalScore, r.Tests)
			}
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show usage across all identities",
	RunE: func(cmd *cobra.Command, args []string) error {
		window, _ := cmd.Flags().GetDuration("window")

		return withStore(cmd, func(_ config.Config, st *store.Store) error {
			ctx := cmd.Context()
			users, err := st.Users().Count(ctx)
			if err != nil {
				return err
			}
			questions, err := st.Questions().Count(ctx)
			if err != nil {
				return err
			}
			recent, err := st.Results().RecentCount(ctx, window, time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("Users:               %d\n", users)
			fmt.Printf("Bank questions:      %d\n", questions)
			fmt.Printf("Quizzes in last %s: %d\n", window, recent)
			return nil
		})
	},
}

func init() {
	resultsCmd.Flags().Int("limit", 20, "Number of recent quizzes to list")
	leaderboardCmd.Flags().Int("limit", 10, "Number of rows")
	statsCmd.Flags().Duration("window", 24*time.Hour, "Window for the recent quiz count")
}
