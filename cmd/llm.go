package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingoquiz/internal/config"
	"github.com/abhisek/lingoquiz/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM usage",
}

var llmUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Summarize logged LLM requests by purpose",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(_ config.Config, st *store.Store) error {
			usage, err := st.LLMUsage(cmd.Context())
			if err != nil {
				return err
			}
			if len(usage) == 0 {
				fmt.Println("No LLM requests logged.")
				return nil
			}

			fmt.Printf("%-16s  %8s  %8s  %10s  %10s\n", "Purpose", "Requests", "Failed", "In", "Out")
			fmt.Println(strings.Repeat("─", 60))
			for _, u := range usage {
				fmt.Printf("%-16s  %8d  %8d  %10d  %10d\n",
					u.Purpose, u.Requests, u.Failures, u.InputTokens, u.OutputTokens)
			}
			return nil
		})
	},
}

func init() {
	llmCmd.AddCommand(llmUsageCmd)
}
