package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingoquiz/internal/config"
	"github.com/abhisek/lingoquiz/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset <identity>",
	Short: "Discard an identity's running quiz without recording a result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		withResults, _ := cmd.Flags().GetBool("results")
		identity := args[0]

		return withStore(cmd, func(cfg config.Config, st *store.Store) error {
			notifier, _ := newNotifier(cfg)
			eng, closeSessions, err := buildEngine(cmd.Context(), cfg, st, notifier, newLogger(os.Stderr))
			if err != nil {
				return err
			}
			defer closeSessions()

			existed, err := eng.Reset(cmd.Context(), identity)
			if err != nil {
				return err
			}
			if existed {
				fmt.Printf("Discarded the running quiz of %s.\n", identity)
			} else {
				fmt.Printf("%s has no running quiz.\n", identity)
			}

			if withResults {
				n, err := st.Results().DeleteFor(cmd.Context(), identity)
				if err != nil {
					return err
				}
				fmt.Printf("Deleted %d result(s).\n", n)
			}
			return nil
		})
	},
}

func init() {
	resetCmd.Flags().Bool("results", false, "Also delete the identity's historical results")
}
