package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingoquiz/internal/config"
	"github.com/abhisek/lingoquiz/internal/store"
	"github.com/abhisek/lingoquiz/internal/sweeper"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Finalize every expired session once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(cfg config.Config, st *store.Store) error {
			logger := newLogger(os.Stderr)
			notifier, _ := newNotifier(cfg)

			eng, closeSessions, err := buildEngine(cmd.Context(), cfg, st, notifier, logger)
			if err != nil {
				return err
			}
			defer closeSessions()

			sw, err := sweeper.New(eng, cfg.SweepSchedule, logger)
			if err != nil {
				return err
			}
			n, err := sw.RunOnce(cmd.Context())
			fmt.Printf("Finalized %d expired session(s).\n", n)
			return err
		})
	},
}
