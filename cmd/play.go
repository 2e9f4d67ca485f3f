package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingoquiz/internal/app"
	"github.com/abhisek/lingoquiz/internal/notify"
	"github.com/abhisek/lingoquiz/internal/screen"
	"github.com/abhisek/lingoquiz/internal/screens/welcome"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Take a quiz in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func init() {
	playCmd.Flags().String("name", "", "Player name (overrides LINGOQUIZ_USER)")
}

// runPlay wires the engine to an in-memory transcript and launches the
// terminal chat client.
func runPlay(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	logFile, err := os.CreateTemp("", "lingoquiz-play-*.log")
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}
	defer logFile.Close()

	transcript := notify.NewTranscript()
	logger := newLogger(logFile)
	eng, closeSessions, err := buildEngine(cmd.Context(), cfg, st, transcript, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	sweepCtx, stopSweep := context.WithCancel(cmd.Context())
	waitSweep, err := startSweeper(sweepCtx, cfg, eng, logger)
	if err != nil {
		stopSweep()
		return err
	}
	defer func() {
		stopSweep()
		waitSweep()
	}()

	svc := &screen.Services{
		Engine:     eng,
		Transcript: transcript,
		Results:    st.Results(),
		Users:      st.Users(),
		Now:        time.Now,
	}

	name := cfg.User
	if n, _ := cmd.Flags().GetString("name"); n != "" {
		name = n
	}
	if name != "" {
		if err := welcome.ValidateName(name); err != nil {
			return fmt.Errorf("player name: %w", err)
		}
		svc.DisplayName = name
		svc.Identity = welcome.IdentityFor(name)

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := st.Users().Ensure(ctx, svc.Identity, name, time.Now()); err != nil {
			return err
		}
	}

	return app.Run(svc)
}
