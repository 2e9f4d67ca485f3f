package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingoquiz/internal/api"
	"github.com/abhisek/lingoquiz/internal/config"
	"github.com/abhisek/lingoquiz/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz engine to a chat gateway over HTTP",
	Long: "Serve the quiz engine over HTTP. Questions and summaries are posted to\n" +
		"LINGOQUIZ_GATEWAY_URL when set; otherwise they are kept in memory and\n" +
		"exposed under /v1/messages.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(cfg config.Config, st *store.Store) error {
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.HTTPAddr = addr
			}
			return serve(cmd.Context(), cfg, st)
		})
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides LINGOQUIZ_HTTP_ADDR)")
}

func serve(ctx context.Context, cfg config.Config, st *store.Store) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(os.Stderr)

	notifier, transcript := newNotifier(cfg)
	if transcript == nil {
		logger.Printf("delivering to gateway %s", cfg.GatewayURL)
	} else {
		logger.Printf("no gateway configured, keeping conversations in memory")
	}

	eng, closeSessions, err := buildEngine(ctx, cfg, st, notifier, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	srv, err := api.NewServer(api.Deps{
		Engine:   eng,
		Stats:    st.Results(),
		Users:    st.Users(),
		Messages: transcript,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	waitSweep, err := startSweeper(ctx, cfg, eng, logger)
	if err != nil {
		return err
	}

	err = srv.ListenAndServe(ctx, cfg.HTTPAddr)
	stop()
	waitSweep()
	return err
}
