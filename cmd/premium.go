package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingoquiz/internal/config"
	"github.com/abhisek/lingoquiz/internal/store"
)

var premiumCmd = &cobra.Command{
	Use:   "premium",
	Short: "Manage premium membership",
}

var premiumGrantCmd = &cobra.Command{
	Use:   "grant <identity>",
	Short: "Extend an identity's premium membership",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 {
			return fmt.Errorf("--days must be positive")
		}

		return withStore(cmd, func(_ config.Config, st *store.Store) error {
			ctx := cmd.Context()
			now := time.Now()
			if err := st.Users().Ensure(ctx, args[0], "", now); err != nil {
				return err
			}
			until, err := st.Users().SetPremium(ctx, args[0], days, now)
			if err != nil {
				return err
			}
			fmt.Printf("%s is premium until %s.\n", args[0], until.Local().Format("2006-01-02 15:04"))
			return nil
		})
	},
}

var premiumStatusCmd = &cobra.Command{
	Use:   "status <identity>",
	Short: "Show an identity's premium membership",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(_ config.Config, st *store.Store) error {
			until, ok, err := st.Users().PremiumExpiry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch {
			case !ok:
				fmt.Printf("%s has never been premium.\n", args[0])
			case until.After(time.Now()):
				fmt.Printf("%s is premium until %s.\n", args[0], until.Local().Format("2006-01-02 15:04"))
			default:
				fmt.Printf("%s was premium until %s.\n", args[0], until.Local().Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

func init() {
	premiumGrantCmd.Flags().Int("days", 30, "Days to add")

	premiumCmd.AddCommand(premiumGrantCmd)
	premiumCmd.AddCommand(premiumStatusCmd)
}
