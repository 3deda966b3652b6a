package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/scrapers/housingconnect"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/services"
)

var applyType string

func init() {
	applyCmd.Flags().StringVar(&applyType, "type", "", "rental or sale")
	applyCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(applyCmd)
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Logs in and applies to every lottery of a type you are eligible for.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := domain.ParseLotteryType(applyType)
		if err != nil {
			return err
		}
		creds := cfg.Credentials
		if creds.Username == "" || creds.Password == "" {
			return fmt.Errorf("%w: set USERNAME and PASSWORD in the environment or .env", housingconnect.ErrMissingCredentials)
		}

		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore(store)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Applying to all %s lotteries\n", t)
		fmt.Fprintf(out, "Username: %s\n", creds.Username)
		fmt.Fprintf(out, "Your income: $%s\n", humanize.Comma(int64(creds.AnnualIncome)))

		svc := services.NewApplicationService(store, services.BrowserSessions(cfg, log), log)
		run, err := svc.ApplyAll(cmd.Context(), t)
		if run != nil {
			renderRun(out, run)
		}
		return err
	},
}
