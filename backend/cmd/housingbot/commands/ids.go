package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/repositories"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/services"
)

var idsType string

func init() {
	idsCmd.Flags().StringVar(&idsType, "type", "", "rental or sale (default both)")
	rootCmd.AddCommand(idsCmd)
}

var idsCmd = &cobra.Command{
	Use:   "ids",
	Short: "Scrapes the lottery listings and saves their IDs and details.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := typesFlag(idsType)
		if err != nil {
			return err
		}
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore(store)

		svc := services.NewScraperService(store, services.BrowserSessions(cfg, log), log)
		results, err := svc.ScrapeAndStore(cmd.Context(), types...)

		out := cmd.OutOrStdout()
		for _, res := range results {
			fmt.Fprintf(out, "\n%s lotteries\n", res.Type.TabLabel())
			renderLotteries(out, res.Lotteries)
			if cfg.Storage.Driver == "file" {
				fmt.Fprintf(out, "Saved %d IDs to %s\n", res.Count,
					filepath.Join(cfg.Storage.Dir, repositories.IDsFile(res.Type)))
			}
		}
		return err
	},
}
