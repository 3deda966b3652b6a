package commands

import (
	"github.com/spf13/cobra"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/api/client"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/api/models"
)

var (
	remoteServer string
	remoteType   string
)

func init() {
	scrapeRemoteCmd.Flags().StringVar(&remoteServer, "server", "", "base URL of the API server, e.g. http://localhost:8080")
	scrapeRemoteCmd.Flags().StringVar(&remoteType, "type", "", "rental or sale (default both)")
	scrapeRemoteCmd.MarkFlagRequired("server")
	rootCmd.AddCommand(scrapeRemoteCmd)
}

var scrapeRemoteCmd = &cobra.Command{
	Use:   "scrape-remote",
	Short: "Asks a running API server to scrape the portal.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := typesFlag(remoteType)
		if err != nil {
			return err
		}
		c := client.New(remoteServer, client.DefaultTimeout)
		if err := c.Health(cmd.Context()); err != nil {
			return err
		}

		var results []models.ScrapeSummary
		if len(types) == 0 {
			results, err = c.Scrape(cmd.Context(), "")
		} else {
			results, err = c.Scrape(cmd.Context(), types[0])
		}
		if err != nil {
			return err
		}
		renderScrapeSummaries(cmd.OutOrStdout(), results)
		return nil
	},
}
