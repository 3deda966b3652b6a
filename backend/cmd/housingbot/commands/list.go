package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/api/client"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/services"
)

var (
	listType         string
	listServer       string
	listEligible     bool
	listApplications bool
)

func init() {
	listCmd.Flags().StringVar(&listType, "type", "", "rental or sale (default both)")
	listCmd.Flags().StringVar(&listServer, "server", "", "read from a running API server instead of local storage")
	listCmd.Flags().BoolVar(&listEligible, "eligible", false, "only lotteries whose income range includes your income")
	listCmd.Flags().BoolVar(&listApplications, "applications", false, "show past application results instead")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints the lotteries collected so far.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := typesFlag(listType)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if listApplications {
			results, err := applications(ctx)
			if err != nil {
				return err
			}
			renderApplications(out, results)
			return nil
		}

		var t domain.LotteryType
		if len(types) > 0 {
			t = types[0]
		}
		var lotteries []domain.Lottery
		if listServer != "" {
			lotteries, err = remoteLotteries(ctx, t)
		} else {
			lotteries, err = localLotteries(ctx, t)
		}
		if err != nil {
			return err
		}
		renderLotteries(out, lotteries)
		return nil
	},
}

func localLotteries(ctx context.Context, t domain.LotteryType) ([]domain.Lottery, error) {
	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closeStore(store)

	svc := services.NewLotteryService(store, store)
	if listEligible {
		return svc.Eligible(ctx, t, cfg.Credentials.AnnualIncome)
	}
	return svc.FindByType(ctx, t)
}

func remoteLotteries(ctx context.Context, t domain.LotteryType) ([]domain.Lottery, error) {
	c := client.New(listServer, 30*time.Second)
	if listEligible {
		return c.EligibleLotteries(ctx, t, cfg.Credentials.AnnualIncome)
	}
	return c.Lotteries(ctx, t)
}

func applications(ctx context.Context) ([]domain.ApplicationResult, error) {
	if listServer != "" {
		list, err := client.New(listServer, 30*time.Second).Applications(ctx)
		return list.Applications, err
	}
	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closeStore(store)
	return services.NewLotteryService(store, store).Applications(ctx)
}
