package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/vietddude/trendlake/internal/control"
	"github.com/vietddude/trendlake/internal/core/domain"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Collect regions, categories and ranked items for the current period",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runApp(domain.RunHarvest, func(ctx context.Context, app *control.App) error {
			return app.Harvest(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(harvestCmd)
}
