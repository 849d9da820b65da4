package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/vietddude/trendlake/internal/control"
	"github.com/vietddude/trendlake/internal/core/domain"
)

var (
	creationDate string
	period       string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Build the harvested artifacts and publish them to the lake",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runApp(domain.RunPublish, func(ctx context.Context, app *control.App) error {
			return app.Publish(ctx, creationDate, period)
		})
	},
}

func init() {
	publishCmd.Flags().StringVar(&creationDate, "creation-date", "", "partition date YYYY-MM-DD (default today, UTC)")
	publishCmd.Flags().StringVar(&period, "period", "", "partition period 00|06|12|18 (default current)")
	rootCmd.AddCommand(publishCmd)
}
