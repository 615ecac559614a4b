package cli

import (
	"github.com/spf13/cobra"

	"btc-price-alerts/internal/app"
)

var (
	showLimit  int
	showAlerts bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show recent samples or alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ShowOptions{Limit: showLimit, Alerts: showAlerts}
		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of rows to display")
	showCmd.Flags().BoolVar(&showAlerts, "alerts", false, "Show delivered alerts instead of samples")
}
