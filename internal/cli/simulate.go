package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	simulateBaseline float64
	simulatePrice    float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "模拟一次价格变化并触发告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateBaseline <= 0 || simulatePrice <= 0 {
			return errors.New("--baseline 与 --price 必须大于 0")
		}

		baseline := decimal.NewFromFloat(simulateBaseline)
		price := decimal.NewFromFloat(simulatePrice)
		return getApp().SimulateAlert(cmd.Context(), baseline, price)
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateBaseline, "baseline", 0, "上次提醒基准价格（美元）")
	simulateCmd.Flags().Float64Var(&simulatePrice, "price", 0, "当前价格（美元）")
}
