package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	simulatePrice  float64
	simulateVolume float64
	simulateChange float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "模拟一次行情快照并跑完整周期（dry-run 下单）",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulatePrice <= 0 || simulateVolume < 0 {
			return errors.New("--price 必须大于 0，--volume 不能为负")
		}

		price := decimal.NewFromFloat(simulatePrice)
		volume := decimal.NewFromFloat(simulateVolume)
		change := decimal.NewFromFloat(simulateChange)
		return getApp().SimulateCycle(cmd.Context(), price, volume, change)
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulatePrice, "price", 0, "模拟价格 (USD)")
	simulateCmd.Flags().Float64Var(&simulateVolume, "volume", 0, "模拟成交量")
	simulateCmd.Flags().Float64Var(&simulateChange, "change", 0, "模拟 24h 涨跌幅 (%)")
}
