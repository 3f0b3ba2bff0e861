package cli

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	simulateCurrent   string
	simulatePredicted string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "模拟一次价格变动并触发告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := decimal.NewFromString(simulateCurrent)
		if err != nil || !current.IsPositive() {
			return errors.New("--current 必须大于 0")
		}
		predicted, err := decimal.NewFromString(simulatePredicted)
		if err != nil || predicted.IsNegative() {
			return errors.New("--predicted 不能为负数")
		}

		report, err := getApp().SimulateAlert(cmd.Context(), current, predicted)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "alerts emitted: %d\n", len(report.Alerts))
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateCurrent, "current", "", "当前价格")
	simulateCmd.Flags().StringVar(&simulatePredicted, "predicted", "", "预测价格")
}
