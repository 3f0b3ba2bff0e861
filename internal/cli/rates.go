package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jewelry-admin/internal/app"
	"jewelry-admin/internal/derive"
)

var (
	ratesMetal string
	rateEdits  []string
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Gold and silver rates",
}

var ratesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List metal rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().ListRates(cmd.Context(), ratesMetal)
	},
}

var ratesSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Edit a rate; dependent fields are recomputed",
	Example: `  jewelctl rates set 3 --field ratePerTenGram=62500
  jewelctl rates set 3 --field currentPrice=61000 --field predictedPrice=63000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if len(rateEdits) == 0 {
			return fmt.Errorf("at least one --field is required")
		}

		edits := make([]app.RateEdit, 0, len(rateEdits))
		for _, raw := range rateEdits {
			name, value, ok := strings.Cut(raw, "=")
			if !ok {
				return fmt.Errorf("--field %q must be name=value", raw)
			}
			if !editableRateField(name) {
				return fmt.Errorf("unknown rate field %q", name)
			}
			edits = append(edits, app.RateEdit{Field: name, Value: value})
		}
		return getApp().SetRate(cmd.Context(), id, edits)
	},
}

func editableRateField(name string) bool {
	switch name {
	case derive.FieldRatePerGram, derive.FieldRatePerTenGram, derive.FieldCurrentPrice, derive.FieldPredictedPrice:
		return true
	}
	return false
}

func init() {
	ratesListCmd.Flags().StringVar(&ratesMetal, "metal", "", "Only show one metal (gold, silver)")
	ratesSetCmd.Flags().StringArrayVar(&rateEdits, "field", nil, "name=value edit, applied in order (repeatable)")

	ratesCmd.AddCommand(ratesListCmd)
	ratesCmd.AddCommand(ratesSetCmd)
}
