package cli

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"jewelry-admin/internal/adminapi"
)

var (
	discountFlags listFlags

	discountTitle    string
	discountCode     string
	discountType     string
	discountValue    string
	discountMinOrder string
	discountLimit    int
	discountStarts   string
	discountEnds     string
	discountActive   bool
)

var discountsCmd = &cobra.Command{
	Use:   "discounts",
	Short: "Discount codes",
}

var discountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List discount codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := discountFlags.options()
		if err != nil {
			return err
		}
		return getApp().ListDiscounts(cmd.Context(), opts)
	},
}

var discountsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a discount code",
	RunE: func(cmd *cobra.Command, args []string) error {
		d := adminapi.Discount{
			Title:        discountTitle,
			Code:         discountCode,
			DiscountType: discountType,
			UsageLimit:   discountLimit,
			IsActive:     discountActive,
		}
		// unparsable amounts stay zero and are reported by validation
		d.DiscountValue, _ = decimal.NewFromString(discountValue)
		if discountMinOrder != "" {
			d.MinOrderAmount, _ = decimal.NewFromString(discountMinOrder)
		}

		var err error
		if d.StartsAt, err = parseTime("--starts", discountStarts); err != nil {
			return err
		}
		if d.EndsAt, err = parseEndTime("--ends", discountEnds, true); err != nil {
			return err
		}
		return getApp().CreateDiscount(cmd.Context(), d)
	},
}

var discountsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a discount code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return getApp().DeleteDiscount(cmd.Context(), id)
	},
}

func init() {
	discountFlags.register(discountsListCmd, false)
	discountsListCmd.Flags().StringVar(&discountFlags.category, "type", "", "Filter by type: percentage or fixed")

	f := discountsCreateCmd.Flags()
	f.StringVar(&discountTitle, "title", "", "Title shown to customers")
	f.StringVar(&discountCode, "code", "", "Code, 3-20 of A-Z 0-9 - _")
	f.StringVar(&discountType, "type", adminapi.DiscountPercentage, "percentage or fixed")
	f.StringVar(&discountValue, "value", "", "Discount value")
	f.StringVar(&discountMinOrder, "min-order", "", "Minimum order amount")
	f.IntVar(&discountLimit, "usage-limit", 0, "Maximum redemptions (0 = unlimited)")
	f.StringVar(&discountStarts, "starts", "", "Start date (RFC3339 or YYYY-MM-DD)")
	f.StringVar(&discountEnds, "ends", "", "End date (RFC3339 or YYYY-MM-DD)")
	f.BoolVar(&discountActive, "active", true, "Activate immediately")

	discountsCmd.AddCommand(discountsListCmd)
	discountsCmd.AddCommand(discountsCreateCmd)
	discountsCmd.AddCommand(discountsDeleteCmd)
}
