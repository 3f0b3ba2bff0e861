package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	bannerDevice string
	bannerFrom   int
	bannerTo     int
)

var bannersCmd = &cobra.Command{
	Use:   "banners",
	Short: "CMS banners",
}

var bannersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List banners by device type",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().ListBanners(cmd.Context(), bannerDevice)
	},
}

var bannersReorderCmd = &cobra.Command{
	Use:   "reorder",
	Short: "Move a banner to another rank within its device type",
	RunE: func(cmd *cobra.Command, args []string) error {
		if bannerDevice == "" {
			return fmt.Errorf("--device is required")
		}
		if bannerFrom <= 0 || bannerTo <= 0 {
			return fmt.Errorf("--from and --to must be positive ranks")
		}
		return getApp().ReorderBanners(cmd.Context(), bannerDevice, bannerFrom, bannerTo)
	},
}

func init() {
	bannersCmd.PersistentFlags().StringVar(&bannerDevice, "device", "", "Device type (desktop, mobile)")
	bannersReorderCmd.Flags().IntVar(&bannerFrom, "from", 0, "Current rank (1-based)")
	bannersReorderCmd.Flags().IntVar(&bannerTo, "to", 0, "Target rank (1-based)")

	bannersCmd.AddCommand(bannersListCmd)
	bannersCmd.AddCommand(bannersReorderCmd)
}
