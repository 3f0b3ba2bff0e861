package cli

import (
	"github.com/spf13/cobra"
)

var (
	productFlags listFlags
	userFlags    listFlags
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Product inventory",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products with filters and stock statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := productFlags.options()
		if err != nil {
			return err
		}
		return getApp().ListProducts(cmd.Context(), opts)
	},
}

var productsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered products to a dated spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := productFlags.options()
		if err != nil {
			return err
		}
		return getApp().ExportProducts(cmd.Context(), opts)
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Customer accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := userFlags.options()
		if err != nil {
			return err
		}
		return getApp().ListUsers(cmd.Context(), opts)
	},
}

var usersExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered users to a dated spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := userFlags.options()
		if err != nil {
			return err
		}
		return getApp().ExportUsers(cmd.Context(), opts)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{productsListCmd, productsExportCmd} {
		productFlags.register(cmd, false)
		cmd.Flags().BoolVar(&productFlags.remote, "remote", false, "Search on the server instead of locally")
		cmd.Flags().StringVar(&productFlags.category, "category", "", "Filter by category")
		cmd.Flags().StringVar(&productFlags.sort, "sort", "", "Sort by name, price, stock or created")
		cmd.Flags().BoolVar(&productFlags.desc, "desc", false, "Sort descending")
	}
	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsExportCmd)

	for _, cmd := range []*cobra.Command{usersListCmd, usersExportCmd} {
		userFlags.register(cmd, true)
	}
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersExportCmd)
}
