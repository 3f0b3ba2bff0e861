package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jewelry-admin/internal/app"
)

var (
	watchOnce bool

	historyLimit     int
	historyAlerts    bool
	historyFrom      string
	historyTo        string
	historyBuckets   int
	historyRetention time.Duration
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show rate, product and user summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Dashboard(cmd.Context())
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sample rates on a schedule, record history and alert on large moves",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watch(cmd.Context(), app.WatchOptions{Once: watchOnce})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Recorded rate snapshots and alerts",
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recent snapshots or alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}
		return getApp().ShowHistory(cmd.Context(), app.ShowOptions{Limit: historyLimit, Alerts: historyAlerts})
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export snapshots in a time window to a dated spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.HistoryExportOptions{Buckets: historyBuckets}
		var err error
		if opts.From, err = parseTime("--from", historyFrom); err != nil {
			return err
		}
		if opts.To, err = parseEndTime("--to", historyTo, false); err != nil {
			return err
		}
		return getApp().ExportHistory(cmd.Context(), opts)
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete alert records older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().PruneAlerts(cmd.Context(), historyRetention)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Process the current bucket and exit")

	historyShowCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of rows to display")
	historyShowCmd.Flags().BoolVar(&historyAlerts, "alerts", false, "Show alerts instead of snapshots")
	historyExportCmd.Flags().StringVar(&historyFrom, "from", "", "Start timestamp (inclusive)")
	historyExportCmd.Flags().StringVar(&historyTo, "to", "", "End timestamp, exclusive (RFC3339 or YYYY-MM-DD for the whole day)")
	historyExportCmd.Flags().IntVar(&historyBuckets, "buckets", 0, "Window size in scheduler intervals when --from is unset")
	historyPruneCmd.Flags().DurationVar(&historyRetention, "retention", 30*24*time.Hour, "Keep alerts newer than this")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyPruneCmd)
}
