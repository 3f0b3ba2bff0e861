package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jewelry-admin/internal/export"
	"jewelry-admin/internal/storage"
)

// ShowOptions configure the history show command.
type ShowOptions struct {
	Limit  int
	Alerts bool
}

// ShowHistory prints recent rate snapshots, or recent alerts.
func (a *App) ShowHistory(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.requireStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if opts.Alerts {
		return a.showAlerts(ctx, store, opts.Limit)
	}

	snaps, err := store.ListRecentSnapshots(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(a.Out, "no snapshots found")
		return nil
	}

	w := newTable(a.Out, "Time (UTC)", "Rate", "Rate/10g", "Current", "Predicted", "Change%", "Note")
	for _, s := range snaps {
		note := ""
		if s.Error != nil {
			note = sanitizeInline(*s.Error)
		}
		row(w,
			s.Bucket.UTC().Format(time.RFC3339),
			s.Label(),
			formatDecimal(s.RatePerTenGram, 2),
			formatDecimal(s.CurrentPrice, 2),
			formatDecimal(s.PredictedPrice, 2),
			formatOptional(s.ChangePct, 2),
			note,
		)
	}
	return w.Flush()
}

func (a *App) showAlerts(ctx context.Context, store storage.AlertStore, limit int) error {
	alerts, err := store.ListRecentAlerts(ctx, limit)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		fmt.Fprintln(a.Out, "no alerts found")
		return nil
	}

	w := newTable(a.Out, "Time (UTC)", "Rate ID", "Change%", "Threshold%", "Direction")
	for _, al := range alerts {
		row(w,
			al.CreatedAt.UTC().Format(time.RFC3339),
			fmt.Sprint(al.RateID),
			formatDecimal(al.ChangePct, 2),
			formatDecimal(al.ThresholdPct, 2),
			al.Direction,
		)
	}
	return w.Flush()
}

// HistoryExportOptions bound the exported window.
type HistoryExportOptions struct {
	From *time.Time
	To   *time.Time
	// Buckets sizes the default window when From is unset.
	Buckets int
}

// ExportHistory writes snapshots in [from, to) to a dated spreadsheet.
func (a *App) ExportHistory(ctx context.Context, opts HistoryExportOptions) error {
	store, closeStore, err := a.requireStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}
	buckets := opts.Buckets
	if buckets <= 0 {
		buckets = 96
	}
	from := to.Add(-time.Duration(buckets) * a.Config.Scheduler.Interval)
	if opts.From != nil {
		from = opts.From.UTC()
	}
	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	snaps, err := store.ListSnapshotsBetween(ctx, from, to)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		a.Logger.Info().Msg("no snapshots found for export window")
		return nil
	}

	path, err := export.Write(a.exporter(), export.EntityHistory, export.HistoryColumns, snaps)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, path)
	return nil
}

// PruneAlerts deletes alert records older than retention.
func (a *App) PruneAlerts(ctx context.Context, retention time.Duration) error {
	if retention <= 0 {
		return errors.New("retention must be positive")
	}
	store, closeStore, err := a.requireStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	cutoff := time.Now().UTC().Add(-retention)
	if err := store.DeleteAlertsBefore(ctx, cutoff); err != nil {
		return err
	}
	count, err := store.CountSnapshots(ctx)
	if err != nil {
		return err
	}
	a.Logger.Info().Time("cutoff", cutoff).Int64("snapshots", count).Msg("alerts pruned")
	return nil
}
