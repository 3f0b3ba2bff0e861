// Package ratewatch samples metal rates on a schedule, records them as
// history and raises alerts when the predicted move crosses a threshold.
package ratewatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"jewelry-admin/internal/adminapi"
	"jewelry-admin/internal/derive"
	"jewelry-admin/internal/notify"
	"jewelry-admin/internal/scheduler"
	"jewelry-admin/internal/storage"
)

// Alert directions.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionFlat = "flat"
)

// Options tune alert evaluation.
type Options struct {
	AlertsEnabled bool
	ThresholdPct  decimal.Decimal
	Cooldown      time.Duration
	Channels      []string
	LockKey       int64
}

// Alert is one threshold crossing.
type Alert struct {
	Bucket       time.Time
	Rate         adminapi.MetalRate
	ChangePct    decimal.Decimal
	ThresholdPct decimal.Decimal
	Direction    string
}

// Message renders the alert for notification sinks.
func (a Alert) Message() string {
	label := a.Rate.Metal
	if a.Rate.Purity != "" {
		label += " " + a.Rate.Purity
	}
	sign := ""
	if a.ChangePct.Sign() > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s predicted %s vs current %s (%s%s%%, %s) exceeds %s%% threshold",
		label,
		derive.Display(a.Rate.PredictedPrice),
		derive.Display(a.Rate.CurrentPrice),
		sign, derive.Display(a.ChangePct),
		a.Direction,
		derive.Display(a.ThresholdPct),
	)
}

// Report summarises one processed bucket.
type Report struct {
	Bucket    time.Time
	Skipped   bool
	Snapshots []storage.RateSnapshot
	Alerts    []Alert
}

// Watcher orchestrates fetching, persistence and alerting.
type Watcher struct {
	opts      Options
	rates     adminapi.RateAPI
	snapshots storage.SnapshotStore
	alerts    storage.AlertStore
	locker    storage.AdvisoryLocker
	bus       *notify.Bus
	logger    zerolog.Logger
	now       func() time.Time
}

// New constructs a watcher. snapshots and alerts may be nil when history is
// disabled; the advisory lock is used when snapshots also implements it.
func New(opts Options, rates adminapi.RateAPI, snapshots storage.SnapshotStore, alerts storage.AlertStore, bus *notify.Bus, logger zerolog.Logger) *Watcher {
	var locker storage.AdvisoryLocker
	if l, ok := snapshots.(storage.AdvisoryLocker); ok {
		locker = l
	}
	return &Watcher{
		opts:      opts,
		rates:     rates,
		snapshots: snapshots,
		alerts:    alerts,
		locker:    locker,
		bus:       bus,
		logger:    logger.With().Str("component", "ratewatch").Logger(),
		now:       time.Now,
	}
}

// Run drives ProcessBucket from sched until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, sched *scheduler.Scheduler) error {
	if sched == nil {
		return errors.New("scheduler not configured")
	}
	return sched.Run(ctx, func(ctx context.Context, bucket time.Time) error {
		_, err := w.ProcessBucket(ctx, bucket)
		return err
	})
}

// ProcessBucket samples every rate once for bucket.
func (w *Watcher) ProcessBucket(ctx context.Context, bucket time.Time) (Report, error) {
	report := Report{Bucket: bucket}

	unlock, proceed, err := w.acquireLock(ctx)
	if err != nil {
		return report, err
	}
	if !proceed {
		w.logger.Debug().Time("bucket", bucket).Msg("skip bucket because advisory lock held elsewhere")
		report.Skipped = true
		return report, nil
	}
	if unlock != nil {
		defer unlock()
	}

	rates, err := w.rates.ListRates(ctx)
	if err != nil {
		return report, fmt.Errorf("fetch rates: %w", err)
	}

	for _, rate := range rates {
		snap := Snapshot(bucket, rate)
		report.Snapshots = append(report.Snapshots, snap)

		if w.snapshots != nil {
			if err := w.snapshots.UpsertSnapshot(ctx, snap); err != nil {
				w.logger.Error().Err(err).Time("bucket", bucket).Int64("rate_id", rate.ID).Msg("failed to upsert snapshot")
			}
		}

		event := w.logger.Info().Time("bucket", bucket).Str("rate", snap.Label())
		if snap.ChangePct != nil {
			event = event.Str("change_pct", snap.ChangePct.String())
		}
		event.Msg("rate sampled")

		alert, ok := w.evaluate(bucket, rate)
		if !ok {
			continue
		}
		if w.coolingDown(ctx, rate.ID) {
			w.logger.Debug().Int64("rate_id", rate.ID).Msg("alert suppressed by cooldown")
			continue
		}
		w.dispatch(ctx, alert)
		report.Alerts = append(report.Alerts, alert)
	}

	return report, nil
}

func (w *Watcher) evaluate(bucket time.Time, rate adminapi.MetalRate) (Alert, bool) {
	if !w.opts.AlertsEnabled || !w.opts.ThresholdPct.IsPositive() {
		return Alert{}, false
	}
	return Evaluate(bucket, rate, w.opts.ThresholdPct)
}

// Evaluate reports whether rate's change percent strictly exceeds threshold
// in absolute value. Rates without a computable change never alert.
func Evaluate(bucket time.Time, rate adminapi.MetalRate, threshold decimal.Decimal) (Alert, bool) {
	change, ok := changeOf(rate)
	if !ok || !change.Abs().GreaterThan(threshold) {
		return Alert{}, false
	}
	return Alert{
		Bucket:       bucket,
		Rate:         rate,
		ChangePct:    change,
		ThresholdPct: threshold,
		Direction:    classifyChange(change),
	}, true
}

// Snapshot converts rate into a history row for bucket.
func Snapshot(bucket time.Time, rate adminapi.MetalRate) storage.RateSnapshot {
	snap := storage.RateSnapshot{
		Bucket:         bucket,
		RateID:         rate.ID,
		Metal:          rate.Metal,
		Purity:         rate.Purity,
		RatePerGram:    rate.RatePerGram,
		RatePerTenGram: rate.RatePerTenGram,
		CurrentPrice:   rate.CurrentPrice,
		PredictedPrice: rate.PredictedPrice,
		Status:         storage.StatusComplete,
	}
	if change, ok := changeOf(rate); ok {
		snap.ChangePct = &change
	} else {
		msg := "change percent unavailable: current price is not positive"
		snap.Error = &msg
	}
	return snap
}

// changeOf prefers a freshly derived value over the one the backend stored.
func changeOf(rate adminapi.MetalRate) (decimal.Decimal, bool) {
	if change, ok := derive.ChangePercent(rate.CurrentPrice, rate.PredictedPrice); ok {
		return change, true
	}
	if rate.ChangePercent != nil {
		return *rate.ChangePercent, true
	}
	return decimal.Zero, false
}

func (w *Watcher) coolingDown(ctx context.Context, rateID int64) bool {
	if w.alerts == nil || w.opts.Cooldown <= 0 {
		return false
	}
	last, err := w.alerts.LastAlert(ctx, rateID)
	if err != nil {
		w.logger.Warn().Err(err).Int64("rate_id", rateID).Msg("lookup last alert failed")
		return false
	}
	return last != nil && w.now().Sub(last.CreatedAt) < w.opts.Cooldown
}

func (w *Watcher) dispatch(ctx context.Context, alert Alert) {
	if w.alerts != nil {
		record := storage.AlertRecord{
			Bucket:       alert.Bucket,
			RateID:       alert.Rate.ID,
			ChangePct:    alert.ChangePct,
			ThresholdPct: alert.ThresholdPct,
			Direction:    alert.Direction,
			Channels:     w.opts.Channels,
		}
		if _, err := w.alerts.InsertAlert(ctx, record); err != nil {
			w.logger.Error().Err(err).Time("bucket", alert.Bucket).Msg("failed to persist alert record")
		}
	}
	w.bus.Warning(ctx, alert.Message())
}

func classifyChange(d decimal.Decimal) string {
	switch d.Sign() {
	case 1:
		return DirectionUp
	case -1:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

func (w *Watcher) acquireLock(ctx context.Context) (func(), bool, error) {
	if w.opts.LockKey == 0 || w.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := w.locker.TryAdvisoryLock(ctx, w.opts.LockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
