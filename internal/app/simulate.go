package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"jewelry-admin/internal/adminapi"
	"jewelry-admin/internal/ratewatch"
)

// SimulateAlert 使用给定的当前价/预测价模拟一次告警流程。
func (a *App) SimulateAlert(ctx context.Context, current, predicted decimal.Decimal) (ratewatch.Report, error) {
	if !a.Config.Alerting.Enabled {
		return ratewatch.Report{}, errors.New("alerting 未启用")
	}

	rates := &staticRates{rate: adminapi.MetalRate{
		ID:             0,
		Metal:          "simulated",
		CurrentPrice:   current,
		PredictedPrice: predicted,
	}}

	opts := a.watchOptions()
	opts.Cooldown = 0
	opts.LockKey = 0
	watcher := ratewatch.New(opts, rates, nil, nil, a.newBus(true), a.root)

	bucket := time.Now().UTC().Truncate(a.Config.Scheduler.Interval)
	report, err := watcher.ProcessBucket(ctx, bucket)
	if err != nil {
		return report, err
	}
	if len(report.Alerts) == 0 {
		a.Logger.Info().Msg("change within threshold; no alert emitted")
	}
	return report, nil
}

type staticRates struct {
	rate adminapi.MetalRate
}

func (s *staticRates) ListRates(context.Context) ([]adminapi.MetalRate, error) {
	return []adminapi.MetalRate{s.rate}, nil
}

func (s *staticRates) UpdateRate(context.Context, int64, adminapi.RateUpdate) (adminapi.MetalRate, error) {
	return adminapi.MetalRate{}, errors.New("simulated rates are read-only")
}

var _ adminapi.RateAPI = (*staticRates)(nil)
