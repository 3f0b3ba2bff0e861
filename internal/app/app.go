package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"jewelry-admin/internal/adminapi"
	"jewelry-admin/internal/config"
	"jewelry-admin/internal/export"
	"jewelry-admin/internal/logging"
	"jewelry-admin/internal/notify"
	"jewelry-admin/internal/pages"
	"jewelry-admin/internal/ratewatch"
	"jewelry-admin/internal/scheduler"
	"jewelry-admin/internal/storage"
	"jewelry-admin/internal/version"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	// Out receives command tables; Err receives notifications.
	Out io.Writer
	Err io.Writer

	// Backend overrides the HTTP client, mainly in tests.
	Backend Backend

	// root is the unscoped logger handed to components.
	root zerolog.Logger
}

// Backend is every admin API the commands use.
type Backend interface {
	adminapi.RateAPI
	adminapi.ProductAPI
	adminapi.UserAPI
	adminapi.DiscountAPI
	adminapi.BannerAPI
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logging.Component(logger, "app"),
		root:   logger,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
}

func (a *App) backend() Backend {
	if a.Backend != nil {
		return a.Backend
	}
	userAgent := a.Config.Backend.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}
	a.Backend = adminapi.New(adminapi.Options{
		BaseURL:   a.Config.Backend.BaseURL,
		Token:     a.Config.Backend.Token,
		Timeout:   a.Config.Backend.RequestTimeout,
		UserAgent: userAgent,
	}, a.root)
	return a.Backend
}

// newBus prints notifications on Err, mirrors them into the log and, for
// alerts, pushes to Telegram when enabled.
func (a *App) newBus(alerts bool) *notify.Bus {
	sinks := []notify.Notifier{notify.NewConsole(a.Err), notify.NewLog(a.root)}
	if alerts {
		sinks = append(sinks, a.newTelegram())
	}
	return notify.NewBus(a.root, sinks...)
}

func (a *App) newTelegram() notify.Notifier {
	cfg := a.Config.Alerting.Telegram
	if !cfg.Enabled || !a.channelEnabled("telegram") {
		return nil
	}
	return notify.NewTelegram(notify.TelegramOptions{
		BotToken: cfg.BotToken,
		ChatID:   cfg.ChatID,
		APIBase:  cfg.APIBase,
	}, a.root)
}

func (a *App) channelEnabled(name string) bool {
	if len(a.Config.Alerting.Channels) == 0 {
		return true
	}
	for _, ch := range a.Config.Alerting.Channels {
		if ch == name {
			return true
		}
	}
	return false
}

func (a *App) deps() pages.Deps {
	return pages.Deps{
		Bus:         a.newBus(false),
		Logger:      a.root,
		PageSize:    a.Config.UI.PageSize,
		SearchDelay: a.Config.UI.SearchDebounce,
	}
}

func (a *App) exporter() *export.Exporter {
	return export.New(export.Options{
		Dir:         a.Config.Export.Dir,
		Format:      a.Config.Export.Format,
		ColumnWidth: a.Config.Export.ColumnWidth,
	}, a.root)
}

// openStore returns nil when no DSN is configured.
func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	if dir := a.Config.Database.MigrationsPath; dir != "" {
		applied, err := store.Migrate(ctx, dir)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		a.Logger.Debug().Strs("migrations", applied).Msg("schema up to date")
	}
	return store, store.Close, nil
}

func (a *App) requireStore(ctx context.Context) (*storage.Store, func(), error) {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if store == nil {
		return nil, nil, errors.New("database.dsn not configured; rate history unavailable")
	}
	return store, closeStore, nil
}

func (a *App) watchOptions() ratewatch.Options {
	return ratewatch.Options{
		AlertsEnabled: a.Config.Alerting.Enabled,
		ThresholdPct:  decimal.NewFromFloat(a.Config.Alerting.ThresholdPct),
		Cooldown:      a.Config.Alerting.Cooldown,
		Channels:      a.Config.Alerting.Channels,
		LockKey:       a.Config.Scheduler.AdvisoryLockKey,
	}
}

// WatchOptions configure the watch command.
type WatchOptions struct {
	Once bool
}

// Watch runs the rate watch until interrupted, or for one bucket with Once.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; rate history disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched, err := scheduler.New(scheduler.Options{
		Interval:       a.Config.Scheduler.Interval,
		AlignToBucket:  a.Config.Scheduler.AlignToBucket,
		StartupDelay:   a.Config.Scheduler.StartupDelay,
		RunImmediately: opts.Once,
		MaxTicks:       boolToTicks(opts.Once),
	}, a.root)
	if err != nil {
		return err
	}

	var snapshots storage.SnapshotStore
	var alerts storage.AlertStore
	if store != nil {
		snapshots = store
		alerts = store
	}

	watcher := ratewatch.New(a.watchOptions(), a.backend(), snapshots, alerts, a.newBus(true), a.root)

	a.Logger.Info().Dur("interval", a.Config.Scheduler.Interval).Msg("starting rate watch")
	err = watcher.Run(ctx, sched)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("rate watch terminated with error")
		return err
	}

	a.Logger.Info().Msg("rate watch stopped")
	return nil
}

func boolToTicks(once bool) int {
	if once {
		return 1
	}
	return 0
}
