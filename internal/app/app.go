package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/five82/backoffice/internal/admin"
	"github.com/five82/backoffice/internal/api"
	"github.com/five82/backoffice/internal/cache"
	"github.com/five82/backoffice/internal/config"
	"github.com/five82/backoffice/internal/logging"
	"github.com/five82/backoffice/internal/metrics"
	"github.com/five82/backoffice/internal/photos"
	"github.com/five82/backoffice/internal/prefs"
	"github.com/five82/backoffice/internal/query"
	"github.com/five82/backoffice/internal/session"
	"github.com/five82/backoffice/internal/ui"
)

const userAgent = "backoffice/1"

// Options configure the backoffice client.
type Options struct {
	ConfigPath   string
	PrefsPath    string        // empty uses default ~/.config/backoffice/prefs.toml
	RefreshEvery time.Duration // zero uses refresh.interval from config
	LogLevel     string        // empty uses log.level from config
}

// Run boots the backoffice TUI until the operator quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.RefreshEvery > 0 {
		cfg.Refresh.Interval = opts.RefreshEvery
	}

	logFile, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: "json", Output: logFile})
	log := logging.Component("app")
	log.Info().Str("base_url", cfg.API.BaseURL).Dur("refresh", cfg.Refresh.Interval).Msg("starting")

	apiLog := logging.Component("api")
	apiOpts := api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Logger:    &apiLog,
	}
	if apiOpts.UserAgent == "" {
		apiOpts.UserAgent = userAgent
	}
	if cfg.Breaker.Enabled {
		apiOpts.Breaker = &api.BreakerConfig{
			MaxFailures: cfg.Breaker.MaxFailures,
			OpenTimeout: cfg.Breaker.OpenTimeout,
		}
	}
	client, err := api.NewClient(apiOpts)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	qc := query.New(client, cache.New(), logging.Component("query"))
	sess := session.New(qc, logging.Component("session"))
	defer sess.Teardown()

	screens := admin.NewScreens(qc,
		admin.WithLogger(logging.Component("admin")),
		admin.WithPhotoOptions(
			photos.WithWarnBytes(cfg.Photos.WarnBytes),
			photos.WithLogger(logging.Component("photos")),
		),
	)

	if addr := cfg.Metrics.Addr; addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr); err != nil {
				log.Error().Err(err).Str("addr", addr).Msg("metrics endpoint stopped")
			}
		}()
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		log.Warn().Err(err).Msg("load preferences")
	}

	uiLog := logging.Component("ui")
	uiOpts := ui.Options{
		Logger:       &uiLog,
		Context:      ctx,
		Session:      sess,
		Query:        qc,
		Screens:      screens,
		ThemeName:    userPrefs.Theme,
		PrefsPath:    opts.PrefsPath,
		LastUsername: userPrefs.LastUsername,
		LogPath:      cfg.Log.File,
	}
	if cfg.Refresh.Interval > 0 {
		poller := NewPoller(qc, sess, cfg.Refresh.Interval, logging.Logger())
		poller.Start(ctx)
		uiOpts.Watcher = poller
	}

	err = ui.Run(uiOpts)
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		err = nil
	}
	log.Info().Err(err).Msg("stopped")
	return err
}
