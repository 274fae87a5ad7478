package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/backoffice/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional, defaults to ~/.config/backoffice/config.toml)")
	refresh := flag.Duration("refresh", 0, "background refresh interval, e.g. 15s (optional, defaults to refresh.interval)")
	logLevel := flag.String("log-level", "", "trace, debug, info, warn or error (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		LogLevel:   *logLevel,
	}
	if *refresh > 0 {
		opts.RefreshEvery = *refresh
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "backoffice: %v\n", err)
		return 1
	}
	return 0
}
