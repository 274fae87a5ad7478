package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/five82/backoffice/internal/config"
	"github.com/five82/backoffice/internal/devserver"
	"github.com/five82/backoffice/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional)")
	addr := flag.String("addr", "", "listen address (optional, defaults to devserver.addr)")
	noSeed := flag.Bool("no-seed", false, "start with an empty store")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backoffice-devserver: load config: %v\n", err)
		return 1
	}
	if *addr != "" {
		cfg.Devserver.Addr = *addr
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	log := logging.Component("devserver")

	password := cfg.Devserver.AdminPassword
	if password == "" {
		password = uuid.NewString()
		log.Warn().
			Str("username", cfg.Devserver.AdminUsername).
			Str("password", password).
			Msg("no devserver.admin_password configured; generated one for this run")
	}

	srv, err := devserver.New(devserver.Config{
		AdminUsername: cfg.Devserver.AdminUsername,
		AdminPassword: password,
		AdminEmail:    cfg.Devserver.AdminEmail,
		Seed:          !*noSeed,
		Years:         cfg.Devserver.Years,
		Awards:        cfg.Devserver.Awards,
		Logger:        logging.Logger(),
	})
	if err != nil {
		log.Error().Err(err).Msg("init devserver")
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	httpSrv := &http.Server{
		Addr:              cfg.Devserver.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.Devserver.Addr).Msg("listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("serve")
		return 1
	}
	log.Info().Msg("stopped")
	return 0
}
