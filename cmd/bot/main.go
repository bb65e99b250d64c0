package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casinoledger/internal/bot"
	"casinoledger/internal/config"
	"casinoledger/internal/infra/logging"
	"casinoledger/internal/infra/pgutils"
	"casinoledger/internal/services/auth"
	"casinoledger/internal/services/ledger"
	"casinoledger/pkg/envconf"
	"casinoledger/pkg/shutdownqueue"
)

type botConfig struct {
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT"`
	Postgres        config.PostgresConfig
	Bot             config.BotConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running bot: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(botConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		return db.Close()
	})

	poller := bot.NewPoller(bot.NewClient(cfg.Bot), auth.New(db), ledger.New(db))

	slog.Info("bot poller started")

	err = poller.Run(ctx)
	if err != nil {
		return fmt.Errorf("poller: %w", err)
	}

	return nil
}
