package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"Folio/Controllers"
	"Folio/CronJobs"
	"Folio/FiberConfig"
	"Folio/Models"
	"Folio/RateLimit"
	"Folio/Relay"
	"Folio/email"
)

func main() {
	cfg, err := Models.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	os.Exit(finish(logger, run(cfg, logger)))
}

func run(cfg Models.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sender email.Sender
	switch cfg.Transport {
	case Models.TransportLog:
		sender = email.NewLogSender(logger)
	default:
		sender = email.NewSMTPSender(cfg.Email)
	}

	var counter RateLimit.Counter
	if cfg.RateLimit.Store == "memory" {
		counter = RateLimit.NewMemoryCounter()
	} else {
		db, err := Models.Connect(cfg.RateLimit)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		counter = RateLimit.NewGormCounter(db)
	}

	sweeper := CronJobs.NewCounterSweeper(counter, cfg.RateLimit.Sweep, logger)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	limiter := RateLimit.NewLimiter(counter, cfg.RateLimit.Max, cfg.RateLimit.Window)
	relay := Relay.NewService(sender, limiter, Relay.Options{
		FromEmail:    cfg.Email.FromEmail,
		ToEmail:      cfg.Email.ToEmail,
		SubjectLabel: cfg.SubjectLabel,
	}, logger)

	logger.Info("relay configured",
		zap.String("transport", sender.Name()),
		zap.String("rate_limit_store", cfg.RateLimit.Store),
		zap.Int("rate_limit_max", cfg.RateLimit.Max),
		zap.Duration("rate_limit_window", cfg.RateLimit.Window),
	)

	app := FiberConfig.NewApp(cfg, Controllers.NewContactController(relay, logger), logger)
	// In-flight sends may take up to the SMTP timeout to finish.
	return FiberConfig.FiberConfig(ctx, app, cfg.Port, cfg.Email.Timeout+5*time.Second, logger)
}

// finish logs how the server ended and flushes the logger before the process
// exits, since os.Exit skips deferred calls.
func finish(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
		code = 1
	}
	logger.Sync()
	return code
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build()
}
