// Command panel runs the gesture control panel's development server: it
// proxies the backend API, serves the panel routes and exposes metrics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/raysh454/gesturepanel/internal/app"
	"github.com/raysh454/gesturepanel/internal/cli"
	"github.com/raysh454/gesturepanel/internal/logging"
)

func main() {
	_ = godotenv.Load()

	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "panel: %v\n", err)
		os.Exit(2)
	}

	// Load configuration first (before setting up logger)
	cfg := app.DefaultConfig()
	if args.ConfigPath != "" {
		cfg, err = app.Load(args.ConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "panel: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.ApplyArgs(args)

	logger := newLogger(cfg.Logging)
	logger.Info("logger initialized", logging.Field{Key: "level", Value: cfg.Logging.Level})

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := application.Start(); err != nil {
		logger.Error("failed to start application", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	select {
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", logging.Field{Key: "signal", Value: sig.String()})
	case err := <-application.Errors():
		if err != nil {
			logger.Error("server failed", logging.Field{Key: "error", Value: err.Error()})
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	logger.Info("panel stopped gracefully")
}

func newLogger(cfg app.LoggingConfig) logging.Logger {
	if cfg.Format == "json" {
		return logging.NewStdoutLogger("panel")
	}
	return logging.NewTintLogger(os.Stderr, cfg.Level)
}
