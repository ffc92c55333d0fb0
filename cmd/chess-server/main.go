// Package main implements the chess server: a REST and websocket API over the
// rules engine with optional SQLite or Redis persistence.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"chessrules/cmd/chess-server/cli"
	"chessrules/internal/config"
	"chessrules/internal/http"
	"chessrules/internal/processor"
	"chessrules/internal/service"
	"chessrules/internal/storage"
	"chessrules/internal/storage/redisstore"
)

const (
	gracefulShutdownTimeout = time.Second * 5
	redisDialTimeout        = time.Second * 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code. Failures return rather than exit so the
// PID file is always released.
func run(args []string) int {
	// Database administration subcommands
	if len(args) > 0 && args[0] == "db" {
		if err := cli.Run(args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "CLI error: %v\n", err)
			return 1
		}
		return 0
	}

	fs := flag.NewFlagSet("chess-server", flag.ContinueOnError)
	var (
		configPath  = fs.String("config", "", "Path to YAML config file (environment only if empty)")
		apiHost     = fs.String("api-host", "", "API server host (overrides config)")
		apiPort     = fs.Int("api-port", 0, "API server port (overrides config)")
		dev         = fs.Bool("dev", false, "Development mode (console logs, relaxed rate limits)")
		backend     = fs.String("storage", "", "Storage backend: memory, sqlite or redis (overrides config)")
		storagePath = fs.String("storage-path", "", "SQLite database file (overrides config)")
		pidPath     = fs.String("pid", "", "Optional path to write PID file")
		pidLock     = fs.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: chess-server [flags]\n       chess-server db <init|delete|query|show> -path <file>\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\n%s", config.Usage())
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	applyFlags(cfg, *apiHost, *apiPort, *dev, *backend, *storagePath)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	log := newLogger(cfg)

	if *pidLock && *pidPath == "" {
		log.Error().Msg("-pid-lock flag requires the -pid flag to be set")
		return 1
	}
	if *pidPath != "" {
		pid, err := writePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Error().Err(err).Msg("failed to manage PID file")
			return 1
		}
		defer pid.Release()
		log.Info().Str("path", *pidPath).Bool("lock", *pidLock).Msg("PID file created")
	}

	// 1. Storage (optional)
	store, err := openStore(cfg, log)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.Storage.Backend).Msg("failed to initialize storage")
		return 1
	}

	// 2. Service, 3. Processor, 4. HTTP
	svc := service.New(store, log)
	proc := processor.New(svc, log)
	app := http.NewFiberApp(proc, svc, http.Options{
		DevMode:   cfg.Dev,
		RateLimit: cfg.RateLimit,
		AccessLog: true,
		Log:       log,
	})

	apiAddr := cfg.API.Addr()
	listenErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", "http://"+apiAddr).
			Str("storage", cfg.Storage.Backend).
			Int("rate_limit", cfg.RateLimit).
			Bool("dev", cfg.Dev).
			Msg("chess API server starting")

		listenErr <- app.Listen(apiAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	code := 0
	select {
	case <-quit:
		log.Info().Msg("shutting down")
	case err := <-listenErr:
		log.Error().Err(err).Msg("API server listen error")
		code = 1
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	// Release long-poll clients before the listener waits on them
	if err := svc.StopWaiting(gracefulShutdownTimeout); err != nil {
		log.Warn().Err(err).Msg("long-poll release timed out")
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server forced to shutdown")
	}
	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Warn().Err(err).Msg("service shutdown error")
	}

	log.Info().Msg("server exited")
	return code
}

func applyFlags(cfg *config.Config, host string, port int, dev bool, backend, path string) {
	if host != "" {
		cfg.API.Host = host
	}
	if port != 0 {
		cfg.API.Port = port
	}
	if dev {
		cfg.Dev = true
	}
	if path != "" {
		cfg.Storage.SQLitePath = path
		if backend == "" {
			backend = config.BackendSQLite
		}
	}
	if backend != "" {
		cfg.Storage.Backend = backend
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	var log zerolog.Logger
	if cfg.Dev {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log = zerolog.New(os.Stdout)
	}
	return log.Level(cfg.Level()).With().Timestamp().Logger()
}

// openStore returns nil for the memory backend. The nil is returned as an
// interface value so the service sees persistence as disabled.
func openStore(cfg *config.Config, log zerolog.Logger) (service.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		store, err := storage.NewStore(cfg.Storage.SQLitePath, cfg.Dev, log)
		if err != nil {
			return nil, err
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		log.Info().Str("path", cfg.Storage.SQLitePath).Msg("sqlite storage enabled")
		return store, nil

	case config.BackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
		defer cancel()
		store, err := redisstore.Dial(ctx, cfg.Storage.Redis.Addr(), cfg.Storage.Redis.DB)
		if err != nil {
			return nil, err
		}
		log.Info().Str("addr", cfg.Storage.Redis.Addr()).Msg("redis storage enabled")
		return store, nil

	default:
		log.Info().Msg("persistent storage disabled")
		return nil, nil
	}
}
