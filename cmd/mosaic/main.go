package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mosaicsearch/mosaic/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		settingsPath string
		cacheDir     string
		logDir       string
		userAgent    string
		timeout      time.Duration
		verbose      bool
	)

	flag.StringVar(&settingsPath, "config", os.Getenv("MOSAIC_CONFIG"), "Path to YAML/JSON settings file (engines and domain lists)")
	flag.StringVar(&cacheDir, "cache.dir", ".mosaic-cache", "Cache directory for the favicon store; empty disables icons")
	flag.StringVar(&logDir, "log.dir", ".mosaic-cache/logs", "Directory for per-engine error diagnostics; empty disables them")
	flag.StringVar(&userAgent, "ua", "mosaic/1.0", "User-Agent for engine and favicon requests")
	flag.DurationVar(&timeout, "timeout", 0, "Overall deadline for the whole search (e.g. 90s); 0 disables")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: mosaic [flags] <query>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := app.Config{
		SettingsPath: settingsPath,
		Query:        query,
		LogDir:       logDir,
		CacheDir:     cacheDir,
		UserAgent:    userAgent,
		Verbose:      verbose,
	}

	if err := run(cfg, timeout); err != nil {
		log.Error().Err(err).Msg("run failed")
		if errors.Is(err, app.ErrNoEngines) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(cfg app.Config, timeout time.Duration) error {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx, os.Stdout)
}
