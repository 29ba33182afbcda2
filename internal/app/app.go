package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/mosaicsearch/mosaic/internal/aggregate"
	"github.com/mosaicsearch/mosaic/internal/engine"
	"github.com/mosaicsearch/mosaic/internal/icon"
)

// ErrNoEngines is returned when the settings define no enabled engine, so the
// caller can map it to a distinct exit code.
var ErrNoEngines = errors.New("no enabled engines configured")

// App wires the aggregation core together for one invocation: settings,
// icon cache and store, fetcher, and controller.
type App struct {
	cfg        Config
	settings   Settings
	store      *icon.Store
	controller *aggregate.Controller
}

// New loads settings and constructs the pipeline. Only a settings validation
// failure is fatal; an unavailable icon store degrades to memory-only icons.
func New(cfg Config) (*App, error) {
	settings, err := LoadSettings(cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	a := &App{cfg: cfg, settings: settings}

	// Icon resolution is tied to the cache directory: without one there is
	// nowhere to keep favicons across runs and the extra fetches are waste.
	var resolver *icon.Resolver
	if cfg.CacheDir != "" {
		store, err := icon.OpenStore(filepath.Join(cfg.CacheDir, "icons.db"))
		if err != nil {
			log.Warn().Err(err).Msg("icon store unavailable; icons kept in memory only")
		} else {
			a.store = store
		}
		resolver = &icon.Resolver{
			Cache:     &icon.Cache{Store: a.store},
			UserAgent: cfg.UserAgent,
		}
	}

	lists := settings.Lists()
	a.controller = &aggregate.Controller{
		Fetcher: &engine.Fetcher{
			HTTPC:     engine.NewHTTPClient(),
			UserAgent: cfg.UserAgent,
			Lists:     lists,
			Icons:     resolver,
		},
		Engines: settings.Engines,
		Lists:   lists,
	}
	return a, nil
}

// Close releases the icon store.
func (a *App) Close() error {
	return a.store.Close()
}

// Run executes one search and renders the final ranked list to out once the
// stream completes. Engine failures are logged and written to the diagnostic
// log directory; they never abort the run.
func (a *App) Run(ctx context.Context, out io.Writer) error {
	if !a.hasEnabledEngine() {
		return ErrNoEngines
	}

	log.Info().Str("query", a.cfg.Query).Int("engines", len(a.settings.Engines)).Msg("search started")
	stream := a.controller.Run(ctx, a.cfg.Query)

	var latest []engine.Result
	results, errs := stream.Results, stream.Errors
	for results != nil || errs != nil {
		select {
		case snap, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			latest = snap
			log.Debug().Int("count", len(snap)).Msg("result list updated")
		case e, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			path, werr := writeErrorLog(a.cfg.LogDir, e)
			if werr != nil {
				log.Debug().Err(werr).Msg("error log not written")
			}
			ev := log.Warn().Str("engine", e.Engine).Str("error", e.Message)
			if path != "" {
				ev = ev.Str("log", path)
			}
			ev.Msg("engine failed")
		}
	}

	render(out, latest)
	log.Info().Int("results", len(latest)).Msg("search finished")
	return ctx.Err()
}

func (a *App) hasEnabledEngine() bool {
	for _, ec := range a.settings.Engines {
		if ec.Enabled {
			return true
		}
	}
	return false
}

// render prints the ranked list in a plain text form. Richer presentation is
// the consumer's concern; this is the reference rendering for the CLI.
func render(out io.Writer, results []engine.Result) {
	for i, r := range results {
		fmt.Fprintf(out, "%2d. %s\n", i+1, r.Title)
		if r.URL != "" {
			fmt.Fprintf(out, "    %s\n", r.URL)
		}
		if r.Snippet != "" {
			fmt.Fprintf(out, "    %s\n", r.Snippet)
		}
		meta := fmt.Sprintf("    source=%s weight=%.1f", r.Engine, r.Weight)
		if !r.PublishedAt.IsZero() {
			meta += " published=" + r.PublishedAt.Format("2006-01-02")
		}
		if r.Whitelisted {
			meta += " [whitelisted]"
		}
		fmt.Fprintln(out, meta)
	}
}
