package aggregate

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mosaicsearch/mosaic/internal/engine"
	"github.com/mosaicsearch/mosaic/internal/rank"
)

// EngineError is one engine's failure during a run. The session ID lets a
// consumer correlate error events with the search that produced them.
type EngineError struct {
	SessionID uuid.UUID
	Engine    string
	Message   string
}

// Stream is the consumer-facing side of one aggregation run. Results carries
// a full re-sorted snapshot after each engine completes (not a delta);
// Errors carries per-engine failures; Done closes when every engine has been
// visited or the context was canceled. Results and Errors are closed with
// Done, and both are buffered so a slow consumer cannot stall the run.
type Stream struct {
	Results <-chan []engine.Result
	Errors  <-chan EngineError
	Done    <-chan struct{}
}

// Controller runs one aggregation per call to Run. Engines are visited
// sequentially in configuration order on a single background goroutine, so
// the session state has exactly one writer and a slow engine only delays the
// engines after it.
type Controller struct {
	Fetcher *engine.Fetcher
	Engines []engine.Config
	Lists   rank.Lists
}

// Run starts the aggregation for query and returns immediately. Cancellation
// is cooperative: the context is checked between engine fetches, and each
// fetch itself is bounded by the fetcher's timeouts.
func (c *Controller) Run(ctx context.Context, query string) *Stream {
	session := NewSession(query, c.Lists)

	results := make(chan []engine.Result, len(c.Engines))
	errs := make(chan EngineError, len(c.Engines))
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(errs)
		defer close(results)

		for _, cfg := range c.Engines {
			if ctx.Err() != nil {
				log.Debug().Str("session", session.ID.String()).Msg("search canceled")
				return
			}
			if !cfg.Enabled {
				continue
			}

			batch, err := c.Fetcher.Fetch(ctx, cfg, query)
			if err != nil {
				log.Warn().Err(err).
					Str("engine", cfg.Name).
					Str("session", session.ID.String()).
					Msg("engine fetch failed")
				errs <- EngineError{SessionID: session.ID, Engine: cfg.Name, Message: err.Error()}
				continue
			}

			session.merge(batch)
			log.Debug().
				Str("engine", cfg.Name).
				Int("batch", len(batch)).
				Int("accepted", len(session.results)).
				Msg("engine merged")
			results <- session.Snapshot()
		}
	}()

	return &Stream{Results: results, Errors: errs, Done: done}
}
