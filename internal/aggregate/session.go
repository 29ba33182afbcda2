package aggregate

import (
	"sort"

	"github.com/google/uuid"

	"github.com/mosaicsearch/mosaic/internal/engine"
	"github.com/mosaicsearch/mosaic/internal/rank"
	"github.com/mosaicsearch/mosaic/internal/urlnorm"
)

// Session accumulates the accepted results for one user query. It holds the
// growing ranked list and the set of canonical URLs already accepted; the two
// are kept consistent by merge, which is only ever called from the
// controller's run goroutine.
type Session struct {
	ID    uuid.UUID
	Query string
	Lists rank.Lists

	results []engine.Result
	seen    map[string]struct{}
}

// NewSession creates an empty session for a query.
func NewSession(query string, lists rank.Lists) *Session {
	return &Session{
		ID:    uuid.New(),
		Query: query,
		Lists: lists,
		seen:  make(map[string]struct{}),
	}
}

// merge folds one engine's batch into the accepted list: candidates carrying
// the exclusion sentinel are discarded, canonical duplicates of anything
// already accepted are dropped (first arrival wins), and the whole list is
// re-sorted. Returns whether anything was accepted.
func (s *Session) merge(batch []engine.Result) bool {
	changed := false
	for _, r := range batch {
		if r.Weight == rank.Excluded {
			continue
		}
		key := r.CanonicalURL
		if key == "" {
			key = urlnorm.Canonicalize(r.URL)
			r.CanonicalURL = key
		}
		if key != "" {
			if _, dup := s.seen[key]; dup {
				continue
			}
			s.seen[key] = struct{}{}
		}
		s.results = append(s.results, r)
		changed = true
	}
	if changed {
		s.resort()
	}
	return changed
}

// resort orders by weight descending, then publish time descending with
// undated results treated as epoch zero.
func (s *Session) resort() {
	sort.SliceStable(s.results, func(i, j int) bool {
		a, b := s.results[i], s.results[j]
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		return epochSeconds(a) > epochSeconds(b)
	})
}

func epochSeconds(r engine.Result) int64 {
	if r.PublishedAt.IsZero() {
		return 0
	}
	return r.PublishedAt.Unix()
}

// Snapshot returns a copy of the accepted list safe to hand to consumers.
func (s *Session) Snapshot() []engine.Result {
	out := make([]engine.Result, len(s.results))
	copy(out, s.results)
	return out
}
