package engine

import (
	"time"

	"github.com/mosaicsearch/mosaic/internal/icon"
)

// Result is one normalized search hit. Instances are immutable once created;
// the weight is fixed at creation and never recomputed.
type Result struct {
	Title        string
	URL          string
	CanonicalURL string
	Snippet      string
	Engine       string
	// PublishedAt is zero when the source supplied no usable date.
	PublishedAt time.Time
	Weight      float64
	Whitelisted bool
	// Icon is an opaque handle into the icon cache; empty means no icon.
	Icon icon.Ref
}
