package rank

import (
	"math"
	"strings"
	"time"

	"github.com/mosaicsearch/mosaic/internal/urlnorm"
)

// Excluded is the sentinel weight signalling that a candidate's host matched
// the blacklist. The controller drops such candidates before merging.
const Excluded = -999.0

// Lists holds the session-level domain lists consulted by Weight. All
// matching is plain substring matching against the candidate's host, which is
// how the lists are meant to be written ("example.com" matches any subdomain).
type Lists struct {
	Blacklist     []string
	Whitelist     []string
	Authoritative []string
}

// Weight scores a candidate by its original URL and optional publish date.
// Rules apply in order: a blacklist match returns Excluded immediately;
// whitelist adds 1.5; an authoritative domain adds 1.0; a recency term is
// added only when publishedAt is non-zero. The caller supplies now so tests
// can pin the clock.
func Weight(rawURL string, publishedAt time.Time, lists Lists, now time.Time) float64 {
	host := urlnorm.Host(rawURL)

	if matchAny(host, lists.Blacklist) {
		return Excluded
	}

	w := 0.0
	if matchAny(host, lists.Whitelist) {
		w += 1.5
	}
	if matchAny(host, lists.Authoritative) {
		w += 1.0
	}

	if !publishedAt.IsZero() {
		days := int(math.Floor(now.Sub(publishedAt).Hours() / 24))
		switch {
		case days == 0:
			w += 0.5
		case days == 1:
			w += 0.4
		case days == 2:
			w += 0.3
		case days == 3:
			w += 0.2
		case days == 4:
			w += 0.1
		case days >= 30:
			w -= 0.5
		}
	}

	return w
}

// Whitelisted reports whether the URL's host matches any whitelist entry.
// This is surfaced on results independently of the weight so consumers can
// badge whitelisted hits.
func Whitelisted(rawURL string, lists Lists) bool {
	return matchAny(urlnorm.Host(rawURL), lists.Whitelist)
}

func matchAny(host string, entries []string) bool {
	if host == "" {
		return false
	}
	for _, e := range entries {
		if e != "" && strings.Contains(host, e) {
			return true
		}
	}
	return false
}

// dateLayouts are tried in order after the RFC 3339 forms.
var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// NormalizeDate coerces the loosely-typed publish date values engines return
// into a time.Time. Accepted shapes: time.Time, a numeric epoch (milliseconds
// when greater than 1e12, seconds otherwise), a digit-only string under the
// same rule, RFC 3339 / ISO-8601 strings, and date or datetime strings using
// "-" or "/" separators. Anything else reports ok=false; normalization never
// fails with an error.
func NormalizeDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	case float64:
		return fromEpoch(t), true
	case int:
		return fromEpoch(float64(t)), true
	case int64:
		return fromEpoch(float64(t)), true
	case string:
		return parseDateString(t)
	}
	return time.Time{}, false
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if isDigits(s) {
		var n float64
		for _, r := range s {
			n = n*10 + float64(r-'0')
		}
		return fromEpoch(n), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromEpoch(n float64) time.Time {
	if n > 1e12 {
		n = n / 1000.0
	}
	sec := int64(n)
	nsec := int64((n - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
