package urlnorm

import (
	"net/url"
	"sort"
	"strings"
)

// Canonicalize reduces a URL to the comparable form used as the dedup key
// across engines. It lower-cases the scheme and host, strips explicit default
// ports, percent-decodes the path and trims a single trailing slash, drops
// the fragment, removes common tracking parameters, and re-encodes the query
// with pairs in a stable order.
//
// The function is total: it never fails. Empty input yields "", and input
// that cannot be parsed is passed through unchanged. Applying Canonicalize
// to its own output returns the same string.
func Canonicalize(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		scheme = "http"
	}
	host := strings.ToLower(u.Host)
	switch scheme {
	case "http":
		host = strings.TrimSuffix(host, ":80")
	case "https":
		host = strings.TrimSuffix(host, ":443")
	}

	// url.Parse already percent-decodes into Path. A bare root path is
	// dropped entirely so "http://a.com/" and "http://a.com" share one
	// canonical form.
	path := u.Path
	if strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}

	query := canonicalQuery(u.RawQuery)

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(path)
	if query != "" {
		b.WriteString("?")
		b.WriteString(query)
	}
	return b.String()
}

// Host returns the lower-cased host portion of a URL, or "" when the input
// has none. Ranking list checks match against this value.
func Host(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

type pair struct {
	key   string
	value string
}

// canonicalQuery drops tracking parameters, sorts the remaining pairs by key
// then value, and re-encodes. Blank values are kept so that "?a=" survives.
func canonicalQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	pairs := make([]pair, 0, 4)
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		k = decodeComponent(k)
		v = decodeComponent(v)
		if isTrackingParam(k) {
			continue
		}
		pairs = append(pairs, pair{key: k, value: v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteString("&")
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

func isTrackingParam(key string) bool {
	if strings.HasPrefix(key, "utm_") {
		return true
	}
	return key == "fbclid" || key == "gclid"
}

func decodeComponent(s string) string {
	d, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return d
}
