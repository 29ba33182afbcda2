package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mosaicsearch/mosaic/internal/extract"
	"github.com/mosaicsearch/mosaic/internal/icon"
	"github.com/mosaicsearch/mosaic/internal/rank"
	"github.com/mosaicsearch/mosaic/internal/urlnorm"
)

const (
	connectTimeout = 15 * time.Second
	readTimeout    = 20 * time.Second
	maxBodyBytes   = 8 << 20
)

var queryPlaceholders = []string{"{query}", "{q}", "{keyword}", "{search}"}
var keyPlaceholders = []string{"{apikey}", "{api_key}", "{key}"}

// Fetcher issues one engine's search request and normalizes the response
// into Results. A transport failure is the engine's error; an unparsable or
// unexpectedly shaped body is silently zero results.
type Fetcher struct {
	// HTTPC is the search client. Nil means NewHTTPClient().
	HTTPC     *http.Client
	UserAgent string
	// Lists supplies the session's domain lists to the ranker.
	Lists rank.Lists
	// Icons, when set, resolves favicons for normalized results.
	Icons *icon.Resolver
	// Now is the ranking clock; nil means time.Now.
	Now func() time.Time
}

// NewHTTPClient builds the search client with the standard connect and read
// timeouts.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: readTimeout,
		Transport: &http.Transport{
			DialContext:         (&net.Dialer{Timeout: connectTimeout}).DialContext,
			TLSHandshakeTimeout: connectTimeout,
		},
	}
}

// Fetch runs one engine's request for query. The error return is non-nil only
// for transport-level failures; those yield zero results and must not stop
// other engines. Individual malformed items are logged and skipped.
func (f *Fetcher) Fetch(ctx context.Context, cfg Config, query string) ([]Result, error) {
	reqURL := BuildRequestURL(cfg.URLTemplate, query, cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	if cfg.AuthHeader != "" {
		req.Header.Set(cfg.AuthHeader, cfg.APIKey)
	}

	hc := f.HTTPC
	if hc == nil {
		hc = NewHTTPClient()
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// The status code is deliberately not checked: an error payload that is
	// not JSON simply decodes to zero items, which is the contract for
	// response-shape problems.
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		log.Debug().Str("engine", cfg.Name).Msg("non-JSON response body, no items")
		return nil, nil
	}

	items := extract.Items(doc, cfg.ResultsPath)
	out := make([]Result, 0, len(items))
	for _, item := range items {
		res, err := f.normalize(ctx, cfg, item)
		if err != nil {
			log.Warn().Err(err).Str("engine", cfg.Name).Msg("skipping malformed result item")
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

// BuildRequestURL substitutes query and API-key placeholders into the engine's
// URL template, percent-encoding both values. When the template carried no
// query placeholder and its query string names no recognized search
// parameter, ?q= (or &q=) is appended.
func BuildRequestURL(template, query, apiKey string) string {
	reqURL := template
	encoded := url.QueryEscape(query)

	replacedQuery := false
	for _, ph := range queryPlaceholders {
		if strings.Contains(reqURL, ph) {
			reqURL = strings.ReplaceAll(reqURL, ph, encoded)
			replacedQuery = true
		}
	}
	for _, ph := range keyPlaceholders {
		if strings.Contains(reqURL, ph) {
			reqURL = strings.ReplaceAll(reqURL, ph, url.QueryEscape(apiKey))
		}
	}

	if !replacedQuery && !hasSearchParam(reqURL) {
		sep := "?"
		if strings.Contains(reqURL, "?") {
			sep = "&"
		}
		reqURL += sep + "q=" + encoded
	}
	return reqURL
}

func hasSearchParam(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	q := strings.ToLower(u.RawQuery)
	for _, k := range []string{"q=", "keyword=", "query=", "search="} {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

func (f *Fetcher) normalize(ctx context.Context, cfg Config, item any) (Result, error) {
	if item == nil {
		return Result{}, errors.New("empty item")
	}

	var title, rawURL, snippet string
	var published time.Time
	switch it := item.(type) {
	case map[string]any:
		title = stringField(it, cfg.titleKey(), "title")
		rawURL = stringField(it, cfg.urlKey(), "url")
		snippet = stringField(it, cfg.snippetKey(), "snippet")
		if pd, ok := anyField(it, cfg.publishDateKey(), "publish_date"); ok {
			published, _ = rank.NormalizeDate(pd)
		}
	default:
		// A scalar item still renders as a hit, just without a link.
		title = fmt.Sprint(it)
		snippet = title
	}

	if title == "" {
		title = cfg.Name + " result"
	}

	canonical := urlnorm.Canonicalize(rawURL)
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	res := Result{
		Title:        title,
		URL:          rawURL,
		CanonicalURL: canonical,
		Snippet:      snippet,
		Engine:       cfg.Name,
		PublishedAt:  published,
		Weight:       rank.Weight(rawURL, published, f.Lists, now()),
		Whitelisted:  rank.Whitelisted(rawURL, f.Lists),
	}
	if f.Icons != nil && canonical != "" {
		res.Icon = f.Icons.Resolve(ctx, canonical)
	}
	return res, nil
}

// stringField reads the configured key, falling back to the conventional one
// when the configured key is absent or empty. Scalar non-string values are
// stringified; objects and arrays are treated as absent.
func stringField(m map[string]any, key, fallback string) string {
	if s := toString(m[key]); s != "" {
		return s
	}
	if key != fallback {
		return toString(m[fallback])
	}
	return ""
}

func anyField(m map[string]any, key, fallback string) (any, bool) {
	if v, ok := m[key]; ok && v != nil {
		return v, true
	}
	if v, ok := m[fallback]; ok && v != nil {
		return v, true
	}
	return nil, false
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64, bool, json.Number:
		return fmt.Sprint(t)
	}
	return ""
}
