package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mosaicsearch/mosaic/internal/rank"
)

func TestBuildRequestURL(t *testing.T) {
	cases := []struct {
		name     string
		template string
		query    string
		key      string
		want     string
	}{
		{
			"query placeholder",
			"https://api.example/search?q={query}", "go http", "",
			"https://api.example/search?q=go+http",
		},
		{
			"q placeholder with key",
			"https://api.example/v1?q={q}&key={apikey}", "x", "secret",
			"https://api.example/v1?q=x&key=secret",
		},
		{
			"no placeholder appends q",
			"https://api.example/search", "x y", "",
			"https://api.example/search?q=x+y",
		},
		{
			"no placeholder with existing query string",
			"https://api.example/search?format=json", "x", "",
			"https://api.example/search?format=json&q=x",
		},
		{
			"existing search param left alone",
			"https://api.example/search?keyword=fixed", "x", "",
			"https://api.example/search?keyword=fixed",
		},
		{
			"alternate key placeholder",
			"https://api.example/s?search={search}&k={key}", "a", "kk",
			"https://api.example/s?search=a&k=kk",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildRequestURL(tc.template, tc.query, tc.key); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFetch_NormalizesMappedFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "golang" {
			t.Errorf("query not substituted: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"hits": []map[string]any{
					{"headline": "First", "link": "https://a.example/1", "summary": "s1", "date": "2026-08-30"},
					{"link": "https://a.example/2"},
				},
			},
		})
	}))
	defer srv.Close()

	f := &Fetcher{
		HTTPC: srv.Client(),
		Now:   func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) },
	}
	cfg := Config{
		Name:           "custom",
		URLTemplate:    srv.URL + "/search?q={query}",
		ResultsPath:    "data.hits",
		TitleKey:       "headline",
		URLKey:         "link",
		SnippetKey:     "summary",
		PublishDateKey: "date",
	}
	got, err := f.Fetch(context.Background(), cfg, "golang")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Title != "First" || got[0].Snippet != "s1" {
		t.Fatalf("unexpected first result: %+v", got[0])
	}
	if got[0].PublishedAt.IsZero() {
		t.Fatal("publish date should be set")
	}
	if got[1].Title != "custom result" {
		t.Fatalf("missing title should fall back, got %q", got[1].Title)
	}
	if got[1].Snippet != "" {
		t.Fatalf("missing snippet should be empty, got %q", got[1].Snippet)
	}
	if got[0].CanonicalURL != "https://a.example/1" {
		t.Fatalf("canonical url: %q", got[0].CanonicalURL)
	}
}

func TestFetch_AuthHeader(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Api-Key")
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	f := &Fetcher{HTTPC: srv.Client()}
	cfg := Config{Name: "e", URLTemplate: srv.URL, APIKey: "secret", AuthHeader: "X-Api-Key"}
	if _, err := f.Fetch(context.Background(), cfg, "x"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotHeader != "secret" {
		t.Fatalf("auth header not set, got %q", gotHeader)
	}
}

func TestFetch_NonJSONBodyIsZeroItemsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not json</html>"))
	}))
	defer srv.Close()

	f := &Fetcher{HTTPC: srv.Client()}
	got, err := f.Fetch(context.Background(), Config{Name: "e", URLTemplate: srv.URL}, "x")
	if err != nil {
		t.Fatalf("non-JSON body must not be an error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected zero results, got %d", len(got))
	}
}

func TestFetch_TransportErrorReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	f := &Fetcher{}
	_, err := f.Fetch(context.Background(), Config{Name: "e", URLTemplate: srv.URL}, "x")
	if err == nil {
		t.Fatal("expected a transport error")
	}
}

func TestFetch_WeightAndWhitelistApplied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"title":"T","url":"https://trusted.example/a"}]}`))
	}))
	defer srv.Close()

	f := &Fetcher{
		HTTPC: srv.Client(),
		Lists: rank.Lists{Whitelist: []string{"trusted.example"}},
	}
	got, err := f.Fetch(context.Background(), Config{Name: "e", URLTemplate: srv.URL}, "x")
	if err != nil || len(got) != 1 {
		t.Fatalf("fetch: %v, %d results", err, len(got))
	}
	if got[0].Weight != 1.5 || !got[0].Whitelisted {
		t.Fatalf("expected whitelisted weight 1.5, got %+v", got[0])
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Name: "ok", URLTemplate: "https://x"}).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if err := (Config{URLTemplate: "https://x"}).Validate(); err == nil {
		t.Fatal("missing name should be rejected")
	}
	if err := (Config{Name: "n"}).Validate(); err == nil {
		t.Fatal("missing url template should be rejected")
	}
}
