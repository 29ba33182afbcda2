package icon

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxIconBytes caps how much of an icon response is read.
const maxIconBytes = 1 << 20

// Resolver fetches favicons for result origins on cache misses. Every failure
// mode is silent: the worst outcome is a result without an icon.
type Resolver struct {
	Cache     *Cache
	HTTPC     *http.Client
	UserAgent string
}

// Resolve returns a handle to the origin's icon, fetching and caching it when
// absent. The origin is derived from the result's canonical URL. An empty Ref
// means no icon could be resolved.
func (r *Resolver) Resolve(ctx context.Context, canonicalURL string) Ref {
	origin := originOf(canonicalURL)
	if origin == "" {
		return ""
	}
	if _, ok := r.Cache.Get(origin); ok {
		return Ref(origin)
	}

	data := r.fetch(ctx, origin+"/favicon.ico")
	if data == nil {
		// Some sites only declare their icon in the page head.
		data = r.fetchDeclaredIcon(ctx, origin)
	}
	if data == nil {
		return ""
	}
	r.Cache.Put(origin, data)
	return Ref(origin)
}

// Bytes resolves a Ref back to icon bytes through the cache.
func (r *Resolver) Bytes(ref Ref) ([]byte, bool) {
	if ref == "" {
		return nil, false
	}
	return r.Cache.Get(string(ref))
}

func (r *Resolver) fetch(ctx context.Context, rawURL string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}
	hc := r.HTTPC
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes))
	if err != nil || len(data) == 0 {
		return nil
	}
	return data
}

// fetchDeclaredIcon loads the origin's homepage and follows the first
// <link rel="icon"> (or "shortcut icon") it declares.
func (r *Resolver) fetchDeclaredIcon(ctx context.Context, origin string) []byte {
	page := r.fetch(ctx, origin+"/")
	if page == nil {
		return nil
	}
	href := findIconLink(page)
	if href == "" {
		return nil
	}
	iconURL := resolveHref(origin, href)
	if iconURL == "" {
		return nil
	}
	return r.fetch(ctx, iconURL)
}

func findIconLink(page []byte) string {
	node, err := html.Parse(bytes.NewReader(page))
	if err != nil || node == nil {
		return ""
	}
	var href string
	var dfs func(*html.Node)
	dfs = func(n *html.Node) {
		if href != "" {
			return
		}
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "link") {
			var rel, h string
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case "rel":
					rel = strings.ToLower(a.Val)
				case "href":
					h = a.Val
				}
			}
			if strings.Contains(rel, "icon") && h != "" {
				href = h
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if href != "" {
				return
			}
		}
	}
	dfs(node)
	return href
}

func resolveHref(origin, href string) string {
	base, err := url.Parse(origin + "/")
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ""
	}
	return scheme + "://" + strings.ToLower(u.Host)
}
