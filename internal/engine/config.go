package engine

import (
	"fmt"
	"strings"
)

// Config describes one remote search API. Instances are immutable for the
// duration of an aggregation run; the settings layer replaces them wholesale
// between runs.
type Config struct {
	// Name is the unique engine key, shown on results and error events.
	Name string `yaml:"name" json:"name"`
	// Enabled engines are visited in configuration order.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// URLTemplate is the request URL, optionally containing {query}/{q}/
	// {keyword}/{search} and {apikey}/{api_key}/{key} placeholders.
	URLTemplate string `yaml:"url" json:"url"`
	// APIKey substitutes into the template, or rides the AuthHeader.
	APIKey string `yaml:"key" json:"key"`
	// ResultsPath is the dot-path to the item list in the JSON response.
	// Empty selects the auto-detected common shapes.
	ResultsPath string `yaml:"resultsPath" json:"resultsPath"`

	// Field key mapping into each raw item. Empty keys fall back to the
	// conventional names (title, url, snippet, publish_date).
	TitleKey       string `yaml:"titleKey" json:"titleKey"`
	URLKey         string `yaml:"urlKey" json:"urlKey"`
	SnippetKey     string `yaml:"snippetKey" json:"snippetKey"`
	PublishDateKey string `yaml:"publishDateKey" json:"publishDateKey"`

	// AuthHeader, when set, names a request header that carries APIKey.
	AuthHeader string `yaml:"authHeader" json:"authHeader"`
}

// Validate rejects configurations that cannot produce a usable request.
// It runs at settings-load time so a broken engine is refused up front
// instead of failing loosely during a search.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("engine config: name is required")
	}
	if strings.TrimSpace(c.URLTemplate) == "" {
		return fmt.Errorf("engine %q: url template is required", c.Name)
	}
	return nil
}

func (c Config) titleKey() string       { return orDefault(c.TitleKey, "title") }
func (c Config) urlKey() string         { return orDefault(c.URLKey, "url") }
func (c Config) snippetKey() string     { return orDefault(c.SnippetKey, "snippet") }
func (c Config) publishDateKey() string { return orDefault(c.PublishDateKey, "publish_date") }

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
