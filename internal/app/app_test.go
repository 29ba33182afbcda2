package app

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestApp_RunEndToEnd(t *testing.T) {
	engineA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"title":"X","url":"http://a.com/?utm_source=z"}]}`))
	}))
	defer engineA.Close()
	engineB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"title":"Y","url":"http://a.com"}]}`))
	}))
	defer engineB.Close()

	settings := fmt.Sprintf(`{
  "engines": [
    {"name": "A", "enabled": true, "url": "%s?q={query}"},
    {"name": "B", "enabled": true, "url": "%s?q={query}"}
  ]
}`, engineA.URL, engineB.URL)
	path := writeFile(t, "settings.json", settings)

	a, err := New(Config{SettingsPath: path, Query: "anything"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	var out bytes.Buffer
	if err := a.Run(context.Background(), &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "X") {
		t.Fatalf("first-arrival result missing from output:\n%s", text)
	}
	if strings.Contains(text, "Y") {
		t.Fatalf("duplicate canonical URL should have been dropped:\n%s", text)
	}
}

func TestApp_RunWritesErrorLogForDeadEngine(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	path := writeFile(t, "settings.json", fmt.Sprintf(`{
  "engines": [{"name": "dead", "enabled": true, "url": "%s"}]
}`, dead.URL))
	logDir := t.TempDir()

	a, err := New(Config{SettingsPath: path, Query: "q", LogDir: logDir})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	var out bytes.Buffer
	if err := a.Run(context.Background(), &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	entries, err := os.ReadDir(logDir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("expected a diagnostic log file, got %v err %v", entries, err)
	}
	body, err := os.ReadFile(filepath.Join(logDir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(body), "engine=dead") {
		t.Fatalf("log should name the engine:\n%s", body)
	}
}

func TestApp_RunNoEngines(t *testing.T) {
	a, err := New(Config{Query: "q"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()
	if err := a.Run(context.Background(), &bytes.Buffer{}); err != ErrNoEngines {
		t.Fatalf("expected ErrNoEngines, got %v", err)
	}
}
