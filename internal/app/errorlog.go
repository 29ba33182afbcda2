package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mosaicsearch/mosaic/internal/aggregate"
)

// writeErrorLog writes one engine failure to a timestamped diagnostic file
// under dir and returns its path so the failure message can point at it.
// An empty dir disables logging; write failures are the caller's to ignore.
func writeErrorLog(dir string, e aggregate.EngineError) (string, error) {
	if dir == "" {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}
	now := time.Now()
	name := now.Format("2006_01_02_15_04_05") + "_mosaic_error.log"
	path := filepath.Join(dir, name)
	body := fmt.Sprintf("[%s] session=%s engine=%s\n%s\n",
		now.Format(time.RFC3339), e.SessionID, e.Engine, e.Message)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write error log: %w", err)
	}
	return path, nil
}
