package app

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	yaml "gopkg.in/yaml.v3"

	"github.com/mosaicsearch/mosaic/internal/engine"
	"github.com/mosaicsearch/mosaic/internal/rank"
)

// Settings is the persisted configuration: the ordered engine list plus the
// session-level domain lists. The aggregation core treats it as read-only
// input for the duration of a run.
type Settings struct {
	Engines       []engine.Config `yaml:"engines" json:"engines"`
	Blacklist     []string        `yaml:"blacklist" json:"blacklist"`
	Whitelist     []string        `yaml:"whitelist" json:"whitelist"`
	Authoritative []string        `yaml:"authoritativeDomains" json:"authoritativeDomains"`
}

// DefaultSettings seeds a small blacklist and two authoritative domains; the
// whitelist starts empty and no engines are configured.
func DefaultSettings() Settings {
	return Settings{
		Blacklist:     []string{"csdn.net"},
		Whitelist:     []string{},
		Authoritative: []string{"github.com", "stackoverflow.com"},
	}
}

// LoadSettings reads YAML or JSON settings and merges them over the defaults.
// A missing or unreadable file and a syntax error all silently retain the
// defaults; only an engine entry that fails validation is a hard error, so a
// broken engine is refused at load time rather than during a search.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("settings file not loaded; using defaults")
		return s, nil
	}

	var fs Settings
	switch filepath.Ext(path) {
	case ".json":
		err = json.Unmarshal(b, &fs)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fs)
	default:
		// Try YAML then JSON, the settings writer may use either.
		if err = yaml.Unmarshal(b, &fs); err != nil {
			err = json.Unmarshal(b, &fs)
		}
	}
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("settings file unparsable; using defaults")
		return s, nil
	}

	if fs.Blacklist != nil {
		s.Blacklist = fs.Blacklist
	}
	if fs.Whitelist != nil {
		s.Whitelist = fs.Whitelist
	}
	if fs.Authoritative != nil {
		s.Authoritative = fs.Authoritative
	}
	if len(fs.Engines) > 0 {
		for _, ec := range fs.Engines {
			if err := ec.Validate(); err != nil {
				return DefaultSettings(), err
			}
		}
		s.Engines = fs.Engines
	}
	return s, nil
}

// Lists exposes the domain lists in the ranker's shape.
func (s Settings) Lists() rank.Lists {
	return rank.Lists{
		Blacklist:     s.Blacklist,
		Whitelist:     s.Whitelist,
		Authoritative: s.Authoritative,
	}
}
