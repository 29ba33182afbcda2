package app

// Config holds runtime configuration for one invocation.
type Config struct {
	// SettingsPath points at the YAML/JSON settings file; empty uses the
	// built-in defaults.
	SettingsPath string

	// Query is the user's search text.
	Query string

	// LogDir receives per-engine error diagnostics; empty disables them.
	LogDir string

	// CacheDir hosts the persistent icon store. Empty disables icon
	// resolution entirely.
	CacheDir string

	UserAgent string
	Verbose   bool
}
