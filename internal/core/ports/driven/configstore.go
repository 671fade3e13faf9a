package driven

import "github.com/custodia-labs/newsdesk/internal/core/domain"

// SettingsStore provides access to the runtime configuration.
// Implementations handle persistence (e.g., TOML files) and defaulting.
type SettingsStore interface {
	// Load reads the settings. A missing file yields domain.DefaultSettings.
	Load() (domain.Settings, error)

	// Save persists settings, replacing the stored file.
	Save(settings domain.Settings) error

	// Path returns the configuration file path.
	Path() string
}

// QueryPoolStore provides the candidate queries for sessions.
type QueryPoolStore interface {
	// LoadPool reads the query pool. Implementations fall back to an
	// embedded default pool when no file is configured.
	LoadPool() (domain.QueryPool, error)

	// Path returns the pool file path, or empty when the embedded pool is used.
	Path() string
}
