// Package file provides file-based implementations of driven port interfaces.
// These adapters read configuration from the local filesystem.
//
// Adapters:
//   - SettingsStore: TOML settings with environment overrides
//   - PoolStore: YAML query pools with an embedded default
//   - Watcher: fsnotify-based change notifications for hot reload
package file
