package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "taillookup"

	// SourceURL is the FAA releasable aircraft database.
	SourceURL = "https://registry.faa.gov/database/ReleasableAircraft.zip"

	// SnapshotFile is the default name of the SQLite snapshot.
	SnapshotFile = "aircraft.db"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/taillookup by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for downloaded archives.
// Returns ~/.cache/taillookup by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// DataDir returns the directory path for snapshots.
// Returns ~/.local/share/taillookup by default.
func DataDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/taillookup/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(DataDir(homeDir), "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/taillookup/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}
