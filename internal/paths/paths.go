// Package paths resolves where the rowkit CLI keeps its configuration and
// where a SQLite database lives when none is configured.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user configuration directory.
const AppName = "rowkit"

// DefaultDatabaseName is the SQLite file created in the working directory
// when no database is configured.
const DefaultDatabaseName = "rowkit.db"

// Environment overrides.
const (
	EnvConfigDir = "ROWKIT_CONFIG_DIR"
	EnvDatabase  = "ROWKIT_DATABASE"
)

// lookup holds the OS queries so tests can replace them.
var lookup = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// DefaultConfigDir returns the per-user configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/rowkit (fallback ~/.config/rowkit)
// macOS:   ~/Library/Application Support/rowkit
// Windows: %APPDATA%/rowkit
func DefaultConfigDir() (string, error) {
	if lookup.goos == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := lookup.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppName), nil
	}
	dir, err := lookup.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// ResolveConfigDir picks the configuration directory: flag, then
// ROWKIT_CONFIG_DIR, then DefaultConfigDir. Overrides are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if p := first(flag, os.Getenv(EnvConfigDir)); p != "" {
		return filepath.Abs(p)
	}
	return DefaultConfigDir()
}

// ResolveDatabase picks the SQLite database file: flag, then the value from
// config.yaml, then ROWKIT_DATABASE, then rowkit.db in the working
// directory. The result is absolute.
func ResolveDatabase(flag, configValue string) (string, error) {
	if p := first(flag, configValue, os.Getenv(EnvDatabase)); p != "" {
		return filepath.Abs(p)
	}
	cwd, err := lookup.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDatabaseName), nil
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
