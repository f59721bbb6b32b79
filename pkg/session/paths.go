package session

import (
	"os"
	"path/filepath"
)

// AppName names the configuration and cache directories.
const AppName = "piemenu"

// ConfigDir returns $XDG_CONFIG_HOME/piemenu, or ~/.config/piemenu.
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// CacheDir returns $XDG_CACHE_HOME/piemenu, or ~/.cache/piemenu.
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DefaultConfigPath returns the config file location, or "" when no home
// directory is known.
func DefaultConfigPath() string {
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
