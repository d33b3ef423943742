package config

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default durable-file directory based on the
// host OS. It prefers standard locations when available and falls back to
// a dotdir in the user's home directory.
func DefaultLogDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./logs"
	}

	// XDG (Linux) override
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "flume", "logs")
	}

	// Common Linux/Unix system dir
	if isDir("/var/lib") {
		return "/var/lib/flume/logs"
	}

	// macOS: ~/Library/Application Support/Flume/logs
	if isDir(filepath.Join(homeDir, "Library")) {
		return filepath.Join(homeDir, "Library", "Application Support", "Flume", "logs")
	}

	// Windows: %USERPROFILE%/AppData/Local/Flume/logs
	if isDir(filepath.Join(homeDir, "AppData")) {
		return filepath.Join(homeDir, "AppData", "Local", "Flume", "logs")
	}

	// Fallback: ~/.flume/logs
	return filepath.Join(homeDir, ".flume", "logs")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
