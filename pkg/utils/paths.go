package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	appDirName = "daybook"
	dbFileName = "daybook.db"
)

// GetDefaultDBPathOnly returns the per-user application data location of the
// journal database without touching the filesystem.
func GetDefaultDBPathOnly() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return dbFileName
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(homeDir, "AppData", "Roaming", appDirName, dbFileName)
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", appDirName, dbFileName)
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName, dbFileName)
		}
		return filepath.Join(homeDir, ".local", "share", appDirName, dbFileName)
	}
}

// ResolveAndEnsureDBPath expands providedPath (default location when empty,
// leading "~/" as the home directory) to an absolute path and creates its
// directory with owner-only permissions. ":memory:" is returned unchanged.
func ResolveAndEnsureDBPath(providedPath string) (string, error) {
	if strings.HasPrefix(providedPath, ":memory:") {
		return providedPath, nil
	}

	targetPath := providedPath
	if targetPath == "" {
		targetPath = GetDefaultDBPathOnly()
	}

	if strings.HasPrefix(targetPath, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory to expand path '%s': %w", targetPath, err)
		}
		targetPath = filepath.Join(homeDir, targetPath[2:])
	}

	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", targetPath, err)
	}

	dbDir := filepath.Dir(absPath)
	if err := os.MkdirAll(dbDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create directory '%s' for database: %w", dbDir, err)
	}

	return absPath, nil
}
