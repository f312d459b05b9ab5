package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// findSteamDir returns the first Steam install found in the usual Linux
// locations: snap, the native ~/.steam link, flatpak, then XDG_DATA_HOME.
func findSteamDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	candidates := []string{
		filepath.Join(homeDir, "snap", "steam", "common", ".local", "share", "Steam"),
		filepath.Join(homeDir, ".steam", "steam"),
		filepath.Join(homeDir, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam"),
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "Steam"))
	}
	return firstDir(candidates)
}
