package app

import (
	"fmt"
	"os"
	"path/filepath"
)

func findSteamDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return firstDir([]string{filepath.Join(homeDir, "Library", "Application Support", "Steam")})
}
