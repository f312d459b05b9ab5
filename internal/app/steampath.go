package app

import (
	"fmt"
	"os"
	"path/filepath"

	"ssb-go/internal/ssb"
)

// DefaultSteamFolder guesses the userdata folder of the local Steam
// install. It returns an empty string when Steam cannot be found, leaving
// the user to type the path.
func DefaultSteamFolder() string {
	dir, err := findSteamDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "userdata")
}

// firstDir returns the first of paths that is an existing directory.
func firstDir(paths []string) (string, error) {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("steam directory not found in any known location: %w", ssb.ErrConfig)
}
