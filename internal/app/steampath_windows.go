package app

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

// findSteamDir reads the install location Steam records in the registry,
// falling back to the default install folder.
func findSteamDir() (string, error) {
	if p, err := registrySteamPath(); err == nil {
		if dir, err := firstDir([]string{p}); err == nil {
			return dir, nil
		}
	}
	return firstDir([]string{`C:\Program Files (x86)\Steam`})
}

func registrySteamPath() (string, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, `Software\Valve\Steam`, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("opening registry key: %w", err)
	}
	defer key.Close()

	p, _, err := key.GetStringValue("SteamPath")
	if err != nil {
		return "", fmt.Errorf("querying SteamPath: %w", err)
	}
	return filepath.FromSlash(p), nil
}
