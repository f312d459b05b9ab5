package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - SSB_CONFIG_PATH: settings file location (default: <base_dir>/settings.toml)
//   - SSB_HOME: base directory for ssb data (default: the directory holding the executable)
func GetDefaults() (map[string]string, error) {
	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": getConfigPath(baseDir),
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the settings file path, checking SSB_CONFIG_PATH first.
func getConfigPath(baseDir string) string {
	if path := os.Getenv("SSB_CONFIG_PATH"); path != "" {
		return path
	}
	return filepath.Join(baseDir, "settings.toml")
}

// getBaseDir returns the base directory for ssb data, checking SSB_HOME first,
// then falling back to the directory of the running executable so the cache
// and settings travel with it.
func getBaseDir() (string, error) {
	if path := os.Getenv("SSB_HOME"); path != "" {
		return path, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("cannot determine executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
