//go:build !linux && !darwin && !windows

package app

import (
	"fmt"

	"ssb-go/internal/ssb"
)

func findSteamDir() (string, error) {
	return "", fmt.Errorf("no known steam location on this platform: %w", ssb.ErrConfig)
}
