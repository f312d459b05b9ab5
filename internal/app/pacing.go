package app

import (
	"time"

	"golang.org/x/time/rate"

	"ssb-go/internal/ssb"
)

const (
	gameInterval = 100 * time.Millisecond
	copyInterval = 50 * time.Millisecond
)

// newPacers returns the pacers for game announcements and file copies.
// The delay only exists so progress is readable as it scrolls by.
func newPacers(disabled bool) (game, file ssb.Pacer) {
	if disabled {
		return ssb.NoPacing{}, ssb.NoPacing{}
	}
	return newPacer(gameInterval), newPacer(copyInterval)
}

// newPacer allows one event per interval with no burst beyond the first.
func newPacer(interval time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(interval), 1)
}
