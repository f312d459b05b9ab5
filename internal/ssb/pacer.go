package ssb

import "context"

// Pacer spaces out repeated actions. *rate.Limiter satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NoPacing never waits, only honoring cancellation.
type NoPacing struct{}

func (NoPacing) Wait(ctx context.Context) error { return ctx.Err() }
