package stealth

import (
	"context"
	"math/rand/v2"
	"time"
)

// DelayProfile defines a named delay configuration.
type DelayProfile string

const (
	ProfileCautious   DelayProfile = "cautious"
	ProfileNormal     DelayProfile = "normal"
	ProfileAggressive DelayProfile = "aggressive"
	ProfileNone       DelayProfile = "none"
)

// HumanDelay adds randomized pauses between browser interactions so a filled
// form does not look scripted.
type HumanDelay struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// NewHumanDelay creates a delay generator for the given profile.
func NewHumanDelay(profile DelayProfile) *HumanDelay {
	switch profile {
	case ProfileCautious:
		return &HumanDelay{MinDelay: 800 * time.Millisecond, MaxDelay: 2 * time.Second}
	case ProfileAggressive:
		return &HumanDelay{MinDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}
	case ProfileNone:
		return &HumanDelay{}
	default: // normal
		return &HumanDelay{MinDelay: 300 * time.Millisecond, MaxDelay: 900 * time.Millisecond}
	}
}

// Wait sleeps for a random duration within the configured range.
func (h *HumanDelay) Wait(ctx context.Context) error {
	if h == nil {
		return nil
	}
	d := h.randomBetween(h.MinDelay, h.MaxDelay)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *HumanDelay) randomBetween(min, max time.Duration) time.Duration {
	if min >= max {
		return min
	}
	return min + time.Duration(rand.Int64N(int64(max-min)))
}
