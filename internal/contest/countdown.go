package contest

import (
	"fmt"
	"time"
)

// Countdown is the client-held copy of the remaining contest time. It exists
// purely for smooth display between status polls: local ticks decrement it,
// and every server fetch overwrites it. It never goes negative and never
// persists anything.
type Countdown struct {
	remaining time.Duration
}

// NewCountdown returns a countdown starting at d (clamped at zero).
func NewCountdown(d time.Duration) *Countdown {
	c := &Countdown{}
	c.Set(d)
	return c
}

// Set overwrites the countdown with a server-reported value. Server wins:
// whatever the local ticks accumulated since the last poll is discarded.
func (c *Countdown) Set(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.remaining = d
}

// Tick advances the countdown by the elapsed wall time since the previous
// tick. It reports true exactly once when the countdown crosses zero, which
// callers use to poll the server right away instead of waiting out the
// interval.
func (c *Countdown) Tick(elapsed time.Duration) bool {
	if c.remaining == 0 || elapsed <= 0 {
		return false
	}
	if elapsed >= c.remaining {
		c.remaining = 0
		return true
	}
	c.remaining -= elapsed
	return false
}

// Remaining returns the current countdown value.
func (c *Countdown) Remaining() time.Duration {
	return c.remaining
}

// Seconds returns the countdown in whole seconds, rounded down.
func (c *Countdown) Seconds() int {
	return int(c.remaining / time.Second)
}

// Clock formats the countdown as HH:MM:SS.
func (c *Countdown) Clock() string {
	return FormatClock(c.remaining)
}

// FormatClock renders a duration as HH:MM:SS. Hours grow past two digits
// for multi-day pre-contest countdowns rather than wrapping; negative
// durations render as zero.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
