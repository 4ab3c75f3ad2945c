package sampler

import "time"

// MaxPlausibleMbps is the sanity ceiling for a computed rate. Anything above
// it is treated as a counter glitch (interface switch, sleep/wake jump,
// 32-bit wraparound) rather than real traffic.
const MaxPlausibleMbps = 10_000

// Mbps converts a byte delta over an interval into megabits per second.
// Intervals of zero or less normalize to one second. Rates beyond
// MaxPlausibleMbps clamp to 0; callers log the clamp as a data-quality
// filter. Negative deltas never reach this function — samplers floor them
// at zero first.
func Mbps(byteDelta uint64, interval time.Duration) float64 {
	secs := interval.Seconds()
	if secs <= 0 {
		secs = 1
	}
	mbps := float64(byteDelta) * 8 / 1_000_000 / secs
	if mbps > MaxPlausibleMbps {
		return 0
	}
	return mbps
}
