package sampler

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestMbps(t *testing.T) {
	tests := []struct {
		name     string
		delta    uint64
		interval time.Duration
		want     float64
	}{
		{"125000 bytes over 1s is 1 Mb/s", 125_000, time.Second, 1.0},
		{"zero delta", 0, time.Second, 0},
		{"zero interval normalizes to 1s", 125_000, 0, 1.0},
		{"negative interval normalizes to 1s", 125_000, -time.Second, 1.0},
		{"half-second interval doubles the rate", 125_000, 500 * time.Millisecond, 2.0},
		{"exactly at the ceiling passes", 1_250_000_000, time.Second, 10_000},
		{"beyond the ceiling clamps to zero", 1_250_125_000, time.Second, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mbps(tt.delta, tt.interval); got != tt.want {
				t.Errorf("Mbps(%d, %v) = %v, want %v", tt.delta, tt.interval, got, tt.want)
			}
		})
	}
}

// TestMbpsRange_PropertyBased checks that every computed rate lands in
// [0, MaxPlausibleMbps]; the clamp guarantees nothing escapes the ceiling.
func TestMbpsRange_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("rate is within [0, ceiling]", prop.ForAll(
		func(delta uint64, intervalMs int64) bool {
			rate := Mbps(delta, time.Duration(intervalMs)*time.Millisecond)
			return rate >= 0 && rate <= MaxPlausibleMbps
		},
		gen.UInt64(), gen.Int64Range(-5_000, 60_000),
	))

	properties.TestingRun(t)
}
