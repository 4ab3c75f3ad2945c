package gpu

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
)

// scriptedProbe returns its results in order; the last one repeats.
func scriptedProbe(results ...func() (float64, error)) ProbeFunc {
	i := 0
	return func(context.Context) (float64, error) {
		r := results[i]
		if i < len(results)-1 {
			i++
		}
		return r()
	}
}

func value(v float64) func() (float64, error) {
	return func() (float64, error) { return v, nil }
}

func failure(msg string) func() (float64, error) {
	return func() (float64, error) { return 0, fmt.Errorf("%s", msg) }
}

func TestCacheReadBeforeFirstProbe(t *testing.T) {
	c := NewCache(scriptedProbe(value(55)), zerolog.Nop())
	if got := c.Read(); got != 0 {
		t.Errorf("Read() before any probe = %v, want 0", got)
	}
}

func TestCacheStoresProbeResult(t *testing.T) {
	c := NewCache(scriptedProbe(value(37.5)), zerolog.Nop())
	c.Refresh(context.Background())
	if got := c.Read(); got != 37.5 {
		t.Errorf("Read() = %v, want 37.5", got)
	}
}

func TestCacheKeepsValueOnProbeFailure(t *testing.T) {
	c := NewCache(scriptedProbe(value(62), failure("tool missing")), zerolog.Nop())
	c.Refresh(context.Background())
	c.Refresh(context.Background())
	if got := c.Read(); got != 62 {
		t.Errorf("Read() after failed probe = %v, want prior value 62", got)
	}
}

func TestCacheRejectsOutOfRangeValues(t *testing.T) {
	c := NewCache(scriptedProbe(value(80), value(150), value(-3)), zerolog.Nop())
	c.Refresh(context.Background())
	c.Refresh(context.Background())
	c.Refresh(context.Background())
	if got := c.Read(); got != 80 {
		t.Errorf("Read() after out-of-range probes = %v, want prior value 80", got)
	}
}

func TestParseUtilization(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    float64
		wantErr bool
	}{
		{"bare number", "42\n", 42, false},
		{"csv row with text lead", "GeForce, 82 %, 1024 MiB\n", 82, false},
		{"percent suffix", "utilization.gpu 37%\n", 37, false},
		{"skips unparseable lines", "header line\n17\n", 17, false},
		{"no numeric field", "nothing here\n", 0, true},
		{"empty output", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUtilization(tt.out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseUtilization(%q) error = %v, wantErr %v", tt.out, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseUtilization(%q) = %v, want %v", tt.out, got, tt.want)
			}
		})
	}
}
