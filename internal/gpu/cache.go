package gpu

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// ProbeFunc queries the utilization percentage from whatever diagnostic
// tool the platform offers. Expensive; only the slow loop calls it.
type ProbeFunc func(ctx context.Context) (float64, error)

// Cache is the single value shared between the fast and slow loops: a
// mutex-guarded slot holding the most recently completed probe result.
// Reads never block on the probe.
type Cache struct {
	probe ProbeFunc
	log   zerolog.Logger

	mu    sync.RWMutex
	value float64
}

func NewCache(probe ProbeFunc, log zerolog.Logger) *Cache {
	return &Cache{probe: probe, log: log}
}

// Read returns the last completed probe result, 0 before the first one.
func (c *Cache) Read() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Refresh runs the probe and stores the result. A failed probe or an
// out-of-range value keeps the previous reading; overwriting it with a
// zero would just flicker the display.
func (c *Cache) Refresh(ctx context.Context) {
	v, err := c.probe(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("utilization probe failed, keeping last value")
		return
	}
	if v < 0 || v > 100 {
		c.log.Debug().Float64("value", v).Msg("utilization probe out of range, keeping last value")
		return
	}
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
}
