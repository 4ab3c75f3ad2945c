package sampler

import (
	"github.com/barstats/barstats/internal/model"
	"github.com/barstats/barstats/internal/source"
)

// CPURateSampler turns successive cumulative tick totals into a busy
// percentage. The first call has no baseline and reports 0 by design.
type CPURateSampler struct {
	src    source.Source
	prev   model.TickSample
	primed bool
}

func NewCPURateSampler(src source.Source) *CPURateSampler {
	return &CPURateSampler{src: src}
}

// Sample reads the current tick totals and returns the busy percentage over
// the interval since the previous call. The stored baseline is always
// replaced with the current reading, so a counter reset costs one zero tick
// and self-heals on the next.
func (s *CPURateSampler) Sample() float64 {
	cur, err := s.src.Ticks()
	if err != nil {
		return 0
	}
	if !s.primed {
		s.prev = cur
		s.primed = true
		return 0
	}
	dUser := counterDelta(cur.User, s.prev.User)
	dSystem := counterDelta(cur.System, s.prev.System)
	dIdle := counterDelta(cur.Idle, s.prev.Idle)
	dNice := counterDelta(cur.Nice, s.prev.Nice)
	s.prev = cur

	total := dUser + dSystem + dIdle + dNice
	if total == 0 {
		return 0
	}
	return float64(dUser+dSystem+dNice) / float64(total) * 100
}

// counterDelta subtracts cumulative counters with a floor at zero; a
// decrease means the counter reset, never a negative delta.
func counterDelta(cur, prev uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}
