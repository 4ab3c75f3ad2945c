package sampler

import "github.com/barstats/barstats/internal/model"

// Pick is the outcome of one auto-selection round: the winning interface
// and the byte deltas it won with.
type Pick struct {
	Name     string
	DeltaIn  uint64
	DeltaOut uint64
}

// AutoSelector chooses the interface with the most recent traffic. It owns
// the only long-lived per-interface state in the system: the last-observed
// counters for every enumerated interface.
type AutoSelector struct {
	last map[string]model.ByteCounterSample
}

func NewAutoSelector() *AutoSelector {
	return &AutoSelector{last: make(map[string]model.ByteCounterSample)}
}

// Observe computes traffic deltas for every interface against the tracked
// counters and returns the interface with the strictly greatest combined
// delta. Ties, including the all-zero round, resolve to the first interface
// in enumeration order. An interface seen for the first time is seeded with
// its current counters and scores 0 this round, so nothing spikes
// retroactively. Every tracked entry is refreshed on every call — also for
// losers — which keeps all interfaces warm across mode switches.
func (s *AutoSelector) Observe(ifaces []IfaceObservation) (Pick, bool) {
	if len(ifaces) == 0 {
		return Pick{}, false
	}
	var best Pick
	var bestSum uint64
	for i, obs := range ifaces {
		var dIn, dOut uint64
		if prev, seen := s.last[obs.Desc.Name]; seen {
			dIn = counterDelta(obs.Counters.BytesIn, prev.BytesIn)
			dOut = counterDelta(obs.Counters.BytesOut, prev.BytesOut)
		}
		s.last[obs.Desc.Name] = obs.Counters
		if i == 0 || dIn+dOut > bestSum {
			best = Pick{Name: obs.Desc.Name, DeltaIn: dIn, DeltaOut: dOut}
			bestSum = dIn + dOut
		}
	}
	return best, true
}

// Reseed replaces all tracked counters with the current observations.
// Called on a selection change so the unobserved interval before the switch
// never shows up as one large delta.
func (s *AutoSelector) Reseed(ifaces []IfaceObservation) {
	s.last = make(map[string]model.ByteCounterSample, len(ifaces))
	for _, obs := range ifaces {
		s.last[obs.Desc.Name] = obs.Counters
	}
}
