package model

import "time"

// TickSample holds cumulative processor-busy ticks since boot, aggregated
// across all logical processors. Counters only grow, except across a reset.
type TickSample struct {
	User   uint64
	System uint64
	Idle   uint64
	Nice   uint64
}

// Total is the sum of all tick categories, idle included.
func (t TickSample) Total() uint64 { return t.User + t.System + t.Idle + t.Nice }

// ByteCounterSample holds cumulative byte counters for one interface since boot.
type ByteCounterSample struct {
	BytesIn  uint64
	BytesOut uint64
}

// InterfaceDescriptor identifies one eligible physical interface.
// Regenerated on every enumeration, never cached long-term.
type InterfaceDescriptor struct {
	Name  string // raw interface name, e.g. "en0"
	Label string // display string, e.g. "Wi-Fi (en0)"
}

// InterfaceSelection is the active interface policy: automatic pick-by-traffic
// or a fixed manual choice.
type InterfaceSelection struct {
	Manual bool
	Name   string // set only when Manual
}

// Auto returns the automatic selection.
func Auto() InterfaceSelection { return InterfaceSelection{} }

// Manual returns a fixed selection of the named interface.
func Manual(name string) InterfaceSelection {
	return InterfaceSelection{Manual: true, Name: name}
}

func (s InterfaceSelection) String() string {
	if s.Manual {
		return s.Name
	}
	return "auto"
}

// RateSnapshot holds derived throughput for the active interface.
// Recomputed every fast tick, never persisted.
type RateSnapshot struct {
	DownMbps float64
	UpMbps   float64
}

// StatsSnapshot is the full per-tick output handed to the display layer.
// Lifecycle is create-on-tick, consume-immediately, discard.
type StatsSnapshot struct {
	Timestamp     time.Time
	CPUPercent    float64
	RAMPercent    float64
	GPUPercent    float64
	Rates         RateSnapshot
	Interface     string // name of the interface the rates were computed for
	Selection     InterfaceSelection
	Interfaces    []InterfaceDescriptor
	PublicAddress string
	UptimeText    string
}
