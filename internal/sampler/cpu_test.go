package sampler

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/barstats/barstats/internal/model"
	"github.com/barstats/barstats/internal/source"
)

// fakeSource is a scripted Source shared by the sampler tests. Ticks are
// consumed in order; the last one repeats.
type fakeSource struct {
	ticks     []model.TickSample
	tickIdx   int
	ticksErr  error
	memory    source.MemorySample
	memErr    error
	ifaces    []source.IfaceCounters
	ifacesErr error
	boot      time.Time
	bootErr   error
}

func (f *fakeSource) Ticks() (model.TickSample, error) {
	if f.ticksErr != nil {
		return model.TickSample{}, f.ticksErr
	}
	if len(f.ticks) == 0 {
		return model.TickSample{}, fmt.Errorf("no scripted ticks")
	}
	t := f.ticks[f.tickIdx]
	if f.tickIdx < len(f.ticks)-1 {
		f.tickIdx++
	}
	return t, nil
}

func (f *fakeSource) Memory() (source.MemorySample, error) {
	return f.memory, f.memErr
}

func (f *fakeSource) Interfaces() ([]source.IfaceCounters, error) {
	return f.ifaces, f.ifacesErr
}

func (f *fakeSource) BootTime() (time.Time, error) {
	return f.boot, f.bootErr
}

func TestCPURateSamplerWarmUp(t *testing.T) {
	src := &fakeSource{ticks: []model.TickSample{
		{User: 500, System: 200, Idle: 9000, Nice: 10},
	}}
	s := NewCPURateSampler(src)
	if got := s.Sample(); got != 0 {
		t.Errorf("first Sample() = %v, want 0 (warm-up)", got)
	}
}

func TestCPURateSamplerDelta(t *testing.T) {
	a := model.TickSample{User: 100, System: 50, Idle: 800, Nice: 10}
	b := model.TickSample{User: 200, System: 100, Idle: 1600, Nice: 30}
	src := &fakeSource{ticks: []model.TickSample{a, b}}
	s := NewCPURateSampler(src)
	s.Sample() // warm-up

	busy := float64((b.User - a.User) + (b.System - a.System) + (b.Nice - a.Nice))
	total := busy + float64(b.Idle-a.Idle)
	want := busy / total * 100
	if got := s.Sample(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Sample() = %v, want %v", got, want)
	}
}

func TestCPURateSamplerCounterReset(t *testing.T) {
	a := model.TickSample{User: 5000, System: 3000, Idle: 90000, Nice: 200}
	b := model.TickSample{User: 10, System: 5, Idle: 100, Nice: 1} // reset
	src := &fakeSource{ticks: []model.TickSample{a, b}}
	s := NewCPURateSampler(src)
	s.Sample()
	if got := s.Sample(); got != 0 {
		t.Errorf("Sample() after reset = %v, want 0, never negative", got)
	}
}

func TestCPURateSamplerSelfHealsAfterReset(t *testing.T) {
	a := model.TickSample{User: 5000, System: 3000, Idle: 90000, Nice: 200}
	b := model.TickSample{User: 10, System: 5, Idle: 100, Nice: 1}
	c := model.TickSample{User: 110, System: 5, Idle: 200, Nice: 1}
	src := &fakeSource{ticks: []model.TickSample{a, b, c}}
	s := NewCPURateSampler(src)
	s.Sample()
	s.Sample() // reset tick, baseline overwritten with b
	want := float64(100) / float64(200) * 100
	if got := s.Sample(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Sample() after reset recovery = %v, want %v", got, want)
	}
}

func TestCPURateSamplerZeroTotalDelta(t *testing.T) {
	a := model.TickSample{User: 100, System: 50, Idle: 800, Nice: 10}
	src := &fakeSource{ticks: []model.TickSample{a, a}}
	s := NewCPURateSampler(src)
	s.Sample()
	if got := s.Sample(); got != 0 {
		t.Errorf("Sample() with no elapsed ticks = %v, want 0", got)
	}
}

func TestCPURateSamplerSourceError(t *testing.T) {
	src := &fakeSource{ticksErr: fmt.Errorf("host down")}
	s := NewCPURateSampler(src)
	if got := s.Sample(); got != 0 {
		t.Errorf("Sample() with failing source = %v, want 0", got)
	}
}
