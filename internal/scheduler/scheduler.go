package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/barstats/barstats/internal/gpu"
	"github.com/barstats/barstats/internal/model"
	"github.com/barstats/barstats/internal/pubip"
	"github.com/barstats/barstats/internal/sampler"
	"github.com/barstats/barstats/internal/source"
)

// Scheduler drives the samplers and caches from two free-running loops: a
// fast one assembling a StatsSnapshot every tick and a slow one feeding the
// utilization cache. Everything except the utilization cache is owned by
// the fast loop and needs no locking; selection changes and completed
// address fetches are marshalled in through channels.
type Scheduler struct {
	fastInterval time.Duration
	slowInterval time.Duration
	pubipEnabled bool

	src      source.Source
	cpu      *sampler.CPURateSampler
	mem      *sampler.MemoryUsageSampler
	registry *sampler.Registry
	auto     *sampler.AutoSelector
	util     *gpu.Cache
	address  *pubip.Cache
	log      zerolog.Logger

	selection  model.InterfaceSelection
	manualPrev map[string]model.ByteCounterSample
	selectCh   chan model.InterfaceSelection
}

// Options carries the scheduler's construction parameters.
type Options struct {
	FastInterval time.Duration
	SlowInterval time.Duration
	Selection    model.InterfaceSelection
	PublicIP     bool
}

func New(opts Options, src source.Source, util *gpu.Cache, address *pubip.Cache, log zerolog.Logger) *Scheduler {
	if opts.FastInterval <= 0 {
		opts.FastInterval = time.Second
	}
	if opts.SlowInterval <= 0 {
		opts.SlowInterval = 3 * time.Second
	}
	return &Scheduler{
		fastInterval: opts.FastInterval,
		slowInterval: opts.SlowInterval,
		pubipEnabled: opts.PublicIP,
		src:          src,
		cpu:          sampler.NewCPURateSampler(src),
		mem:          sampler.NewMemoryUsageSampler(src),
		registry:     sampler.NewRegistry(src, log),
		auto:         sampler.NewAutoSelector(),
		util:         util,
		address:      address,
		log:          log,
		selection:    opts.Selection,
		manualPrev:   make(map[string]model.ByteCounterSample),
		selectCh:     make(chan model.InterfaceSelection, 1),
	}
}

// Select requests a selection change. Safe to call from any goroutine; the
// fast loop applies it at the start of its next tick. Latest wins if
// several arrive within one tick.
func (s *Scheduler) Select(sel model.InterfaceSelection) {
	for {
		select {
		case s.selectCh <- sel:
			return
		default:
			select {
			case <-s.selectCh:
			default:
			}
		}
	}
}

// Stream starts both loops and returns the snapshot channel. The channel
// closes when ctx is done.
func (s *Scheduler) Stream(ctx context.Context) <-chan model.StatsSnapshot {
	ch := make(chan model.StatsSnapshot)
	go func() {
		defer close(ch)
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return s.slowLoop(ctx) })
		g.Go(func() error { return s.fastLoop(ctx, ch) })
		_ = g.Wait()
	}()
	return ch
}

func (s *Scheduler) fastLoop(ctx context.Context, ch chan<- model.StatsSnapshot) error {
	ticker := time.NewTicker(s.fastInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-ticker.C:
			select {
			case ch <- s.tick(t):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (s *Scheduler) slowLoop(ctx context.Context) error {
	s.util.Refresh(ctx)
	ticker := time.NewTicker(s.slowInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.util.Refresh(ctx)
		}
	}
}

// tick assembles one StatsSnapshot.
func (s *Scheduler) tick(now time.Time) model.StatsSnapshot {
	s.address.Poll()

	ifaces := s.registry.List()
	select {
	case sel := <-s.selectCh:
		s.applySelection(sel, ifaces)
	default:
	}
	name, deltaIn, deltaOut := s.resolveActive(ifaces)
	rates := model.RateSnapshot{
		DownMbps: s.rate(deltaIn, "rx"),
		UpMbps:   s.rate(deltaOut, "tx"),
	}

	s.address.RefreshIfStale(s.pubipEnabled)

	descs := make([]model.InterfaceDescriptor, len(ifaces))
	for i, obs := range ifaces {
		descs[i] = obs.Desc
	}
	return model.StatsSnapshot{
		Timestamp:     now,
		CPUPercent:    s.cpu.Sample(),
		RAMPercent:    s.mem.Sample(),
		GPUPercent:    s.util.Read(),
		Rates:         rates,
		Interface:     name,
		Selection:     s.selection,
		Interfaces:    descs,
		PublicAddress: s.address.Value(),
		UptimeText:    source.UptimeText(s.src, now),
	}
}

// resolveActive picks the interface the rates are reported for and returns
// its byte deltas since the previous tick. The auto selector observes every
// tick in either mode, so its tracking stays warm across mode switches.
func (s *Scheduler) resolveActive(ifaces []sampler.IfaceObservation) (string, uint64, uint64) {
	pick, ok := s.auto.Observe(ifaces)
	if !s.selection.Manual {
		if !ok {
			return "", 0, 0
		}
		return pick.Name, pick.DeltaIn, pick.DeltaOut
	}

	name := s.selection.Name
	var deltaIn, deltaOut uint64
	for _, obs := range ifaces {
		if obs.Desc.Name != name {
			continue
		}
		if prev, seen := s.manualPrev[name]; seen {
			deltaIn = delta(obs.Counters.BytesIn, prev.BytesIn)
			deltaOut = delta(obs.Counters.BytesOut, prev.BytesOut)
		}
		s.manualPrev[name] = obs.Counters
		break
	}
	// A vanished manual interface reports zero rates until it returns.
	return name, deltaIn, deltaOut
}

// applySelection switches modes and reseeds all delta tracking to the
// current live counters, so the unobserved interval before the switch never
// appears as a one-time spike.
func (s *Scheduler) applySelection(sel model.InterfaceSelection, ifaces []sampler.IfaceObservation) {
	if sel == s.selection {
		return
	}
	s.log.Info().Stringer("selection", sel).Msg("interface selection changed")
	s.selection = sel
	s.auto.Reseed(ifaces)
	s.manualPrev = make(map[string]model.ByteCounterSample, len(ifaces))
	for _, obs := range ifaces {
		s.manualPrev[obs.Desc.Name] = obs.Counters
	}
}

func (s *Scheduler) rate(byteDelta uint64, direction string) float64 {
	mbps := sampler.Mbps(byteDelta, s.fastInterval)
	if byteDelta > 0 && mbps == 0 {
		s.log.Debug().Str("direction", direction).Uint64("bytes", byteDelta).
			Msg("implausible rate clamped to zero")
	}
	return mbps
}

func delta(cur, prev uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}
