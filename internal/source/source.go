package source

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/barstats/barstats/internal/model"
)

// MemorySample is one point-in-time read of the paged-memory categories.
// Counts are in pages; TotalBytes is the physical memory size.
type MemorySample struct {
	ActivePages     uint64
	WiredPages      uint64
	CompressedPages uint64
	InactivePages   uint64
	PageSize        uint64
	TotalBytes      uint64
}

// IfaceCounters pairs an interface name with its cumulative byte counters.
type IfaceCounters struct {
	Name     string
	Counters model.ByteCounterSample
}

// Source answers raw OS counter queries. It holds no state; every call
// re-reads the platform.
type Source interface {
	Ticks() (model.TickSample, error)
	Memory() (MemorySample, error)
	Interfaces() ([]IfaceCounters, error)
	BootTime() (time.Time, error)
}

// clockHz converts gopsutil's seconds-based CPU times back into tick counts.
const clockHz = 100

// System reads counters from the host via gopsutil.
type System struct{}

func NewSystem() *System { return &System{} }

func (*System) Ticks() (model.TickSample, error) {
	times, err := cpu.Times(false)
	if err != nil {
		return model.TickSample{}, fmt.Errorf("cpu times: %w", err)
	}
	if len(times) == 0 {
		return model.TickSample{}, fmt.Errorf("cpu times: empty result")
	}
	t := times[0]
	return model.TickSample{
		User:   uint64(t.User * clockHz),
		System: uint64(t.System * clockHz),
		Idle:   uint64((t.Idle + t.Iowait) * clockHz),
		Nice:   uint64(t.Nice * clockHz),
	}, nil
}

func (*System) Memory() (MemorySample, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return MemorySample{}, fmt.Errorf("virtual memory: %w", err)
	}
	page := pageSize()
	return MemorySample{
		ActivePages: vm.Active / page,
		WiredPages:  vm.Wired / page,
		// gopsutil does not surface the compressor; platforms that report
		// it fold it into Used, so it reads as zero pages here.
		CompressedPages: 0,
		InactivePages:   vm.Inactive / page,
		PageSize:        page,
		TotalBytes:      vm.Total,
	}, nil
}

func (*System) Interfaces() ([]IfaceCounters, error) {
	counters, err := net.IOCounters(true)
	if err != nil {
		return nil, fmt.Errorf("net counters: %w", err)
	}
	out := make([]IfaceCounters, 0, len(counters))
	for _, c := range counters {
		out = append(out, IfaceCounters{
			Name: c.Name,
			Counters: model.ByteCounterSample{
				BytesIn:  c.BytesRecv,
				BytesOut: c.BytesSent,
			},
		})
	}
	return out, nil
}

func (*System) BootTime() (time.Time, error) {
	secs, err := host.BootTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("boot time: %w", err)
	}
	return time.Unix(int64(secs), 0), nil
}
