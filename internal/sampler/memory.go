package sampler

import "github.com/barstats/barstats/internal/source"

// MemoryUsageSampler reports used physical memory as a percentage.
// Stateless; every call is a fresh snapshot.
type MemoryUsageSampler struct {
	src source.Source
}

func NewMemoryUsageSampler(src source.Source) *MemoryUsageSampler {
	return &MemoryUsageSampler{src: src}
}

// Sample returns used memory as a percentage of physical memory. Inactive
// pages are not counted as used: that figure churns constantly without
// tracking real pressure.
func (s *MemoryUsageSampler) Sample() float64 {
	m, err := s.src.Memory()
	if err != nil || m.TotalBytes == 0 {
		return 0
	}
	used := (m.ActivePages + m.WiredPages + m.CompressedPages) * m.PageSize
	return float64(used) / float64(m.TotalBytes) * 100
}
