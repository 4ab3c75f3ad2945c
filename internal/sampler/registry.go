package sampler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/barstats/barstats/internal/model"
	"github.com/barstats/barstats/internal/source"
)

// physicalPrefixes names the adapter families considered physical hardware.
var physicalPrefixes = []string{"en"}

// excludedPrefixes hides loopback, tunnel, and virtual interfaces that
// would otherwise match a physical prefix or clutter the menu.
var excludedPrefixes = []string{"lo", "utun", "awdl", "bridge", "llw", "gif", "stf", "ap", "anpi"}

// IfaceObservation couples a descriptor with the byte counters read during
// the same enumeration, so one registry call feeds both the menu and the
// delta tracking.
type IfaceObservation struct {
	Desc     model.InterfaceDescriptor
	Counters model.ByteCounterSample
}

// Registry enumerates eligible physical interfaces. Each List call
// recomputes from scratch; nothing is cached between calls.
type Registry struct {
	src source.Source
	log zerolog.Logger
}

func NewRegistry(src source.Source, log zerolog.Logger) *Registry {
	return &Registry{src: src, log: log}
}

// List returns the eligible interfaces sorted by name. Interfaces with zero
// lifetime traffic are assumed inactive or virtual and hidden. An OS query
// failure degrades to an empty listing; the next tick retries.
func (r *Registry) List() []IfaceObservation {
	raw, err := r.src.Interfaces()
	if err != nil {
		r.log.Debug().Err(err).Msg("interface enumeration failed")
		return nil
	}

	eligible := raw[:0:0]
	for _, ic := range raw {
		if !isPhysical(ic.Name) {
			continue
		}
		if ic.Counters.BytesIn == 0 && ic.Counters.BytesOut == 0 {
			continue
		}
		eligible = append(eligible, ic)
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].Name < eligible[j].Name })

	out := make([]IfaceObservation, 0, len(eligible))
	for i, ic := range eligible {
		out = append(out, IfaceObservation{
			Desc: model.InterfaceDescriptor{
				Name:  ic.Name,
				Label: label(ic.Name, i == 0),
			},
			Counters: ic.Counters,
		})
	}
	return out
}

func isPhysical(name string) bool {
	for _, p := range excludedPrefixes {
		if strings.HasPrefix(name, p) {
			return false
		}
	}
	for _, p := range physicalPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// label gives the first physical interface the wireless label and every
// other one a generic wired label, each carrying the raw name for
// disambiguation.
func label(name string, first bool) string {
	if first {
		return fmt.Sprintf("Wi-Fi (%s)", name)
	}
	return fmt.Sprintf("Ethernet (%s)", name)
}
