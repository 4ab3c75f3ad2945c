package source

import (
	"fmt"
	"os"
	"time"
)

func pageSize() uint64 {
	if ps := os.Getpagesize(); ps > 0 {
		return uint64(ps)
	}
	return 4096
}

// UptimeText renders the distance from boot to now as "3d 4h 12m".
// Any failure reads as "?"; the next tick retries naturally.
func UptimeText(s Source, now time.Time) string {
	boot, err := s.BootTime()
	if err != nil || boot.After(now) {
		return "?"
	}
	up := now.Sub(boot)
	days := int(up.Hours()) / 24
	hours := int(up.Hours()) % 24
	minutes := int(up.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
