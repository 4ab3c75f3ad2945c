package gpu

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// probeTimeout bounds one probe invocation. Must stay well under the slow
// loop interval so a hung tool cannot pile up invocations.
const probeTimeout = 2 * time.Second

// DefaultProbeCommand queries GPU utilization as a single bare number per
// device.
var DefaultProbeCommand = []string{
	"nvidia-smi", "--query-gpu=utilization.gpu", "--format=csv,noheader,nounits",
}

// CommandProbe wraps an external diagnostic command as a ProbeFunc. The
// command's output is scanned line by line for the first field that parses
// as a percentage.
func CommandProbe(command []string) ProbeFunc {
	return func(ctx context.Context) (float64, error) {
		if len(command) == 0 {
			return 0, fmt.Errorf("no probe command configured")
		}
		ctx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		out, err := exec.CommandContext(ctx, command[0], command[1:]...).Output()
		if ctx.Err() == context.DeadlineExceeded {
			return 0, ctx.Err()
		}
		if err != nil {
			return 0, fmt.Errorf("run %s: %w", command[0], err)
		}
		return ParseUtilization(string(out))
	}
}

// ParseUtilization extracts the utilization percentage from probe output.
// Each line is split on commas and whitespace; the first token that parses
// as a float wins.
func ParseUtilization(out string) (float64, error) {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.ReplaceAll(sc.Text(), ",", " ")
		for _, field := range strings.Fields(line) {
			field = strings.TrimSuffix(field, "%")
			if v, err := strconv.ParseFloat(field, 64); err == nil {
				return v, nil
			}
		}
	}
	return 0, fmt.Errorf("no utilization field in probe output")
}
