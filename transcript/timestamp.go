package transcript

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseTimestamp converts "SS", "MM:SS" or "HH:MM:SS" into seconds. The
// last component may carry a fraction ("01:02.5").
func ParseTimestamp(ts string) (float64, error) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	parts := strings.Split(ts, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("timestamp %q has too many components", ts)
	}

	var total float64
	for i, p := range parts {
		last := i == len(parts)-1
		var v float64
		if last {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return 0, fmt.Errorf("timestamp %q: invalid seconds %q", ts, p)
			}
			v = f
		} else {
			n, err := strconv.Atoi(p)
			if err != nil {
				return 0, fmt.Errorf("timestamp %q: invalid component %q", ts, p)
			}
			v = float64(n)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("timestamp %q: negative or non-finite component", ts)
		}
		if !last && i > 0 && v >= 60 {
			return 0, fmt.Errorf("timestamp %q: minutes out of range", ts)
		}
		total = total*60 + v
	}
	return total, nil
}

// FormatTimestamp renders whole seconds as MM:SS, or H:MM:SS from one hour up.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	h, rem := s/3600, s%3600
	m, sec := rem/60, rem%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
